package commandMod

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/xor-shift/chanserv/bot/chanstore"
)

//ChannelResolver maps a channel name to its registration record
type ChannelResolver interface {
	Find(name string) (*chanstore.Channel, error)
}

//Runner executes a command on behalf of a source: it splits params per the command's arity, resolves the target channel
//and hands over to Execute. Top-level dispatch and subcommand forwarding both go through it
type Runner struct {
	Channels ChannelResolver
}

func NewRunner(channels ChannelResolver) *Runner {
	return &Runner{Channels: channels}
}

func (r *Runner) RunCommand(src *Source, name string, cmd Command, text string) Result {
	sub := src.ForCommand(name)

	min, max := cmd.Params()
	params := SplitParams(text, max)

	if len(params) < min {
		last := ""
		if len(params) > 0 {
			last = params[len(params)-1]
		}
		cmd.OnSyntaxError(sub, last)
		return Continue
	}

	if cc, ok := cmd.(ChannelCommand); ok && cc.TakesChannel() && len(params) > 0 {
		ci, err := r.Channels.Find(params[0])
		if errors.Cause(err) == chanstore.ErrNotFound {
			sub.Reply("Channel \x02%s\x02 isn't registered.", params[0])
			return Continue
		} else if err != nil {
			log.WithError(err).WithField("channel", params[0]).Error("channel lookup failed")
			sub.Reply("Sorry, an internal error occurred.")
			return Continue
		}
		sub.Channel = ci
	}

	log.WithFields(log.Fields{
		"principal": sub.Principal,
		"command":   sub.FullCommand(),
		"params":    len(params),
	}).Debug("running command")

	return cmd.Execute(sub, params)
}
