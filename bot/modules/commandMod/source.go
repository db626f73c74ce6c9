package commandMod

import (
	"fmt"
	"strings"

	"github.com/xor-shift/chanserv/bot/chanstore"
	"github.com/xor-shift/chanserv/bot/config"
	"github.com/xor-shift/chanserv/bot/message"
)

//Replier delivers one line to whoever issued the command
type Replier interface {
	Reply(msg message.Message)
}

type ReplierFunc func(msg message.Message)

func (f ReplierFunc) Reply(msg message.Message) { f(msg) }

//Source is the context of one invocation. It is built per line and thrown away afterwards
type Source struct {
	Principal string
	//Command is the name the running command was invoked as, Parent the full name of the command that forwarded to it
	Command string
	Parent  string
	//Settings is a snapshot taken when the line arrived
	Settings config.Settings
	//Channel is set by the framework for ChannelCommands
	Channel *chanstore.Channel

	replier Replier
}

func NewSource(principal string, settings config.Settings, replier Replier) *Source {
	return &Source{
		Principal: principal,
		Settings:  settings,
		replier:   replier,
	}
}

//ForCommand returns a copy of the source for running the named command underneath this one
func (src *Source) ForCommand(name string) *Source {
	cop := *src
	cop.Parent = src.FullCommand()
	cop.Command = name
	return &cop
}

//FullCommand is the command path as typed, e.g. "SET DESC"
func (src *Source) FullCommand() string {
	if src.Parent == "" {
		return src.Command
	}
	return src.Parent + " " + src.Command
}

//Reply formats and sends text, one message per line. Empty lines are sent as a single space so IRC clients keep them
func (src *Source) Reply(format string, args ...interface{}) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}

	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			line = " "
		}
		src.replier.Reply(message.FromIRC(line))
	}
}

//ServiceCommand renders how a user would type a command to the service, e.g. "/msg ChanServ HELP SET"
func (src *Source) ServiceCommand(command string) string {
	return src.Settings.StrictPrivMsgString() + src.Settings.ServiceNick + " " + command
}

func (src *Source) MoreInfo(command string) {
	src.Reply("Type \x02%s\x02 for more information.", src.ServiceCommand("HELP "+command))
}

func (src *Source) SyntaxError(syntax string) {
	src.Reply("Syntax: \x02%s\x02", syntax)
	src.MoreInfo(src.FullCommand())
}
