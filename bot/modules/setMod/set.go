package setMod

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xor-shift/chanserv/bot/chanstore"
	"github.com/xor-shift/chanserv/bot/mbus"
	"github.com/xor-shift/chanserv/bot/modules/commandMod"
)

//AccessGate decides whether principal may change the settings of a channel
type AccessGate interface {
	CanConfigure(principal string, ci *chanstore.Channel) bool
}

//Forwarder runs an option in place of SET
type Forwarder interface {
	RunCommand(src *commandMod.Source, name string, cmd commandMod.Command, params string) commandMod.Result
}

//Command is SET: it checks read-only mode and access once, then routes to the option named by the second param
type Command struct {
	commandMod.Base

	registry  *Registry
	gate      AccessGate
	forwarder Forwarder
}

func NewCommand(gate AccessGate, forwarder Forwarder) *Command {
	return &Command{
		Base:      commandMod.NewBase("SET", "Set channel options and information", 2, 3).WithSyntax("SET \x1Fchannel\x1F \x1Foption\x1F \x1Fparameters\x1F"),
		registry:  NewRegistry(),
		gate:      gate,
		forwarder: forwarder,
	}
}

func (c *Command) TakesChannel() bool { return true }

func (c *Command) Registry() *Registry { return c.registry }

func (c *Command) AddSubcommand(owner mbus.ModuleIdentifier, handler Handler) error {
	return c.registry.Register(handler.Name(), handler, owner)
}

func (c *Command) DelSubcommand(handler Handler) bool {
	return c.registry.Unregister(handler)
}

func (c *Command) DelSubcommandsOf(owner mbus.ModuleIdentifier) int {
	return c.registry.UnregisterOwner(owner)
}

func (c *Command) FindCommand(name string) (Handler, bool) {
	return c.registry.Lookup(name)
}

func (c *Command) Execute(src *commandMod.Source, params []string) commandMod.Result {
	if len(params) < 2 {
		c.OnSyntaxError(src, "")
		return commandMod.Continue
	}

	if src.Settings.ReadOnly {
		src.Reply("Sorry, channel option setting is temporarily disabled.")
		return commandMod.Continue
	}

	if !c.gate.CanConfigure(src.Principal, src.Channel) {
		src.Reply("Access denied.")
		return commandMod.Continue
	}

	option := strings.ToUpper(params[1])

	if replacement, ok := deprecatedReplacement(src.Settings.DeprecatedSetOptions, option); ok {
		src.Reply("SET \x02%s\x02 is deprecated. Use \x02%s\x02 instead.", option, src.ServiceCommand(replacement))
		return commandMod.Continue
	}

	handler, ok := c.registry.Lookup(option)
	if !ok {
		src.Reply("Unknown SET option \x02%s\x02.", params[1])
		src.MoreInfo("SET")
		return commandMod.Continue
	}

	target := params[0]
	if src.Channel != nil {
		target = src.Channel.Name
	}

	log.WithFields(log.Fields{
		"principal": src.Principal,
		"channel":   target,
		"option":    option,
	}).Debug("forwarding SET option")

	return c.forwarder.RunCommand(src, option, handler, Forward(target, params[2:]))
}

//deprecatedReplacement matches option against the retired names ignoring case, snapshots need not be normalized
func deprecatedReplacement(deprecated map[string]string, option string) (string, bool) {
	if replacement, ok := deprecated[option]; ok {
		return replacement, true
	}

	for name, replacement := range deprecated {
		if strings.EqualFold(name, option) {
			return replacement, true
		}
	}

	return "", false
}
