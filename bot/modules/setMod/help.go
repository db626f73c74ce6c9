package setMod

import (
	"strings"

	"github.com/xor-shift/chanserv/bot/modules/commandMod"
)

//OnHelp lists every option's one-line help when subcommand is empty, otherwise hands over to that option
func (c *Command) OnHelp(src *commandMod.Source, subcommand string) bool {
	if subcommand == "" {
		src.Reply("Syntax: \x02%s\x02\n \nAllows the channel founder to set various channel options\nand other information.\n \nAvailable options:", c.Syntax())
		for _, handler := range c.registry.Entries() {
			handler.OnServHelp(src)
		}
		src.Reply("Type \x02%s\x02 for more information on a\nparticular option.", src.ServiceCommand("HELP SET \x1Foption\x1F"))
		return true
	}

	handler, ok := c.registry.Lookup(subcommand)
	if !ok {
		return false
	}

	return handler.OnHelp(src.ForCommand(strings.ToUpper(subcommand)), subcommand)
}
