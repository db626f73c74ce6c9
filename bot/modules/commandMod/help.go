package commandMod

import "strings"

//HelpCommand lists every top-level command, or asks one of them for its detailed help
type HelpCommand struct {
	Base
	module *CommandModule
}

func NewHelpCommand(module *CommandModule) *HelpCommand {
	return &HelpCommand{
		Base:   NewBase("HELP", "Displays this list and give information about commands", 0, 2).WithSyntax("HELP [\x1Fcommand\x1F [\x1Foption\x1F]]"),
		module: module,
	}
}

func (c *HelpCommand) Execute(src *Source, params []string) Result {
	if len(params) == 0 {
		src.Reply("\x02%s\x02 allows you to register and control various\naspects of channels.\nFor more information on a specific command, type\n\x02%s\x02.\n \nThe following commands are available:",
			src.Settings.ServiceNick, src.ServiceCommand("HELP \x1Fcommand\x1F"))
		for _, cmd := range c.module.Commands() {
			cmd.OnServHelp(src)
		}
		return Continue
	}

	//only the first word names the topic, anything after it is ignored
	topic := ""
	if len(params) > 1 {
		if fields := strings.Fields(params[1]); len(fields) > 0 {
			topic = fields[0]
		}
	}

	//help output refers to the command itself, not to HELP
	hsrc := src.ForCommand(strings.ToUpper(params[0]))
	hsrc.Parent = ""

	cmd, ok := c.module.FindCommand(params[0])
	if !ok || !cmd.OnHelp(hsrc, topic) {
		src.Reply("No help available for \x02%s\x02.", strings.TrimSpace(params[0]+" "+topic))
	}

	return Continue
}

func (c *HelpCommand) OnHelp(src *Source, subcommand string) bool {
	src.Reply("Syntax: \x02%s\x02\n \nWithout arguments lists the available commands. With a\ncommand name, shows detailed help for that command.", c.Syntax())
	return true
}
