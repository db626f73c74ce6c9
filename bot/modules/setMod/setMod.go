package setMod

import (
	log "github.com/sirupsen/logrus"

	"github.com/xor-shift/chanserv/bot/mbus"
	"github.com/xor-shift/chanserv/bot/modules/commandMod"
)

var Identifier = mbus.ModuleIdentifier{
	MainIdent: "Module",
	SubIdent:  "Set",
}

//SetModule puts SET on the command module while it is registered on the bus
type SetModule struct {
	commands *commandMod.CommandModule
	set      *Command
}

func New(commands *commandMod.CommandModule, gate AccessGate) *SetModule {
	return &SetModule{
		commands: commands,
		set:      NewCommand(gate, commands.Runner()),
	}
}

func (mod *SetModule) Command() *Command {
	return mod.set
}

func (mod *SetModule) GetIdentifier() mbus.ModuleIdentifier {
	return Identifier
}

func (mod *SetModule) OnRegister(bus *mbus.Bus) {
	if err := mod.commands.RegisterCommand(mod.set); err != nil {
		log.WithError(err).Error("failed to register SET")
		return
	}
	log.Println("Set module registered")
}

func (mod *SetModule) OnUnregister() {
	mod.commands.UnregisterCommand(mod.set.Name())
	log.Println("Set module unregistered")
}

func (mod *SetModule) OnMessage(msg mbus.Message) {
	if controlMessage, ok := msg.(mbus.ModuleControlMessage); ok && len(controlMessage.StrArgv) > 0 && controlMessage.StrArgv[0] == "options" {
		log.WithField("options", mod.set.Registry().Names()).Info("registered SET options")
	}
}
