//Package setOptsMod provides the stock SET options. They live on the SET command only while this module is on the bus
package setOptsMod

import (
	log "github.com/sirupsen/logrus"

	"github.com/xor-shift/chanserv/bot/mbus"
	"github.com/xor-shift/chanserv/bot/modules/setMod"
)

var Identifier = mbus.ModuleIdentifier{
	MainIdent: "Module",
	SubIdent:  "SetOptions",
}

type SetOptionsModule struct {
	set     *setMod.Command
	options []setMod.Handler
}

func New(set *setMod.Command, store Store) *SetOptionsModule {
	return &SetOptionsModule{
		set: set,
		options: []setMod.Handler{
			NewDescOption(store),
			NewURLOption(store),
			NewEmailOption(store),
			NewEntryMsgOption(store),
			NewFounderOption(store),
			NewKeepTopicOption(store),
			NewPrivateOption(store),
			NewSecureOption(store),
			NewPeaceOption(store),
		},
	}
}

func (mod *SetOptionsModule) Options() []setMod.Handler {
	return mod.options
}

func (mod *SetOptionsModule) GetIdentifier() mbus.ModuleIdentifier {
	return Identifier
}

func (mod *SetOptionsModule) OnRegister(bus *mbus.Bus) {
	added := 0
	for _, option := range mod.options {
		if err := mod.set.AddSubcommand(Identifier, option); err != nil {
			log.WithError(err).WithField("option", option.Name()).Warn("skipping SET option")
			continue
		}
		added++
	}
	log.WithField("options", added).Println("Set options module registered")
}

func (mod *SetOptionsModule) OnUnregister() {
	n := mod.set.DelSubcommandsOf(Identifier)
	log.WithField("options", n).Println("Set options module unregistered")
}

func (mod *SetOptionsModule) OnMessage(msg mbus.Message) {}
