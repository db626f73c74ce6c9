package commandMod

import (
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/xor-shift/chanserv/bot/chanstore"
	"github.com/xor-shift/chanserv/bot/config"
	"github.com/xor-shift/chanserv/bot/mbus"
	"github.com/xor-shift/chanserv/bot/message"
	"github.com/xor-shift/chanserv/common/ratelimit"
)

var Identifier = mbus.ModuleIdentifier{
	MainIdent: "Module",
	SubIdent:  "Command",
}

type CommandModule struct {
	Prefix string

	store   *chanstore.Store
	bus     *mbus.Bus
	runner  *Runner
	limiter *ratelimit.RateLimiter

	settingsMutex sync.RWMutex
	settings      config.Settings

	commandsMutex sync.RWMutex
	commands      map[string]Command
}

func New(store *chanstore.Store, cfg *config.Config) *CommandModule {
	mod := &CommandModule{
		Prefix: cfg.Prefix,

		store:   store,
		runner:  NewRunner(store),
		limiter: ratelimit.NewRateLimiter(cfg.RateLimit),

		settings: cfg.Services.Clone(),
		commands: make(map[string]Command),
	}

	if err := mod.RegisterCommand(NewHelpCommand(mod)); err != nil {
		log.WithError(err).Panic("registering HELP")
	}

	return mod
}

func (mod *CommandModule) Runner() *Runner {
	return mod.runner
}

//Settings returns a snapshot, later changes (e.g. toggling read-only) do not affect it
func (mod *CommandModule) Settings() config.Settings {
	mod.settingsMutex.RLock()
	defer mod.settingsMutex.RUnlock()

	return mod.settings.Clone()
}

func (mod *CommandModule) SetReadOnly(readOnly bool) {
	mod.settingsMutex.Lock()
	mod.settings.ReadOnly = readOnly
	mod.settingsMutex.Unlock()

	log.WithField("read_only", readOnly).Info("read-only mode changed")
}

func (mod *CommandModule) RegisterCommand(cmd Command) error {
	key := strings.ToUpper(cmd.Name())

	mod.commandsMutex.Lock()
	defer mod.commandsMutex.Unlock()

	if _, exists := mod.commands[key]; exists {
		return ErrCommandExists
	}
	mod.commands[key] = cmd

	return nil
}

func (mod *CommandModule) UnregisterCommand(name string) bool {
	key := strings.ToUpper(name)

	mod.commandsMutex.Lock()
	defer mod.commandsMutex.Unlock()

	if _, exists := mod.commands[key]; !exists {
		return false
	}
	delete(mod.commands, key)

	return true
}

func (mod *CommandModule) FindCommand(name string) (Command, bool) {
	mod.commandsMutex.RLock()
	defer mod.commandsMutex.RUnlock()

	cmd, ok := mod.commands[strings.ToUpper(name)]
	return cmd, ok
}

//Commands returns every top-level command ordered by name
func (mod *CommandModule) Commands() []Command {
	mod.commandsMutex.RLock()
	defer mod.commandsMutex.RUnlock()

	list := make([]Command, 0, len(mod.commands))
	for _, c := range mod.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return strings.ToUpper(list[i].Name()) < strings.ToUpper(list[j].Name())
	})

	return list
}

//Execute runs one line typed by principal. It is the whole per-line path minus the bus plumbing
func (mod *CommandModule) Execute(principal string, line string, replier Replier) Result {
	src := NewSource(principal, mod.Settings(), replier)

	name, rest := SplitCommand(line)
	if name == "" {
		return Continue
	}

	if !mod.limiter.Check(principal) {
		log.WithField("principal", principal).Warn("command flood, ignoring")
		return Continue
	}

	cmd, ok := mod.FindCommand(name)
	if !ok {
		src.Reply("Unknown command \x02%s\x02. \"%s\" for help.", name, src.ServiceCommand("HELP"))
		return Continue
	}

	return mod.runner.RunCommand(src, strings.ToUpper(name), cmd, rest)
}

func (mod *CommandModule) GetIdentifier() mbus.ModuleIdentifier {
	return Identifier
}

func (mod *CommandModule) OnRegister(bus *mbus.Bus) {
	mod.bus = bus
	log.Println("Command module registered")
}

func (mod *CommandModule) OnUnregister() {
	log.Println("Command module unregistered")
}

func (mod *CommandModule) OnMessage(msg mbus.Message) {
	if inChatMessage, ok := msg.(mbus.IncomingChatMessage); ok {
		text := message.MessageToPlaintext(inChatMessage.Message)
		if !strings.HasPrefix(text, mod.Prefix) {
			return
		}

		mod.Execute(inChatMessage.SenderIdent, strings.TrimPrefix(text, mod.Prefix), ReplierFunc(func(reply message.Message) {
			mod.bus.NewMessage(inChatMessage.MakeReply(reply))
		}))
	} else if controlMessage, ok := msg.(mbus.ModuleControlMessage); ok {
		mod.onControl(controlMessage)
	}
}

func (mod *CommandModule) onControl(controlMessage mbus.ModuleControlMessage) {
	if len(controlMessage.StrArgv) == 0 {
		return
	}

	switch controlMessage.StrArgv[0] {
	case "setperm":
		level, ok := controlMessage.OtherData["level"].(int)
		if len(controlMessage.StrArgv) < 2 || !ok {
			log.WithField("argv", controlMessage.StrArgv).Warn("malformed setperm control message")
			return
		}
		if err := mod.store.SetUserPerm(controlMessage.StrArgv[1], level); err != nil {
			log.WithError(err).Error("setperm failed")
		}

	case "readonly":
		if len(controlMessage.StrArgv) < 2 {
			return
		}
		mod.SetReadOnly(strings.EqualFold(controlMessage.StrArgv[1], "on"))
	}
}
