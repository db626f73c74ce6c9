package setOptsMod

import (
	"net/mail"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xor-shift/chanserv/bot/chanstore"
	"github.com/xor-shift/chanserv/bot/modules/commandMod"
)

//Store is the part of the channel store the options write through
type Store interface {
	SetDescription(name, desc string) error
	SetURL(name, url string) error
	SetEmail(name, email string) error
	SetEntryMsg(name, msg string) error
	SetFounder(name, founder string) error
	SetFlag(name string, flag chanstore.Flag, on bool) error
	IsServicesOper(account string) bool
}

func internalError(src *commandMod.Source, err error) {
	log.WithError(err).WithFields(log.Fields{
		"principal": src.Principal,
		"command":   src.FullCommand(),
	}).Error("option update failed")
	src.Reply("Sorry, an internal error occurred.")
}

//textOption stores a free-form value, no value clears it
type textOption struct {
	commandMod.Base

	help     string
	changed  string
	unset    string
	set      func(channel, value string) error
	validate func(src *commandMod.Source, value string) bool
}

func (o *textOption) TakesChannel() bool { return true }

func (o *textOption) Execute(src *commandMod.Source, params []string) commandMod.Result {
	value := ""
	if len(params) > 1 {
		value = strings.TrimSpace(params[1])
	}

	if value != "" && o.validate != nil && !o.validate(src, value) {
		return commandMod.Continue
	}

	if err := o.set(src.Channel.Name, value); err != nil {
		internalError(src, err)
		return commandMod.Continue
	}

	log.WithFields(log.Fields{
		"principal": src.Principal,
		"channel":   src.Channel.Name,
		"option":    o.Name(),
		"cleared":   value == "",
	}).Info("channel option changed")

	if value == "" {
		src.Reply(o.unset, src.Channel.Name)
	} else {
		src.Reply(o.changed, src.Channel.Name, value)
	}

	return commandMod.Continue
}

func (o *textOption) OnHelp(src *commandMod.Source, subcommand string) bool {
	src.Reply("Syntax: \x02%s\x02\n \n%s", o.Syntax(), o.help)
	return true
}

func validEmail(src *commandMod.Source, value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		src.Reply("\x02%s\x02 is not a valid e-mail address.", value)
		return false
	}
	return true
}

func NewDescOption(store Store) commandMod.ChannelCommand {
	return &textOption{
		Base: commandMod.NewBase("DESC", "Set the channel description", 1, 2).
			WithSyntax("SET \x1Fchannel\x1F DESC [\x1Fdescription\x1F]"),
		help:    "Sets the description for the channel, which shows up with\nthe \x02LIST\x02 and \x02INFO\x02 commands.\nIf no description is given it is removed.",
		changed: "Description of \x02%s\x02 changed to \x02%s\x02.",
		unset:   "Description of \x02%s\x02 unset.",
		set:     store.SetDescription,
	}
}

func NewURLOption(store Store) commandMod.ChannelCommand {
	return &textOption{
		Base: commandMod.NewBase("URL", "Associate a URL with the channel", 1, 2).
			WithSyntax("SET \x1Fchannel\x1F URL [\x1Furl\x1F]"),
		help:    "Associates a URL with the channel. This URL will be\ndisplayed whenever someone requests information on the\nchannel with the \x02INFO\x02 command. If no URL is\ngiven, it deletes any current URL for the channel.",
		changed: "URL for \x02%s\x02 changed to \x02%s\x02.",
		unset:   "URL for \x02%s\x02 unset.",
		set:     store.SetURL,
	}
}

func NewEmailOption(store Store) commandMod.ChannelCommand {
	return &textOption{
		Base: commandMod.NewBase("EMAIL", "Set the channel E-mail address", 1, 2).
			WithSyntax("SET \x1Fchannel\x1F EMAIL [\x1Faddress\x1F]"),
		help:     "Sets the e-mail address for the channel. This e-mail\naddress will be displayed whenever someone requests\ninformation on the channel with the \x02INFO\x02 command.\nIf no address is given, it deletes any current address.",
		changed:  "E-mail address for \x02%s\x02 changed to \x02%s\x02.",
		unset:    "E-mail address for \x02%s\x02 unset.",
		set:      store.SetEmail,
		validate: validEmail,
	}
}

func NewEntryMsgOption(store Store) commandMod.ChannelCommand {
	return &textOption{
		Base: commandMod.NewBase("ENTRYMSG", "Set a message to be sent to users when they enter the channel", 1, 2).
			WithSyntax("SET \x1Fchannel\x1F ENTRYMSG [\x1Fmessage\x1F]"),
		help:    "Sets the message which will be sent via /notice to users\nwhen they enter the channel. If no parameter is given,\nno message will be sent upon entering the channel.",
		changed: "Entry message for \x02%s\x02 changed to \x02%s\x02.",
		unset:   "Entry message for \x02%s\x02 unset.",
		set:     store.SetEntryMsg,
	}
}

//founderOption hands the channel over, only the current founder or a services operator may use it
type founderOption struct {
	commandMod.Base
	store Store
}

func NewFounderOption(store Store) commandMod.ChannelCommand {
	return &founderOption{
		Base: commandMod.NewBase("FOUNDER", "Set the founder of a channel", 2, 2).
			WithSyntax("SET \x1Fchannel\x1F FOUNDER \x1Faccount\x1F"),
		store: store,
	}
}

func (o *founderOption) TakesChannel() bool { return true }

func (o *founderOption) Execute(src *commandMod.Source, params []string) commandMod.Result {
	if !src.Channel.IsFounder(src.Principal) && !o.store.IsServicesOper(src.Principal) {
		src.Reply("Access denied.")
		return commandMod.Continue
	}

	founder := strings.TrimSpace(params[1])
	if strings.ContainsAny(founder, " #") || founder == "" {
		src.Reply("\x02%s\x02 is not a valid account name.", founder)
		return commandMod.Continue
	}

	if err := o.store.SetFounder(src.Channel.Name, founder); err != nil {
		internalError(src, err)
		return commandMod.Continue
	}

	log.WithFields(log.Fields{
		"principal": src.Principal,
		"channel":   src.Channel.Name,
		"previous":  src.Channel.Founder,
		"founder":   founder,
	}).Info("channel founder changed")

	src.Reply("Founder of \x02%s\x02 changed to \x02%s\x02.", src.Channel.Name, founder)
	return commandMod.Continue
}

func (o *founderOption) OnHelp(src *commandMod.Source, subcommand string) bool {
	src.Reply("Syntax: \x02%s\x02\n \nChanges the founder of a channel to the given account.\nOnly the current founder or a services operator may do\nthis.", o.Syntax())
	return true
}

//flagOption toggles one channel flag with ON or OFF
type flagOption struct {
	commandMod.Base

	flag  chanstore.Flag
	label string
	help  string
	store Store
}

func newFlagOption(store Store, name, desc, label, help string, flag chanstore.Flag) commandMod.ChannelCommand {
	return &flagOption{
		Base:  commandMod.NewBase(name, desc, 2, 2).WithSyntax("SET \x1Fchannel\x1F " + name + " {ON | OFF}"),
		flag:  flag,
		label: label,
		help:  help,
		store: store,
	}
}

func NewKeepTopicOption(store Store) commandMod.ChannelCommand {
	return newFlagOption(store, "KEEPTOPIC", "Retain topic when channel is not in use", "Topic retention",
		"Enables or disables the \x02topic retention\x02 option for a\nchannel. When \x02topic retention\x02 is set, the topic for the\nchannel will be remembered even after the last user\nleaves the channel.",
		chanstore.FlagKeepTopic)
}

func NewPrivateOption(store Store) commandMod.ChannelCommand {
	return newFlagOption(store, "PRIVATE", "Hide channel from the LIST command", "Private",
		"Enables or disables the \x02private\x02 option for a channel.\nWhen \x02private\x02 is set, the channel will not appear in\nthe \x02LIST\x02 command output.",
		chanstore.FlagPrivate)
}

func NewSecureOption(store Store) commandMod.ChannelCommand {
	return newFlagOption(store, "SECURE", "Activate security features", "Secure",
		"Enables or disables security features for a\nchannel. When \x02SECURE\x02 is set, only users who have\nidentified to services will be given access to the\nchannel.",
		chanstore.FlagSecure)
}

func NewPeaceOption(store Store) commandMod.ChannelCommand {
	return newFlagOption(store, "PEACE", "Regulate the use of critical commands", "Peace",
		"Enables or disables the \x02peace\x02 option for a channel.\nWhen \x02peace\x02 is set, a user won't be able to kick,\nban or remove a channel status of a user that has\na level superior or equal to theirs via services.",
		chanstore.FlagPeace)
}

func (o *flagOption) TakesChannel() bool { return true }

func (o *flagOption) Execute(src *commandMod.Source, params []string) commandMod.Result {
	var on bool
	switch strings.ToUpper(params[1]) {
	case "ON":
		on = true
	case "OFF":
		on = false
	default:
		o.OnSyntaxError(src, params[1])
		return commandMod.Continue
	}

	if err := o.store.SetFlag(src.Channel.Name, o.flag, on); err != nil {
		internalError(src, err)
		return commandMod.Continue
	}

	state := "off"
	if on {
		state = "on"
	}

	log.WithFields(log.Fields{
		"principal": src.Principal,
		"channel":   src.Channel.Name,
		"option":    o.Name(),
		"state":     state,
	}).Info("channel option changed")

	src.Reply("%s option for \x02%s\x02 is now \x02%s\x02.", o.label, src.Channel.Name, state)
	return commandMod.Continue
}

func (o *flagOption) OnHelp(src *commandMod.Source, subcommand string) bool {
	src.Reply("Syntax: \x02%s\x02\n \n%s", o.Syntax(), o.help)
	return true
}
