package commandMod

import "github.com/pkg/errors"

type Result int

const (
	//Continue lets the caller keep processing, every user-facing failure still returns it
	Continue Result = iota
	//Stop tells the caller to stop processing the current line
	Stop
)

var ErrCommandExists = errors.New("command already registered")

//Command is what every top-level command and every subcommand implements. Arity is declared through Params,
//the framework splits the input into at most max params and calls OnSyntaxError when fewer than min are given
type Command interface {
	Name() string
	Description() string
	Params() (min, max int)

	Execute(src *Source, params []string) Result
	//OnServHelp contributes one line to a help listing
	OnServHelp(src *Source)
	//OnHelp prints detailed help, returning false when there is none for subcommand
	OnHelp(src *Source, subcommand string) bool
	OnSyntaxError(src *Source, subcommand string)
}

//ChannelCommand is implemented by commands whose first param names a registered channel. The framework resolves it into
//Source.Channel before Execute and answers for unregistered channels itself
type ChannelCommand interface {
	Command
	TakesChannel() bool
}

//Base carries the name, description and arity of a command and supplies the default help behaviour
type Base struct {
	name      string
	desc      string
	minParams int
	maxParams int
	syntax    string
}

func NewBase(name, desc string, minParams, maxParams int) Base {
	return Base{
		name:      name,
		desc:      desc,
		minParams: minParams,
		maxParams: maxParams,
	}
}

//WithSyntax sets the usage shown on syntax errors, IRC formatting codes allowed
func (b Base) WithSyntax(syntax string) Base {
	b.syntax = syntax
	return b
}

func (b *Base) Name() string           { return b.name }
func (b *Base) Description() string    { return b.desc }
func (b *Base) Params() (min, max int) { return b.minParams, b.maxParams }
func (b *Base) Syntax() string         { return b.syntax }

func (b *Base) OnServHelp(src *Source) {
	src.Reply("    %-14s %s", b.name, b.desc)
}

func (b *Base) OnHelp(src *Source, subcommand string) bool {
	return false
}

func (b *Base) OnSyntaxError(src *Source, subcommand string) {
	syntax := b.syntax
	if syntax == "" {
		syntax = src.FullCommand()
	}
	src.SyntaxError(syntax)
}
