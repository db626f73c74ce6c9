package setMod

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xor-shift/chanserv/bot/chanstore"
	"github.com/xor-shift/chanserv/bot/config"
	"github.com/xor-shift/chanserv/bot/mbus"
	"github.com/xor-shift/chanserv/bot/message"
	"github.com/xor-shift/chanserv/bot/modules/commandMod"
)

var (
	ownerA = mbus.ModuleIdentifier{MainIdent: "Module", SubIdent: "A"}
	ownerB = mbus.ModuleIdentifier{MainIdent: "Module", SubIdent: "B"}
)

type recorder struct {
	lines []string
}

func (r *recorder) Reply(msg message.Message) {
	r.lines = append(r.lines, msg.String())
}

type gateFunc func(principal string, ci *chanstore.Channel) bool

func (f gateFunc) CanConfigure(principal string, ci *chanstore.Channel) bool { return f(principal, ci) }

func allow(string, *chanstore.Channel) bool { return true }
func deny(string, *chanstore.Channel) bool  { return false }

type forwarded struct {
	name    string
	params  string
	handler commandMod.Command
}

type recordingForwarder struct {
	calls []forwarded
}

func (f *recordingForwarder) RunCommand(src *commandMod.Source, name string, cmd commandMod.Command, params string) commandMod.Result {
	f.calls = append(f.calls, forwarded{name: name, params: params, handler: cmd})
	return commandMod.Continue
}

type optionCommand struct {
	commandMod.Base
	executed int
}

func newOption(name string) *optionCommand {
	return &optionCommand{Base: commandMod.NewBase(name, "Set the "+name+" option", 1, 2)}
}

func (o *optionCommand) Execute(src *commandMod.Source, params []string) commandMod.Result {
	o.executed++
	return commandMod.Continue
}

func (o *optionCommand) OnHelp(src *commandMod.Source, subcommand string) bool {
	src.Reply("Help for \x02%s\x02 (%s)", src.FullCommand(), subcommand)
	return true
}

func newSource(rec *recorder, settings config.Settings) *commandMod.Source {
	src := commandMod.NewSource("alice", settings.Clone(), rec).ForCommand("SET")
	src.Channel = &chanstore.Channel{Name: "#alpha", Founder: "alice"}
	return src
}

func defaultSettings() config.Settings {
	return config.Default().Services
}

func TestRegistry_Uniqueness(t *testing.T) {
	r := NewRegistry()
	first := newOption("DESC")
	second := newOption("desc")

	require.NoError(t, r.Register("DESC", first, ownerA))
	assert.Equal(t, ErrAlreadyRegistered, r.Register("desc", second, ownerB))
	assert.Equal(t, ErrAlreadyRegistered, r.Register("Desc", second, ownerB))
	assert.Equal(t, ErrEmptyName, r.Register("", second, ownerB))

	assert.Equal(t, 1, r.Len())
	h, ok := r.Lookup("DESC")
	require.True(t, ok)
	assert.Same(t, first, h)
}

func TestRegistry_IdempotentRemoval(t *testing.T) {
	r := NewRegistry()
	h := newOption("URL")
	require.NoError(t, r.Register("URL", h, ownerA))
	require.NoError(t, r.Register("EMAIL", newOption("EMAIL"), ownerA))

	assert.True(t, r.Unregister(h))
	assert.Equal(t, 1, r.Len())
	assert.False(t, r.Unregister(h))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_CaseInsensitiveLookup(t *testing.T) {
	r := NewRegistry()
	h := newOption("Foo")
	require.NoError(t, r.Register("Foo", h, ownerA))

	for _, name := range []string{"foo", "FOO", "Foo"} {
		got, ok := r.Lookup(name)
		if assert.True(t, ok, name) {
			assert.Same(t, h, got)
		}
	}

	_, ok := r.Lookup("fo")
	assert.False(t, ok)
}

func TestRegistry_UnregisterOwner(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("A1", newOption("A1"), ownerA))
	require.NoError(t, r.Register("A2", newOption("A2"), ownerA))
	require.NoError(t, r.Register("B1", newOption("B1"), ownerB))

	assert.Equal(t, 2, r.UnregisterOwner(ownerA))
	assert.Equal(t, 0, r.UnregisterOwner(ownerA))
	assert.Equal(t, []string{"B1"}, r.Names())
}

func TestRegistry_EntriesStableOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"url", "DESC", "Email", "ENTRYMSG"} {
		require.NoError(t, r.Register(name, newOption(name), ownerA))
	}

	assert.Equal(t, []string{"DESC", "Email", "ENTRYMSG", "url"}, r.Names())
	assert.Equal(t, r.Entries(), r.Entries())
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()

	const writers = 8
	const names = 16

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		owner := mbus.ModuleIdentifier{MainIdent: "Module", SubIdent: fmt.Sprintf("W%d", w)}

		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := 0; i < names; i++ {
				h := newOption(fmt.Sprintf("OPT%d", i))
				if r.Register(h.Name(), h, owner) == nil && i%2 == 1 {
					r.Unregister(h)
				}
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := 0; i < names; i++ {
				if h, ok := r.Lookup(fmt.Sprintf("opt%d", i)); ok {
					assert.NotNil(t, h)
				}
				for _, h := range r.Entries() {
					assert.NotNil(t, h)
				}
			}
		}()
	}
	wg.Wait()

	//odd names are removed by whichever writer won them, even names stay with exactly one owner
	assert.Equal(t, names/2, r.Len())

	seen := make(map[string]bool)
	for _, name := range r.Names() {
		assert.False(t, seen[name], "duplicate %s", name)
		seen[name] = true
	}
	for i := 0; i < names; i += 2 {
		assert.True(t, seen[fmt.Sprintf("OPT%d", i)])
	}
}

func TestForward(t *testing.T) {
	assert.Equal(t, "#alpha ON CHECK", Forward("#alpha", []string{"ON", "CHECK"}))
	assert.Equal(t, "#alpha", Forward("#alpha", nil))
	assert.Equal(t, `#alpha "quoted  text"`, Forward("#alpha", []string{`"quoted  text"`}))
}

func TestExecute_ReadOnlyPrecedesAccess(t *testing.T) {
	fwd := &recordingForwarder{}
	set := NewCommand(gateFunc(deny), fwd)
	require.NoError(t, set.AddSubcommand(ownerA, newOption("DESC")))

	settings := defaultSettings()
	settings.ReadOnly = true
	rec := &recorder{}

	res := set.Execute(newSource(rec, settings), []string{"#alpha", "DESC", "x"})

	assert.Equal(t, commandMod.Continue, res)
	assert.Equal(t, []string{"Sorry, channel option setting is temporarily disabled."}, rec.lines)
	assert.Empty(t, fwd.calls)
}

func TestExecute_AccessDenied(t *testing.T) {
	fwd := &recordingForwarder{}
	var gotPrincipal string
	var gotChannel *chanstore.Channel
	set := NewCommand(gateFunc(func(principal string, ci *chanstore.Channel) bool {
		gotPrincipal, gotChannel = principal, ci
		return false
	}), fwd)
	require.NoError(t, set.AddSubcommand(ownerA, newOption("DESC")))

	rec := &recorder{}
	src := newSource(rec, defaultSettings())
	res := set.Execute(src, []string{"#alpha", "DESC", "x"})

	assert.Equal(t, commandMod.Continue, res)
	assert.Equal(t, []string{"Access denied."}, rec.lines)
	assert.Empty(t, fwd.calls)
	assert.Equal(t, "alice", gotPrincipal)
	assert.Same(t, src.Channel, gotChannel)
}

func TestExecute_DeprecatedPrecedesLookup(t *testing.T) {
	fwd := &recordingForwarder{}
	set := NewCommand(gateFunc(allow), fwd)
	mlock := newOption("MLOCK")
	require.NoError(t, set.AddSubcommand(ownerA, mlock))

	rec := &recorder{}
	res := set.Execute(newSource(rec, defaultSettings()), []string{"#alpha", "mlock", "+nt"})

	assert.Equal(t, commandMod.Continue, res)
	assert.Equal(t, []string{"SET MLOCK is deprecated. Use /msg ChanServ MODE LOCK instead."}, rec.lines)
	assert.Empty(t, fwd.calls)
	assert.Zero(t, mlock.executed)
}

func TestExecute_DeprecatedKeysIgnoreCase(t *testing.T) {
	fwd := &recordingForwarder{}
	set := NewCommand(gateFunc(allow), fwd)

	settings := defaultSettings()
	settings.DeprecatedSetOptions = map[string]string{"mlock": "MODE LOCK"}

	rec := &recorder{}
	src := commandMod.NewSource("alice", settings, rec).ForCommand("SET")
	src.Channel = &chanstore.Channel{Name: "#alpha", Founder: "alice"}

	res := set.Execute(src, []string{"#alpha", "MLOCK", "+nt"})

	assert.Equal(t, commandMod.Continue, res)
	assert.Equal(t, []string{"SET MLOCK is deprecated. Use /msg ChanServ MODE LOCK instead."}, rec.lines)
	assert.Empty(t, fwd.calls)
}

func TestExecute_Forwards(t *testing.T) {
	fwd := &recordingForwarder{}
	set := NewCommand(gateFunc(allow), fwd)
	opt := newOption("SECURE")
	require.NoError(t, set.AddSubcommand(ownerA, opt))

	rec := &recorder{}
	res := set.Execute(newSource(rec, defaultSettings()), []string{"#Alpha", "secure", "ON", "CHECK"})

	assert.Equal(t, commandMod.Continue, res)
	assert.Empty(t, rec.lines)
	require.Len(t, fwd.calls, 1)
	assert.Equal(t, "SECURE", fwd.calls[0].name)
	assert.Equal(t, "#alpha ON CHECK", fwd.calls[0].params, "target is the registered channel name")
	assert.Same(t, opt, fwd.calls[0].handler)
}

func TestExecute_UnknownOption(t *testing.T) {
	fwd := &recordingForwarder{}
	set := NewCommand(gateFunc(allow), fwd)

	rec := &recorder{}
	res := set.Execute(newSource(rec, defaultSettings()), []string{"#alpha", "BOGUS"})

	assert.Equal(t, commandMod.Continue, res)
	assert.Equal(t, []string{
		"Unknown SET option BOGUS.",
		"Type /msg ChanServ HELP SET for more information.",
	}, rec.lines)
	assert.Empty(t, fwd.calls)
}

func TestExecute_TooFewParams(t *testing.T) {
	set := NewCommand(gateFunc(allow), &recordingForwarder{})

	rec := &recorder{}
	set.Execute(newSource(rec, defaultSettings()), []string{"#alpha"})

	assert.Equal(t, []string{
		"Syntax: SET channel option parameters",
		"Type /msg ChanServ HELP SET for more information.",
	}, rec.lines)
}

func TestHelp_Listing(t *testing.T) {
	set := NewCommand(gateFunc(allow), &recordingForwarder{})
	require.NoError(t, set.AddSubcommand(ownerA, newOption("URL")))
	require.NoError(t, set.AddSubcommand(ownerA, newOption("DESC")))

	first := &recorder{}
	assert.True(t, set.OnHelp(newSource(first, defaultSettings()), ""))

	assert.Equal(t, []string{
		"Syntax: SET channel option parameters",
		" ",
		"Allows the channel founder to set various channel options",
		"and other information.",
		" ",
		"Available options:",
		"    DESC           Set the DESC option",
		"    URL            Set the URL option",
		"Type /msg ChanServ HELP SET option for more information on a",
		"particular option.",
	}, first.lines)

	second := &recorder{}
	set.OnHelp(newSource(second, defaultSettings()), "")
	assert.Equal(t, first.lines, second.lines)
}

func TestHelp_Delegates(t *testing.T) {
	set := NewCommand(gateFunc(allow), &recordingForwarder{})
	require.NoError(t, set.AddSubcommand(ownerA, newOption("DESC")))

	rec := &recorder{}
	assert.True(t, set.OnHelp(newSource(rec, defaultSettings()), "desc"))
	assert.Equal(t, []string{"Help for SET DESC (desc)"}, rec.lines)

	rec = &recorder{}
	assert.False(t, set.OnHelp(newSource(rec, defaultSettings()), "nothing"))
	assert.Empty(t, rec.lines)
}

func TestSetModule_OnTheCommandModule(t *testing.T) {
	store, err := chanstore.Open(":memory:", 100)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Register("#alpha", "alice")
	require.NoError(t, err)

	commands := commandMod.New(store, config.Default())
	mod := New(commands, store)
	mod.OnRegister(nil)

	desc := newOption("DESC")
	require.NoError(t, mod.Command().AddSubcommand(ownerA, desc))

	rec := &recorder{}
	commands.Execute("alice", "SET #ALPHA DESC a new description", rec)
	assert.Empty(t, rec.lines)
	assert.Equal(t, 1, desc.executed)

	rec = &recorder{}
	commands.Execute("mallory", "SET #alpha DESC nope", rec)
	assert.Equal(t, []string{"Access denied."}, rec.lines)

	rec = &recorder{}
	commands.Execute("alice", "SET #beta DESC x", rec)
	assert.Equal(t, []string{"Channel #beta isn't registered."}, rec.lines)

	rec = &recorder{}
	commands.Execute("alice", "SET #alpha", rec)
	assert.Equal(t, "Syntax: SET channel option parameters", rec.lines[0])

	rec = &recorder{}
	commands.Execute("alice", "HELP SET DESC", rec)
	assert.Equal(t, []string{"Help for SET DESC (DESC)"}, rec.lines)

	rec = &recorder{}
	commands.Execute("alice", "HELP SET DESC extra words", rec)
	assert.Equal(t, []string{"Help for SET DESC (DESC)"}, rec.lines)

	rec = &recorder{}
	commands.Execute("alice", "HELP SET BOGUS", rec)
	assert.Equal(t, []string{"No help available for SET BOGUS."}, rec.lines)

	mod.OnUnregister()
	rec = &recorder{}
	commands.Execute("alice", "SET #alpha DESC x", rec)
	assert.Equal(t, []string{`Unknown command SET. "/msg ChanServ HELP" for help.`}, rec.lines)
}
