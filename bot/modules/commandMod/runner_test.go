package commandMod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_SyntaxError(t *testing.T) {
	runner := NewRunner(openTestStore(t))
	cmd := newEchoCommand("ECHO", 2, 3, false)
	rec := &recorder{}

	res := runner.RunCommand(testSource(rec), "ECHO", cmd, "only")

	assert.Equal(t, Continue, res)
	assert.Zero(t, cmd.calls)
	assert.Equal(t, []string{
		"Syntax: ECHO",
		"Type /msg ChanServ HELP ECHO for more information.",
	}, rec.lines)
}

func TestRunner_SplitsPerArity(t *testing.T) {
	runner := NewRunner(openTestStore(t))
	cmd := newEchoCommand("ECHO", 1, 2, false)
	rec := &recorder{}

	runner.RunCommand(testSource(rec), "ECHO", cmd, "first the  rest")

	assert.Equal(t, []string{"first", "the  rest"}, cmd.params)
	assert.Equal(t, "ECHO", cmd.src.Command)
	assert.Nil(t, cmd.src.Channel)
}

func TestRunner_ResolvesChannel(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Register("#alpha", "alice")
	require.NoError(t, err)

	runner := NewRunner(store)
	cmd := newEchoCommand("ECHO", 1, 2, true)

	rec := &recorder{}
	runner.RunCommand(testSource(rec), "ECHO", cmd, "#nope x")
	assert.Zero(t, cmd.calls)
	assert.Equal(t, []string{"Channel #nope isn't registered."}, rec.lines)

	rec = &recorder{}
	runner.RunCommand(testSource(rec), "ECHO", cmd, "#ALPHA x")
	assert.Equal(t, 1, cmd.calls)
	if assert.NotNil(t, cmd.src.Channel) {
		assert.Equal(t, "#alpha", cmd.src.Channel.Name)
	}
}

func TestRunner_ForwardingKeepsCommandPath(t *testing.T) {
	runner := NewRunner(openTestStore(t))
	inner := newEchoCommand("DESC", 2, 2, false)
	rec := &recorder{}

	outer := testSource(rec).ForCommand("SET")
	runner.RunCommand(outer, "DESC", inner, "#alpha")

	assert.Equal(t, []string{
		"Syntax: SET DESC",
		"Type /msg ChanServ HELP SET DESC for more information.",
	}, rec.lines)

	runner.RunCommand(outer, "DESC", inner, "#alpha text")
	assert.Equal(t, "SET DESC", inner.src.FullCommand())
	assert.Equal(t, "alice", inner.src.Principal)
}
