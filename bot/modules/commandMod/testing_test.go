package commandMod

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xor-shift/chanserv/bot/chanstore"
	"github.com/xor-shift/chanserv/bot/config"
	"github.com/xor-shift/chanserv/bot/message"
)

type recorder struct {
	lines []string
}

func (r *recorder) Reply(msg message.Message) {
	r.lines = append(r.lines, msg.String())
}

type echoCommand struct {
	Base
	channel bool

	calls  int
	src    *Source
	params []string
}

func newEchoCommand(name string, min, max int, channel bool) *echoCommand {
	return &echoCommand{Base: NewBase(name, "Echoes its params", min, max), channel: channel}
}

func (c *echoCommand) TakesChannel() bool { return c.channel }

func (c *echoCommand) Execute(src *Source, params []string) Result {
	c.calls++
	c.src = src
	c.params = params
	src.Reply("ok")
	return Continue
}

func openTestStore(t *testing.T) *chanstore.Store {
	t.Helper()

	store, err := chanstore.Open(":memory:", 100)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func testSource(rec *recorder) *Source {
	return NewSource("alice", config.Default().Services.Clone(), rec)
}
