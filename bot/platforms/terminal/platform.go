//Package terminal lets an operator talk to the services from a local console
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/xor-shift/chanserv/bot/config"
	"github.com/xor-shift/chanserv/bot/mbus"
	"github.com/xor-shift/chanserv/bot/message"
)

//Platform turns every input line into an IncomingChatMessage from the configured identity and prints replies
type Platform struct {
	SubIdent string

	principal string
	color     bool

	in       io.Reader
	out      io.Writer
	outMutex sync.Mutex
	bus      *mbus.Bus
	busMutex sync.RWMutex
}

func New(subIdent string, cfg config.TerminalConfig, in io.Reader, out io.Writer) *Platform {
	return &Platform{
		SubIdent:  subIdent,
		principal: cfg.Ident,
		color:     cfg.Color,
		in:        in,
		out:       out,
	}
}

func (plat *Platform) GetIdentifier() mbus.ModuleIdentifier {
	return mbus.ModuleIdentifier{
		MainIdent: "Terminal",
		SubIdent:  plat.SubIdent,
	}
}

func (plat *Platform) OnRegister(bus *mbus.Bus) {
	plat.busMutex.Lock()
	plat.bus = bus
	plat.busMutex.Unlock()
	log.Println("Terminal platform registered")
}

func (plat *Platform) OnUnregister() {
	plat.busMutex.Lock()
	plat.bus = nil
	plat.busMutex.Unlock()
	log.Println("Terminal platform unregistered")
}

func (plat *Platform) OnMessage(msg mbus.Message) {
	outgoing, ok := msg.(mbus.OutgoingChatMessage)
	if !ok {
		return
	}

	text := outgoing.Message.String()
	if plat.color {
		text = outgoing.Message.ToANSI()
	}

	plat.outMutex.Lock()
	defer plat.outMutex.Unlock()

	if _, err := fmt.Fprintln(plat.out, text); err != nil {
		log.WithError(err).Warn("failed to write to terminal")
	}
}

//stripMsgPrefix accepts lines pasted from help output, "/msg ChanServ SET ..." becomes "SET ..."
func stripMsgPrefix(line string) string {
	if !strings.HasPrefix(strings.ToLower(line), "/msg ") {
		return line
	}

	fields := strings.SplitN(strings.TrimSpace(line[len("/msg "):]), " ", 2)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

//Serve reads lines until the input ends or ctx is cancelled. It has to be called after the platform is registered
func (plat *Platform) Serve(ctx context.Context) error {
	scanner := bufio.NewScanner(plat.in)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := stripMsgPrefix(strings.TrimSpace(scanner.Text()))
		if line == "" {
			continue
		}

		plat.busMutex.RLock()
		bus := plat.bus
		plat.busMutex.RUnlock()

		if bus == nil {
			return errors.New("terminal platform is not registered")
		}

		bus.NewMessage(mbus.IncomingChatMessage{
			SourceModule: plat.GetIdentifier(),
			SenderIdent:  plat.principal,
			ReplyTo:      plat.principal,
			Message:      message.PlaintextToMessage(line),
		})
	}

	return errors.Wrap(scanner.Err(), "reading terminal input")
}
