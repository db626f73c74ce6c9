package setMod

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/xor-shift/chanserv/bot/mbus"
	"github.com/xor-shift/chanserv/bot/modules/commandMod"
)

var (
	ErrAlreadyRegistered = errors.New("option already registered")
	ErrEmptyName         = errors.New("option name is empty")
)

type Handler = commandMod.Command

type entry struct {
	name    string
	handler Handler
	owner   mbus.ModuleIdentifier
}

//Registry maps option names, compared case-insensitively, to the handlers of the modules that registered them.
//It only references handlers, the owning module is expected to remove them when it goes away
type Registry struct {
	mutex   sync.RWMutex
	entries map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

func normalize(name string) string {
	return strings.ToUpper(name)
}

//Register adds handler under name unless the name is taken, in which case nothing changes
func (r *Registry) Register(name string, handler Handler, owner mbus.ModuleIdentifier) error {
	if name == "" {
		return ErrEmptyName
	}

	key := normalize(name)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.entries[key]; ok {
		return ErrAlreadyRegistered
	}

	r.entries[key] = &entry{name: name, handler: handler, owner: owner}
	return nil
}

//Unregister removes handler wherever it is registered and reports whether anything was removed
func (r *Registry) Unregister(handler Handler) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for k, e := range r.entries {
		if e.handler == handler {
			delete(r.entries, k)
			return true
		}
	}

	return false
}

//UnregisterOwner removes every handler registered by owner
func (r *Registry) UnregisterOwner(owner mbus.ModuleIdentifier) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	n := 0
	for k, e := range r.entries {
		if e.owner == owner {
			delete(r.entries, k)
			n++
		}
	}

	return n
}

func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	e, ok := r.entries[normalize(name)]
	if !ok {
		return nil, false
	}
	return e.handler, true
}

func (r *Registry) sortedKeys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

//Entries returns the handlers ordered by normalized name, the order never depends on registration order
func (r *Registry) Entries() []Handler {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	handlers := make([]Handler, 0, len(r.entries))
	for _, k := range r.sortedKeys() {
		handlers = append(handlers, r.entries[k].handler)
	}
	return handlers
}

//Names returns the registered names as given to Register, in Entries order
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.entries))
	for _, k := range r.sortedKeys() {
		names = append(names, r.entries[k].name)
	}
	return names
}

func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.entries)
}
