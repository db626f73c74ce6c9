package mbus

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

type Bus struct {
	workersWG *sync.WaitGroup
	//all actions should read lock this, module modifications etc. will write lock it
	busMutex *sync.RWMutex
	//no mutex for this is needed, busMutex should suffice
	modules map[ModuleIdentifier]Module

	//the queue is unbounded so that modules can post replies from inside OnMessage without blocking the worker
	queueMutex *sync.Mutex
	queue      []Message
	wakeup     chan struct{}
	closed     bool
	stopped    bool
}

func New() *Bus {
	bus := &Bus{
		workersWG: &sync.WaitGroup{},
		busMutex:  &sync.RWMutex{},
		modules:   make(map[ModuleIdentifier]Module),

		queueMutex: &sync.Mutex{},
		queue:      make([]Message, 0, 64),
		wakeup:     make(chan struct{}, 1),
	}

	return bus
}

//Stop lets the worker drain every queued message (including the ones posted while draining), then unregisters all modules
func (bus *Bus) Stop() {
	bus.queueMutex.Lock()
	bus.closed = true
	bus.queueMutex.Unlock()
	bus.signal()

	bus.Wait()

	bus.busMutex.Lock()
	defer bus.busMutex.Unlock()

	for k, v := range bus.modules {
		v.OnUnregister()
		delete(bus.modules, k)
	}
}

//RunSync runs the message worker on the calling goroutine until Stop is called
func (bus *Bus) RunSync() {
	bus.workersWG.Add(1)
	bus.messageWorker()
}

//RunAsync starts the message worker. Only one worker should run at a time, a second one would break message ordering
func (bus *Bus) RunAsync() {
	bus.workersWG.Add(1)
	go bus.messageWorker()
}

func (bus *Bus) Wait() {
	bus.workersWG.Wait()
}

func (bus *Bus) signal() {
	select {
	case bus.wakeup <- struct{}{}:
	default:
	}
}

func (bus *Bus) next() (Message, bool) {
	for {
		bus.queueMutex.Lock()
		if len(bus.queue) > 0 {
			msg := bus.queue[0]
			bus.queue[0] = nil
			bus.queue = bus.queue[1:]
			bus.queueMutex.Unlock()
			return msg, true
		}

		if bus.closed {
			bus.stopped = true
			bus.queueMutex.Unlock()
			return nil, false
		}
		bus.queueMutex.Unlock()

		<-bus.wakeup
	}
}

func (bus *Bus) trigger(module Module, message Message) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"module": module.GetIdentifier().String(),
				"panic":  fmt.Sprint(r),
			}).Error("bus message handler panicked")
		}
	}()

	module.OnMessage(message)
}

func (bus *Bus) dispatch(msg Message) {
	bus.busMutex.RLock()
	defer bus.busMutex.RUnlock()

	if tMsg, ok := msg.(TargetedMessage); ok {
		tIdent := tMsg.GetTargetIdentifier()
		if tIdent.SubIdent == "*" {
			for k, v := range bus.modules {
				if k.Compare(tIdent) == 2 {
					bus.trigger(v, msg)
				}
			}
		} else if target, ok := bus.modules[tIdent]; ok {
			bus.trigger(target, msg)
		} else {
			log.WithField("target", tIdent.String()).Debug("dropping message for unknown module")
		}
		return
	}

	for _, v := range bus.modules {
		bus.trigger(v, msg)
	}
}

func (bus *Bus) messageWorker() {
	defer bus.workersWG.Done()

	log.Debug("message worker has started")

	for {
		msg, ok := bus.next()
		if !ok {
			break
		}

		bus.dispatch(msg)
	}

	log.Debug("message worker is exiting")
}

//RegisterModule replaces any module with the same identifier, calling the old module's OnUnregister first
func (bus *Bus) RegisterModule(module Module) {
	identifier := module.GetIdentifier()

	bus.busMutex.Lock()
	bus.unregisterModule(identifier)
	bus.modules[identifier] = module
	module.OnRegister(bus)
	bus.busMutex.Unlock()

	log.WithField("module", identifier.String()).Info("module registered")
	bus.NewMessage(ModuleRegisteredMessage{TheModule: identifier})
}

func (bus *Bus) UnregisterModule(identifier ModuleIdentifier) bool {
	bus.busMutex.Lock()
	defer bus.busMutex.Unlock()

	return bus.unregisterModule(identifier)
}

func (bus *Bus) unregisterModule(identifier ModuleIdentifier) bool {
	mod, ok := bus.modules[identifier]
	if !ok {
		return false
	}

	mod.OnUnregister()
	delete(bus.modules, identifier)
	log.WithField("module", identifier.String()).Info("module unregistered")

	return true
}

func (bus *Bus) HasModule(identifier ModuleIdentifier) bool {
	bus.busMutex.RLock()
	defer bus.busMutex.RUnlock()

	_, ok := bus.modules[identifier]
	return ok
}

//NewMessage queues a message. It never blocks; messages posted after the worker has exited are dropped
func (bus *Bus) NewMessage(message Message) {
	bus.queueMutex.Lock()
	if bus.stopped {
		bus.queueMutex.Unlock()
		log.WithField("type", message.GetType()).Warn("bus is stopped, dropping message")
		return
	}
	bus.queue = append(bus.queue, message)
	bus.queueMutex.Unlock()

	bus.signal()
}
