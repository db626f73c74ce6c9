package mbus

//Module is anything that can sit on the bus. OnRegister and OnUnregister are called with the bus write lock held,
//so a module's activation never overlaps with message dispatch
type Module interface {
	GetIdentifier() ModuleIdentifier
	OnRegister(bus *Bus)
	OnUnregister()
	OnMessage(message Message)
}
