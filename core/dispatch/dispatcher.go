package dispatch

// Dispatcher is the pure functionality -> handler lookup table, plus the
// three fan-out operations every phase of the round executor
// drives through it. Handlers are registered once at startup via NewDispatcher;
// there is no runtime registration API.
type Dispatcher struct {
	handlers map[Functionality]Handler
}

// NewDispatcher returns a Dispatcher fixed to the given handler table.
func NewDispatcher(handlers map[Functionality]Handler) *Dispatcher {
	table := make(map[Functionality]Handler, len(handlers))
	for k, v := range handlers {
		table[k] = v
	}
	return &Dispatcher{handlers: table}
}

func (d *Dispatcher) lookup(f Functionality) (Handler, error) {
	h, ok := d.handlers[f]
	if !ok {
		return nil, UnknownFunctionalityError(string(f))
	}
	return h, nil
}

// DispatchPureChecks runs pure-checks for the handler registered to
// functionality. Unknown functionality is a hard error.
func (d *Dispatcher) DispatchPureChecks(functionality Functionality, body []byte) error {
	h, err := d.lookup(functionality)
	if err != nil {
		return err
	}
	return h.PureChecks(body)
}

// DispatchPreHandle runs pre-handle for the handler registered to
// functionality.
func (d *Dispatcher) DispatchPreHandle(functionality Functionality, ctx *HandleContext) error {
	h, err := d.lookup(functionality)
	if err != nil {
		return err
	}
	return h.PreHandle(ctx)
}

// DispatchHandle runs handle for the handler registered to functionality,
// then its Finalizer if it implements one.
func (d *Dispatcher) DispatchHandle(functionality Functionality, ctx *HandleContext) error {
	h, err := d.lookup(functionality)
	if err != nil {
		return err
	}
	if err := h.Handle(ctx); err != nil {
		return err
	}
	if f, ok := h.(Finalizer); ok {
		return f.Finalize(ctx)
	}
	return nil
}
