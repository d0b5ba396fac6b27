package junction

// Op identifies a store operation reported to an Observer.
type Op string

const (
	OpSet         Op = "set"
	OpSignalWrite Op = "signal_write"
	OpProvide     Op = "provide"
	OpRemove      Op = "remove"
	OpReset       Op = "reset"
	OpDispose     Op = "dispose"
)

// Event describes a completed store operation.
type Event struct {
	Op Op

	// Key is the affected key. Empty for reset and dispose.
	Key string

	// Count is the number of keys reset or signals disposed.
	Count int

	// Err is set when the operation was rejected.
	Err error
}

// Observer receives an Event after every store operation.
// Observers run synchronously on the caller's goroutine and must not
// call back into the store that reported the event.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) {
	f(e)
}

// multiObserver fans an event out to several observers in order.
type multiObserver []Observer

func (m multiObserver) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

// combineObservers flattens observers into one, dropping nils.
func combineObservers(a, b Observer) Observer {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	var out multiObserver
	for _, o := range []Observer{a, b} {
		if m, ok := o.(multiObserver); ok {
			out = append(out, m...)
		} else {
			out = append(out, o)
		}
	}
	return out
}
