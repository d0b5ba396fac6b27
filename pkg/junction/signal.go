package junction

import "github.com/vango-dev/junction/pkg/reactive"

// Signal is the observable cell a Store uses for signal-backed keys.
type Signal interface {
	// Read returns the current value.
	Read() any

	// Write sets the value and synchronously notifies subscribers
	// when the value changes.
	Write(value any)

	// Subscribe registers a change listener invoked with every new value.
	Subscribe(listener func(any)) Subscription

	// Dispose releases the signal's subscriptions. A Store calls it exactly
	// once for every signal it created.
	Dispose()
}

// Subscription is the handle returned by Signal.Subscribe.
type Subscription interface {
	Unsubscribe()
}

// SignalFactory produces new, empty signals.
type SignalFactory func() Signal

// ReactiveSignals returns a factory backed by reactive.Signal.
func ReactiveSignals() SignalFactory {
	return func() Signal {
		return NewReactiveSignal(nil)
	}
}

// NewReactiveSignal wraps a new reactive.Signal holding initial.
func NewReactiveSignal(initial any) Signal {
	return &reactiveSignal{cell: reactive.NewSignal[any](initial)}
}

// reactiveSignal adapts reactive.Signal[any] to the Signal interface.
type reactiveSignal struct {
	cell *reactive.Signal[any]
}

func (r *reactiveSignal) Read() any {
	return r.cell.Get()
}

func (r *reactiveSignal) Write(value any) {
	r.cell.Set(value)
}

func (r *reactiveSignal) Subscribe(listener func(any)) Subscription {
	return r.cell.Subscribe(listener)
}

func (r *reactiveSignal) Dispose() {
	r.cell.Dispose()
}
