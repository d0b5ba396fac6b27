package reactive

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// subscriber is a single registered change listener.
type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Signal is a reactive value container.
// Every change made through Set or Update is delivered synchronously to the
// subscribed listeners before the write returns.
type Signal[T any] struct {
	id uint64

	// value is the current signal value.
	value T

	// mu protects value.
	mu sync.RWMutex

	// equal decides whether a write changes the value.
	// If nil, defaultEquals is used.
	equal func(T, T) bool

	// subs are the listeners subscribed to this signal.
	subs  []subscriber[T]
	subMu sync.Mutex

	disposed atomic.Bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		id:    nextID(),
		value: initial,
	}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Peek returns the current value. It is identical to Get and kept for
// callers that want to make a non-subscribing read explicit.
func (s *Signal[T]) Peek() T {
	return s.Get()
}

// Set updates the signal's value and notifies subscribers if the value changed.
// Writes to a disposed signal are ignored.
func (s *Signal[T]) Set(value T) {
	if s.disposed.Load() {
		return
	}

	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.notifySubscribers()
	}
}

// Update atomically reads and updates the signal's value.
// The function receives the current value and returns the new value.
func (s *Signal[T]) Update(fn func(T) T) {
	if s.disposed.Load() {
		return
	}

	s.mu.Lock()
	oldValue := s.value
	newValue := fn(oldValue)
	changed := !s.equals(oldValue, newValue)
	if changed {
		s.value = newValue
	}
	s.mu.Unlock()

	if changed {
		s.notifySubscribers()
	}
}

// WithEquals returns the signal configured with a custom equality function.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// Subscribe registers fn to be called with the new value after every change.
// Subscribing to a disposed signal returns an inert subscription.
func (s *Signal[T]) Subscribe(fn func(T)) *Subscription {
	if fn == nil || s.disposed.Load() {
		return &Subscription{}
	}

	id := nextID()
	s.subMu.Lock()
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})
	s.subMu.Unlock()

	return &Subscription{cancel: func() { s.unsubscribe(id) }}
}

// Dispose drops every subscriber. After Dispose the signal keeps its last
// value for reads but ignores writes and new subscriptions.
// Dispose is safe to call more than once.
func (s *Signal[T]) Dispose() {
	if !s.disposed.CompareAndSwap(false, true) {
		return
	}
	s.subMu.Lock()
	s.subs = nil
	s.subMu.Unlock()
}

// Disposed reports whether Dispose has been called.
func (s *Signal[T]) Disposed() bool {
	return s.disposed.Load()
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

// SubscriberCount returns the number of live subscriptions.
func (s *Signal[T]) SubscriberCount() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

func (s *Signal[T]) unsubscribe(id uint64) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for i, existing := range s.subs {
		if existing.id == id {
			// Keep registration order; listeners fire in the order they subscribed.
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// notifySubscribers delivers the current value to every subscriber.
// Subscribers are copied before delivery so listeners may subscribe,
// unsubscribe or write other signals without deadlocking.
func (s *Signal[T]) notifySubscribers() {
	s.subMu.Lock()
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	value := s.Get()
	for _, sub := range subs {
		sub.fn(value)
	}
}

// equals checks if two values are equal using the configured equality function.
func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for basic comparable types and reflect.DeepEqual
// for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case uint64:
		bv, ok := any(b).(uint64)
		return ok && av == bv
	case float64:
		bv, ok := any(b).(float64)
		return ok && av == bv
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe stops delivery to the listener. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.once.Do(s.cancel)
}
