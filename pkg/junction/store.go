package junction

import (
	"log/slog"
	"slices"
	"sort"

	"github.com/vango-dev/junction/internal/errors"
)

// Store is a key/value container whose keys are either plain values or
// backed by a Signal. The zero value is not usable; create stores with New
// or Kind.New.
type Store struct {
	// values holds the current value of every present key.
	values map[string]any

	// keys records the insertion order of values.
	keys []string

	// signals holds the signal of every signal-backed key.
	signals map[string]Signal
	subs    map[string]Subscription

	// signalKeys records the order in which signals were created.
	signalKeys []string

	// inflight tracks writes the store itself is pushing through a signal,
	// so the change listener can tell them apart from external writes.
	inflight map[string]*signalWrite

	cfg      Config
	logger   *slog.Logger
	disposed bool
}

// signalWrite is a store-initiated write in progress on one signal.
type signalWrite struct {
	remove bool
	fired  bool
}

// Entry is a key/value pair for SetEntries.
type Entry struct {
	Key   string
	Value any
}

// New creates an empty store.
func New(opts ...Option) *Store {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		values:   make(map[string]any),
		signals:  make(map[string]Signal),
		subs:     make(map[string]Subscription),
		inflight: make(map[string]*signalWrite),
		cfg:      cfg,
		logger:   logger.With("component", "junction"),
	}

	for _, hook := range cfg.InitHooks {
		hook(s)
	}

	return s
}

// Setter applies the store's value transform to value.
func (s *Store) Setter(key string, value any) any {
	if s.cfg.Transform == nil {
		return value
	}
	return s.cfg.Transform(key, value)
}

// Set stores value under key after passing it through the value transform.
// If key is signal-backed, the value is written through its signal.
func (s *Store) Set(key string, value any) error {
	if s.disposed {
		return s.reject(OpSet, key)
	}

	value = s.Setter(key, value)
	if sig, ok := s.signals[key]; ok {
		s.writeSignal(key, sig, value, false)
	} else {
		s.storeValue(key, value)
	}

	s.observe(Event{Op: OpSet, Key: key})
	return nil
}

// SetMany stores every entry of values. Keys are applied in sorted order.
// The map is read, never retained.
func (s *Store) SetMany(values map[string]any) error {
	if s.disposed {
		return s.reject(OpSet, "")
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := s.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// SetEntries stores entries in the given order.
func (s *Store) SetEntries(entries ...Entry) error {
	if s.disposed {
		return s.reject(OpSet, "")
	}

	for _, e := range entries {
		if err := s.Set(e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value of key, or nil if key is absent.
func (s *Store) Get(key string) any {
	return s.values[key]
}

// Lookup returns the value of key and whether it is present.
func (s *Store) Lookup(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns the present keys in insertion order.
func (s *Store) Keys() []string {
	return slices.Clone(s.keys)
}

// Len returns the number of present keys.
func (s *Store) Len() int {
	return len(s.values)
}

// Snapshot returns a copy of every present key and its value.
func (s *Store) Snapshot() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// HasSignal reports whether key is signal-backed.
func (s *Store) HasSignal(key string) bool {
	_, ok := s.signals[key]
	return ok
}

// SignalCount returns the number of signals the store owns.
func (s *Store) SignalCount() int {
	return len(s.signals)
}

// Provide returns the signal for key, creating it on first use.
// A new signal is seeded with the key's current value (nil if absent)
// before the store subscribes to it. Repeated calls return the same signal.
func (s *Store) Provide(key string) (Signal, error) {
	if s.disposed {
		return nil, s.reject(OpProvide, key)
	}
	if sig, ok := s.signals[key]; ok {
		return sig, nil
	}

	if s.cfg.SignalFactory == nil {
		err := errors.New("J001").WithDetailf("cannot provide %q: no signal factory configured", key)
		s.observe(Event{Op: OpProvide, Key: key, Err: err})
		return nil, err
	}
	sig := s.cfg.SignalFactory()
	if sig == nil {
		err := errors.New("J001").WithDetailf("cannot provide %q: signal factory returned nil", key)
		s.observe(Event{Op: OpProvide, Key: key, Err: err})
		return nil, err
	}

	// Seed before subscribing so the seed is not echoed back into the store.
	sig.Write(s.values[key])

	s.signals[key] = sig
	s.signalKeys = append(s.signalKeys, key)
	s.subs[key] = sig.Subscribe(func(v any) { s.onSignalChange(key, v) })

	s.logger.Debug("signal created", "key", key)
	s.observe(Event{Op: OpProvide, Key: key})
	return sig, nil
}

// Signal is an alias for Provide.
func (s *Store) Signal(key string) (Signal, error) {
	return s.Provide(key)
}

// Remove deletes key. If key is signal-backed, nil is written through its
// signal; the key stays signal-backed. Removing an unknown key is a no-op.
//
// Remove is the only way to make a key absent. Set(key, nil), or a nil
// written directly to the key's signal, leaves the key present with a nil
// value: Get returns nil for both, but Has, Lookup, Keys and Snapshot
// still report the key.
func (s *Store) Remove(key string) error {
	if s.disposed {
		return s.reject(OpRemove, key)
	}

	s.remove(key)
	s.observe(Event{Op: OpRemove, Key: key})
	return nil
}

// Reset removes every present key and writes nil through every signal.
func (s *Store) Reset() error {
	if s.disposed {
		return s.reject(OpReset, "")
	}

	keys := slices.Clone(s.keys)
	for _, k := range s.signalKeys {
		if !s.Has(k) {
			keys = append(keys, k)
		}
	}
	for _, k := range keys {
		s.remove(k)
	}

	s.logger.Debug("store reset", "keys", len(keys))
	s.observe(Event{Op: OpReset, Count: len(keys)})
	return nil
}

// Dispose disposes every signal the store created, in creation order, and
// discards the store's state. Later mutations fail with ErrDisposed and
// reads report every key as absent. Calling Dispose again is a no-op.
func (s *Store) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	for _, k := range s.signalKeys {
		if sub := s.subs[k]; sub != nil {
			sub.Unsubscribe()
		}
		s.signals[k].Dispose()
	}
	n := len(s.signalKeys)

	s.values = nil
	s.keys = nil
	s.signals = nil
	s.subs = nil
	s.signalKeys = nil
	s.inflight = nil

	s.logger.Debug("store disposed", "signals", n)
	s.observe(Event{Op: OpDispose, Count: n})
}

// Disposed reports whether Dispose has been called.
func (s *Store) Disposed() bool {
	return s.disposed
}

func (s *Store) remove(key string) {
	if sig, ok := s.signals[key]; ok {
		s.writeSignal(key, sig, nil, true)
		return
	}
	s.deleteValue(key)
}

// writeSignal pushes a store-initiated value through sig. The listener
// applies it without running the transform again. If the signal swallows
// the write (unchanged value), the plain mapping is re-synced here.
func (s *Store) writeSignal(key string, sig Signal, value any, remove bool) {
	w := &signalWrite{remove: remove}
	s.inflight[key] = w
	sig.Write(value)
	delete(s.inflight, key)

	if w.fired {
		return
	}
	if remove {
		s.deleteValue(key)
	} else {
		s.storeValue(key, sig.Read())
	}
}

// onSignalChange keeps the plain mapping in sync with a signal.
// It never creates signals.
func (s *Store) onSignalChange(key string, value any) {
	if s.disposed {
		return
	}

	if w, ok := s.inflight[key]; ok {
		w.fired = true
		if w.remove {
			s.deleteValue(key)
		} else {
			s.storeValue(key, value)
		}
		return
	}

	s.storeValue(key, s.Setter(key, value))
	s.observe(Event{Op: OpSignalWrite, Key: key})
}

func (s *Store) storeValue(key string, value any) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

func (s *Store) deleteValue(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	if i := slices.Index(s.keys, key); i >= 0 {
		s.keys = slices.Delete(s.keys, i, i+1)
	}
}

func (s *Store) reject(op Op, key string) error {
	err := errors.New("J002").WithDetailf("%s %q after dispose", op, key)
	s.logger.Warn("operation on disposed store", "op", string(op), "key", key)
	s.observe(Event{Op: op, Key: key, Err: err})
	return err
}

func (s *Store) observe(e Event) {
	if s.cfg.Observer != nil {
		s.cfg.Observer.Observe(e)
	}
}
