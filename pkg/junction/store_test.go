package junction

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newReactiveStore(opts ...Option) *Store {
	return New(append([]Option{WithSignalFactory(ReactiveSignals())}, opts...)...)
}

func TestEmptyStore(t *testing.T) {
	s := New()

	if diff := cmp.Diff(map[string]any{}, s.Snapshot()); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
	if got := s.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}
	if _, ok := s.Lookup("missing"); ok {
		t.Error("Lookup(missing) reported present")
	}
	if s.Disposed() {
		t.Error("new store reports disposed")
	}
	if s.Len() != 0 || s.SignalCount() != 0 {
		t.Errorf("Len=%d SignalCount=%d, want 0", s.Len(), s.SignalCount())
	}
}

func TestSetGet(t *testing.T) {
	s := New()

	if err := s.Set("a", 1); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if got := s.Get("a"); got != 1 {
		t.Errorf("Get(a) = %v, want 1", got)
	}

	// nil is a present value, distinct from an unset key.
	_ = s.Set("b", nil)
	if !s.Has("b") {
		t.Error("Has(b) = false after Set(b, nil)")
	}
}

func TestSetManyCopiesInput(t *testing.T) {
	s := New()
	src := map[string]any{"a": 1, "b": 2}

	if err := s.SetMany(src); err != nil {
		t.Fatalf("SetMany error: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a": 1, "b": 2}, s.Snapshot()); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}

	src["a"] = 10
	src["c"] = 3
	if s.Get("a") != 1 || s.Has("c") {
		t.Errorf("store aliases the caller's map: %v", s.Snapshot())
	}

	_ = s.SetMany(src)
	if diff := cmp.Diff(map[string]any{"a": 10, "b": 2, "c": 3}, s.Snapshot()); diff != "" {
		t.Errorf("Snapshot() after re-set mismatch (-want +got):\n%s", diff)
	}

	snap := s.Snapshot()
	snap["a"] = "mutated"
	if s.Get("a") != 10 {
		t.Error("Snapshot aliases internal state")
	}
}

func TestKeysOrder(t *testing.T) {
	s := New()
	_ = s.SetEntries(Entry{"z", 1}, Entry{"a", 2}, Entry{"m", 3})
	_ = s.Set("a", 4)
	_ = s.Remove("z")
	_ = s.Set("z", 5)

	if diff := cmp.Diff([]string{"a", "m", "z"}, s.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestSetManySortedOrder(t *testing.T) {
	s := New()
	_ = s.SetMany(map[string]any{"c": 1, "a": 2, "b": 3})

	if diff := cmp.Diff([]string{"a", "b", "c"}, s.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestProvideWithoutFactory(t *testing.T) {
	s := New()
	_ = s.Set("a", 1)

	sig, err := s.Provide("a")
	if sig != nil {
		t.Error("expected nil signal")
	}
	if !errors.Is(err, ErrSignalUnavailable) {
		t.Fatalf("err = %v, want ErrSignalUnavailable", err)
	}
	if !strings.Contains(err.Error(), "Signal implementation required") {
		t.Errorf("error message %q does not mention the missing Signal implementation", err)
	}
	if s.HasSignal("a") || s.Get("a") != 1 {
		t.Error("failed Provide changed the store")
	}
}

func TestProvideNilFromFactory(t *testing.T) {
	s := New(WithSignalFactory(func() Signal { return nil }))
	if _, err := s.Provide("a"); !errors.Is(err, ErrSignalUnavailable) {
		t.Errorf("err = %v, want ErrSignalUnavailable", err)
	}
}

func TestProvideMemoized(t *testing.T) {
	s := newReactiveStore()

	first, err := s.Provide("a")
	if err != nil {
		t.Fatalf("Provide error: %v", err)
	}
	second, _ := s.Signal("a")
	if first != second {
		t.Error("Provide returned a different signal for the same key")
	}
	if s.SignalCount() != 1 {
		t.Errorf("SignalCount() = %d, want 1", s.SignalCount())
	}
}

func TestProvideSeedsCurrentValue(t *testing.T) {
	s := newReactiveStore()
	_ = s.Set("a", "v")

	sig, _ := s.Provide("a")
	if got := sig.Read(); got != "v" {
		t.Errorf("sig.Read() = %v, want v", got)
	}
}

func TestProvideUnsetKey(t *testing.T) {
	s := newReactiveStore()

	sig, err := s.Provide("a")
	if err != nil {
		t.Fatalf("Provide error: %v", err)
	}
	if sig.Read() != nil {
		t.Errorf("sig.Read() = %v, want nil", sig.Read())
	}
	if s.Has("a") {
		t.Error("Provide on an unset key made it present")
	}

	sig.Write(3)
	if s.Get("a") != 3 {
		t.Errorf("Get(a) = %v, want 3", s.Get("a"))
	}
}

func TestProvideSeedIsNotEchoed(t *testing.T) {
	calls := 0
	s := newReactiveStore(WithTransform(func(_ string, v any) any {
		calls++
		return v
	}))
	_ = s.Set("a", 1)
	calls = 0

	_, _ = s.Provide("a")
	if calls != 0 {
		t.Errorf("seeding ran the transform %d times", calls)
	}
}

func TestSignalWriteUpdatesStore(t *testing.T) {
	s := newReactiveStore()
	_ = s.Set("a", 1)
	sig, _ := s.Provide("a")

	sig.Write(2)
	if got := s.Get("a"); got != 2 {
		t.Errorf("Get(a) = %v, want 2", got)
	}
}

func TestSetUpdatesSignal(t *testing.T) {
	s := newReactiveStore()
	_ = s.Set("a", 1)
	sig, _ := s.Provide("a")

	_ = s.Set("a", 3)
	if got := sig.Read(); got != 3 {
		t.Errorf("sig.Read() = %v, want 3", got)
	}
	if got := s.Get("a"); got != 3 {
		t.Errorf("Get(a) = %v, want 3", got)
	}
}

func TestSetRoutesThroughSignal(t *testing.T) {
	f := &fakeFactory{}
	s := New(WithSignalFactory(f.New))
	_, _ = s.Provide("a")

	_ = s.Set("a", "x")
	sig := f.created[0]
	if sig.writes != 2 { // seed + set
		t.Errorf("signal writes = %d, want 2", sig.writes)
	}
	if sig.Read() != "x" {
		t.Errorf("signal value = %v, want x", sig.Read())
	}
}

func TestTransform(t *testing.T) {
	upper := func(_ string, v any) any {
		if s, ok := v.(string); ok {
			return strings.ToUpper(s)
		}
		return v
	}
	s := newReactiveStore(WithTransform(upper))

	_ = s.Set("a", "x")
	if s.Get("a") != "X" {
		t.Errorf("Get(a) = %v, want X", s.Get("a"))
	}
	if s.Setter("k", "y") != "Y" {
		t.Error("Setter does not apply the configured transform")
	}

	sig, _ := s.Provide("a")
	_ = s.Set("a", "y")
	if sig.Read() != "Y" {
		t.Errorf("sig.Read() = %v, want Y", sig.Read())
	}

	// External writes pass through the transform on their way into the store.
	sig.Write("z")
	if s.Get("a") != "Z" {
		t.Errorf("Get(a) = %v, want Z", s.Get("a"))
	}
}

func TestTransformAppliedOncePerWrite(t *testing.T) {
	calls := 0
	s := newReactiveStore(WithTransform(func(_ string, v any) any {
		calls++
		return v
	}))
	_, _ = s.Provide("n")

	_ = s.Set("n", 1)
	if calls != 1 {
		t.Errorf("transform calls for Set = %d, want 1", calls)
	}

	calls = 0
	sig, _ := s.Provide("n")
	sig.Write(2)
	if calls != 1 {
		t.Errorf("transform calls for signal write = %d, want 1", calls)
	}
}

func TestWrapTransform(t *testing.T) {
	double := func(next ValueTransform) ValueTransform {
		return func(k string, v any) any {
			if n, ok := v.(int); ok {
				v = n * 2
			}
			return next(k, v)
		}
	}
	addOne := func(next ValueTransform) ValueTransform {
		return func(k string, v any) any {
			if n, ok := v.(int); ok {
				v = n + 1
			}
			return next(k, v)
		}
	}

	s := New(WrapTransform(double), WrapTransform(addOne))
	_ = s.Set("n", 3)
	// Later wrappers run first: (3+1)*2.
	if got := s.Get("n"); got != 8 {
		t.Errorf("Get(n) = %v, want 8", got)
	}
}

func TestSetUnchangedValueOnSignalKey(t *testing.T) {
	s := newReactiveStore()
	sig, _ := s.Provide("a")
	_ = s.Remove("a")

	// The reactive signal already holds nil and swallows the write;
	// the store must still record the key as present.
	if err := s.Set("a", nil); err != nil {
		t.Fatal(err)
	}
	if !s.Has("a") {
		t.Error("Has(a) = false after Set(a, nil) on a signal-backed key")
	}
	if sig.Read() != nil {
		t.Errorf("sig.Read() = %v, want nil", sig.Read())
	}
}

func TestSignalKeyStaysInSync(t *testing.T) {
	s := newReactiveStore(WithTransform(func(_ string, v any) any {
		if n, ok := v.(int); ok {
			return n + 1
		}
		return v
	}))
	sig, _ := s.Provide("n")

	_ = s.Set("n", 1)
	if s.Get("n") != 2 || sig.Read() != 2 {
		t.Errorf("after Set: store = %v, signal = %v, want 2 and 2", s.Get("n"), sig.Read())
	}

	sig.Write(5)
	if s.Get("n") != 6 {
		t.Errorf("after signal write: store = %v, want 6", s.Get("n"))
	}

	_ = s.Reset()
	if s.Has("n") || s.Len() != 0 {
		t.Errorf("after Reset: Has(n) = %v, Len() = %d", s.Has("n"), s.Len())
	}
	if sig.Read() != nil {
		t.Errorf("after Reset: signal = %v, want nil", sig.Read())
	}
}

func TestSetNilKeepsKeyPresent(t *testing.T) {
	s := newReactiveStore()
	_ = s.Set("plain", 1)
	_ = s.Set("plain", nil)

	_ = s.Set("sig", 1)
	sig, _ := s.Provide("sig")
	sig.Write(nil)

	for _, k := range []string{"plain", "sig"} {
		v, ok := s.Lookup(k)
		if !ok || v != nil {
			t.Errorf("Lookup(%s) = %v, %v; want nil, true", k, v, ok)
		}
	}
	if diff := cmp.Diff([]string{"plain", "sig"}, s.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestRemove(t *testing.T) {
	s := newReactiveStore()
	_ = s.SetMany(map[string]any{"plain": 1, "sig": 2})
	sig, _ := s.Provide("sig")

	if err := s.Remove("plain"); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("sig"); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("unknown"); err != nil {
		t.Errorf("Remove(unknown) error: %v", err)
	}

	if s.Get("plain") != nil || s.Get("sig") != nil {
		t.Errorf("values not cleared: %v", s.Snapshot())
	}
	if sig.Read() != nil {
		t.Errorf("sig.Read() = %v, want nil", sig.Read())
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if !s.HasSignal("sig") {
		t.Error("removed key is no longer signal-backed")
	}

	// Still signal-backed: a later Set drives the same signal.
	_ = s.Set("sig", 9)
	if sig.Read() != 9 {
		t.Errorf("sig.Read() = %v, want 9", sig.Read())
	}
}

func TestRemovePushesNilThroughSignal(t *testing.T) {
	f := &fakeFactory{}
	s := New(WithSignalFactory(f.New))
	_ = s.Set("a", 1)
	_, _ = s.Provide("a")

	var seen []any
	f.created[0].Subscribe(func(v any) { seen = append(seen, v) })
	_ = s.Remove("a")

	if diff := cmp.Diff([]any{nil}, seen); diff != "" {
		t.Errorf("observed writes mismatch (-want +got):\n%s", diff)
	}
	if s.Has("a") {
		t.Error("Has(a) after Remove")
	}
}

func TestReset(t *testing.T) {
	s := newReactiveStore()
	_ = s.SetMany(map[string]any{"a": 1, "b": 2, "c": 3})
	sigB, _ := s.Provide("b")
	sigD, _ := s.Provide("d")
	sigD.Write("d")

	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(map[string]any{}, s.Snapshot()); diff != "" {
		t.Errorf("Snapshot() after Reset mismatch (-want +got):\n%s", diff)
	}
	if sigB.Read() != nil || sigD.Read() != nil {
		t.Errorf("signals not cleared: b=%v d=%v", sigB.Read(), sigD.Read())
	}
	if s.SignalCount() != 2 {
		t.Errorf("SignalCount() = %d, want 2", s.SignalCount())
	}

	_ = s.Set("b", "again")
	if sigB.Read() != "again" {
		t.Errorf("sigB.Read() = %v after Reset+Set", sigB.Read())
	}
}

func TestDispose(t *testing.T) {
	f := &fakeFactory{}
	s := New(WithSignalFactory(f.New))
	_, _ = s.Provide("a")
	_, _ = s.Provide("b")
	_, _ = s.Provide("a")

	s.Dispose()
	s.Dispose()

	if !s.Disposed() {
		t.Fatal("Disposed() = false")
	}
	if len(f.created) != 2 {
		t.Fatalf("created %d signals, want 2", len(f.created))
	}
	for i, sig := range f.created {
		if sig.disposals != 1 {
			t.Errorf("signal %d disposed %d times, want 1", i, sig.disposals)
		}
	}
}

func TestDisposeWithoutSignals(t *testing.T) {
	s := New()
	_ = s.Set("a", 1)
	s.Dispose()

	if !s.Disposed() {
		t.Error("Disposed() = false")
	}
}

func TestOperationsAfterDispose(t *testing.T) {
	s := newReactiveStore()
	_ = s.Set("a", 1)
	sig, _ := s.Provide("a")
	s.Dispose()

	checks := map[string]error{
		"Set":              s.Set("a", 2),
		"SetMany":          s.SetMany(map[string]any{"b": 1}),
		"SetMany empty":    s.SetMany(nil),
		"Remove":           s.Remove("a"),
		"Reset":            s.Reset(),
		"Provide":          func() error { _, err := s.Provide("a"); return err }(),
		"Signal":           func() error { _, err := s.Signal("x"); return err }(),
		"SetEntries":       s.SetEntries(Entry{"c", 1}),
		"SetEntries empty": s.SetEntries(),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrDisposed) {
			t.Errorf("%s after Dispose: err = %v, want ErrDisposed", name, err)
		}
	}

	if s.Get("a") != nil || s.Len() != 0 || len(s.Keys()) != 0 {
		t.Error("reads after Dispose should report an empty store")
	}
	if diff := cmp.Diff(map[string]any{}, s.Snapshot()); diff != "" {
		t.Errorf("Snapshot() after Dispose mismatch (-want +got):\n%s", diff)
	}

	// The disposed signal ignores writes and no longer reaches the store.
	sig.Write(5)
	if sig.Read() != 1 {
		t.Errorf("disposed signal accepted a write: %v", sig.Read())
	}
}

func TestInitHooks(t *testing.T) {
	var order []string
	s := New(
		OnInit(func(s *Store) {
			order = append(order, "first")
			_ = s.Set("ready", true)
		}),
		OnInit(func(*Store) { order = append(order, "second") }),
		OnInit(nil),
	)

	if diff := cmp.Diff([]string{"first", "second"}, order); diff != "" {
		t.Errorf("hook order mismatch (-want +got):\n%s", diff)
	}
	if s.Get("ready") != true {
		t.Error("init hook ran before base initialization")
	}
}

func TestWithConfig(t *testing.T) {
	f := &fakeFactory{}
	hookRan := false
	cfg := Config{
		SignalFactory: f.New,
		InitHooks:     []func(*Store){func(*Store) { hookRan = true }},
	}

	s := New(WithTransform(func(string, any) any { return "ignored" }), WithConfig(cfg))
	_ = s.Set("a", 1)
	if s.Get("a") != 1 {
		t.Error("WithConfig did not replace the transform")
	}
	if _, err := s.Provide("a"); err != nil {
		t.Errorf("Provide error: %v", err)
	}
	if !hookRan {
		t.Error("init hook from Config did not run")
	}
}

func TestObserver(t *testing.T) {
	var events []Event
	rec := ObserverFunc(func(e Event) {
		e.Err = nil
		events = append(events, e)
	})
	var second int
	s := newReactiveStore(WithObserver(rec), WithObserver(ObserverFunc(func(Event) { second++ })))

	_ = s.Set("a", 1)
	sig, _ := s.Provide("a")
	sig.Write(2)
	_ = s.Remove("a")
	_ = s.Reset()
	s.Dispose()
	_ = s.Set("a", 3)

	want := []Event{
		{Op: OpSet, Key: "a"},
		{Op: OpProvide, Key: "a"},
		{Op: OpSignalWrite, Key: "a"},
		{Op: OpRemove, Key: "a"},
		{Op: OpReset, Count: 1},
		{Op: OpDispose, Count: 1},
		{Op: OpSet, Key: "a"},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if second != len(want) {
		t.Errorf("second observer saw %d events, want %d", second, len(want))
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := newReactiveStore(WithLogger(logger))

	_, _ = s.Provide("theme")
	s.Dispose()
	_ = s.Set("theme", "dark")

	out := buf.String()
	for _, want := range []string{
		"signal created",
		"key=theme",
		"component=junction",
		"store disposed",
		"operation on disposed store",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
