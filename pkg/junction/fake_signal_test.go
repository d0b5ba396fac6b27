package junction

// fakeSignal is a minimal Signal that counts lifecycle calls.
type fakeSignal struct {
	value     any
	listeners map[int]func(any)
	nextID    int
	writes    int
	disposals int
}

func newFakeSignal() *fakeSignal {
	return &fakeSignal{listeners: make(map[int]func(any))}
}

func (f *fakeSignal) Read() any { return f.value }

// Write always notifies, even for unchanged values.
func (f *fakeSignal) Write(v any) {
	f.writes++
	f.value = v
	for i := 0; i < f.nextID; i++ {
		if l, ok := f.listeners[i]; ok {
			l(v)
		}
	}
}

func (f *fakeSignal) Subscribe(l func(any)) Subscription {
	id := f.nextID
	f.nextID++
	f.listeners[id] = l
	return fakeSubscription(func() { delete(f.listeners, id) })
}

func (f *fakeSignal) Dispose() {
	f.disposals++
	f.listeners = map[int]func(any){}
}

type fakeSubscription func()

func (f fakeSubscription) Unsubscribe() { f() }

// fakeFactory records every signal it creates.
type fakeFactory struct {
	created []*fakeSignal
}

func (f *fakeFactory) New() Signal {
	s := newFakeSignal()
	f.created = append(f.created, s)
	return s
}
