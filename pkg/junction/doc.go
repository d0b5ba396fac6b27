// Package junction provides Store, a small key/value container that unifies
// plain stored values and observable signals behind one get/set interface.
//
// A key starts out as a plain value. Calling Provide promotes it to a
// signal-backed key: the store creates a Signal through its configured
// factory, seeds it with the current value and keeps the plain mapping in
// sync through a change listener. Promotion is one-way.
//
//	store := junction.New(junction.WithSignalFactory(junction.ReactiveSignals()))
//	_ = store.Set("theme", "light")
//
//	theme, _ := store.Provide("theme")
//	theme.Write("dark")
//	store.Get("theme") // "dark"
//
//	_ = store.Set("theme", "auto")
//	theme.Read() // "auto"
//
//	store.Dispose() // disposes every signal the store created
//
// # Value Transforms
//
// Every write is normalized by the store's ValueTransform, including writes
// made directly on a provided signal. Transforms are configured per store
// with WithTransform or decorated with WrapTransform.
//
// # Plugins
//
// A Kind is the composition root for stores sharing the same behavior.
// Plugins registered with Kind.Use are applied once per Kind and contribute
// options to every store the Kind creates:
//
//	kind := junction.NewKind().
//	    Use(junction.Reactive, nil).
//	    Use(junction.TrimStrings, nil)
//	store := kind.New()
//
// Kinds are meant to be configured during startup, before stores are created.
//
// # Concurrency
//
// Store is not safe for concurrent use. Every operation is synchronous and
// completes before returning; callers sharing a store across goroutines
// must serialize access themselves. Custom signals must notify their
// subscribers synchronously, before Write returns.
package junction
