// Package reactive provides the observable cell Junction uses as its default
// Signal implementation.
//
// Signal[T] is a reactive value container with explicit subscriptions:
//
//	count := reactive.NewSignal(0)
//	sub := count.Subscribe(func(n int) { fmt.Println("count:", n) })
//	count.Set(5)      // prints "count: 5"
//	count.Update(func(n int) int { return n + 1 })
//	sub.Unsubscribe()
//	count.Dispose()   // drops all subscribers; later writes are ignored
//
// # Notification
//
// Notifications are synchronous: every subscriber has seen a change by the
// time Set or Update returns. Listeners run on the writing goroutine, in
// subscription order, with the value current at delivery.
//
// # Thread Safety
//
// Signals are safe for concurrent use. Listeners are called without any of
// the signal's locks held.
package reactive
