// Package errors provides structured, coded errors for Junction.
//
// Every failure a caller can act on has a code (e.g., "J001") that maps
// to a short message, a longer explanation and a hint:
//
//	err := errors.New("J001").
//	    WithDetail(`key "theme" was promoted without a signal factory`).
//	    WithSuggestion("Pass junction.WithSignalFactory(junction.ReactiveSignals())")
//
//	fmt.Print(err.Format())
//	// ERROR J001: Signal implementation required
//	//
//	//   key "theme" was promoted without a signal factory
//	//
//	//   Hint: Pass junction.WithSignalFactory(junction.ReactiveSignals())
//
// # Error Categories
//
//   - config: missing collaborators or invalid configuration
//   - state: operations on a store in the wrong lifecycle state
//   - plugin: invalid plugin registrations
//   - cli: command line input errors
//
// Errors created from the same code match each other under errors.Is,
// so packages can export a template value as a sentinel.
package errors
