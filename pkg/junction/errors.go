package junction

import "github.com/vango-dev/junction/internal/errors"

// Sentinel errors. Errors returned by a Store match these under errors.Is.
var (
	// ErrSignalUnavailable is returned by Provide when no SignalFactory
	// has been configured.
	ErrSignalUnavailable error = errors.New("J001")

	// ErrDisposed is returned by mutating operations on a disposed Store.
	ErrDisposed error = errors.New("J002")
)
