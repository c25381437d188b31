package topology

import "errors"

var (
	// ErrNoContexts is returned when LLC/core enumeration produced zero
	// hardware contexts to schedule workers onto.
	ErrNoContexts = errors.New("topology: no hardware contexts discovered")

	// ErrTooFewContexts is returned when the caller asks for more worker
	// threads than there are usable hardware contexts.
	ErrTooFewContexts = errors.New("topology: fewer hardware contexts than requested threads")
)
