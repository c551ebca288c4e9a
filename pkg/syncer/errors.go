package syncer

import "errors"

// Error kinds from §7. AdapterStartFailed is deliberately not one of
// these: it is encoded as a plain `false` return from Start, never an error
// (§7's "not an exception").
var (
	// ErrInvalidArgument is returned by constructors when a per-stream
	// capacity is < 1 or an Options document fails schema validation.
	ErrInvalidArgument = errors.New("syncer: invalid argument")
	// ErrInvalidState is returned by Start when the syncer is already
	// running.
	ErrInvalidState = errors.New("syncer: invalid state")
)
