package workstate

import "errors"

// Error kinds surfaced by this package. Callers inspect them with errors.Is;
// the original cause is always preserved in the wrap chain.
var (
	// ErrInvalidURL marks a malformed store URL or an unrecognized scheme.
	// Caller bug; not retryable.
	ErrInvalidURL = errors.New("workstate: invalid store url")

	// ErrStoreConnection marks a failure to obtain a usable store handle
	// (bad credentials, unreachable endpoint, unopenable database file).
	ErrStoreConnection = errors.New("workstate: store connection failed")

	// ErrNotFound marks a get for a key that does not exist in the store.
	ErrNotFound = errors.New("workstate: object not found")

	// ErrIO marks a local filesystem failure or a store write rejection.
	ErrIO = errors.New("workstate: io failure")
)
