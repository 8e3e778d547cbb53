package tree

import "errors"

// Error kinds surfaced by the adapter. Callers test with errors.Is; the
// values returned by the methods wrap these sentinels with context.
var (
	// ErrIncompatiblePolicy is returned at construction when the supplied
	// access policy rejects this adapter type.
	ErrIncompatiblePolicy = errors.New("access policy incompatible with this adapter")

	// ErrKeyNotFound is returned by Get for a name with no child.
	ErrKeyNotFound = errors.New("key not found")

	// ErrAlreadyAuthenticated is returned when authenticating a node that
	// already carries an identity.
	ErrAlreadyAuthenticated = errors.New("already authenticated")

	// ErrNotImplemented marks policy-aware authentication, which belongs to
	// an external authorization layer.
	ErrNotImplemented = errors.New("not implemented")

	// ErrNotSupported marks operations this adapter deliberately refuses:
	// search and partial-field reads.
	ErrNotSupported = errors.New("not supported")

	// ErrIndexOutOfRange is returned by Indexer.KeyByIndex for positions
	// outside the child list.
	ErrIndexOutOfRange = errors.New("index out of range")
)
