// Package apperr defines the sentinel errors shared between the store, the
// HTTP layer, and the client-side sync engine.
package apperr

import "errors"

var (
	// ErrNotFound means the requested board does not exist. A normal and
	// expected outcome (stale share links, deleted boards), not a fault.
	ErrNotFound = errors.New("not found")

	// ErrValidation means a malformed board identifier or a malformed or
	// empty notes payload. Always rejected at the boundary.
	ErrValidation = errors.New("validation failed")

	// ErrIDSpaceExhausted means identifier allocation gave up after the
	// retry cap. With 36^8 possible identifiers this indicates a broken
	// random source rather than a full store.
	ErrIDSpaceExhausted = errors.New("identifier space exhausted")
)
