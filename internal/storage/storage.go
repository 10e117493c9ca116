// Package storage declares the errors shared by every persistence backend.
package storage

import "errors"

// ErrNotFound means the requested record does not exist. Backends wrap it so
// callers can classify lookups with errors.Is regardless of the engine.
var ErrNotFound = errors.New("record not found")
