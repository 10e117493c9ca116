package interview

import "errors"

// ErrInvalidState means the requested transition is not allowed from the
// interview's current status.
var ErrInvalidState = errors.New("invalid interview state for this operation")
