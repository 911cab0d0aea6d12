package engine

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Submit once the engine has stopped accepting
// work, and to requests still queued when Run exits.
var ErrClosed = errors.New("engine: closed")

// UnknownOpError is returned for an Op whose Kind the engine does not know.
type UnknownOpError struct {
	Kind OpKind
}

// Error implements the error interface.
func (e *UnknownOpError) Error() string {
	return fmt.Sprintf("engine: unknown operation %q", e.Kind)
}

// IsClosed returns true if err is, or wraps, ErrClosed.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
