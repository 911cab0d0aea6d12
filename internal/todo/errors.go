package todo

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store failures.
type ErrorCode string

const (
	// CodeInvalidInput marks a malformed or empty required field.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeNotFound marks a reference to an id with no entry.
	CodeNotFound ErrorCode = "NOT_FOUND"
)

// Sentinels for errors.Is. Any *Error with the same Code matches.
var (
	ErrInvalidInput = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "entry not found"}
)

// Error is the failure returned by every Store operation.
//
// Both codes are terminal for the requested operation: nothing was written.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ID is the entry id involved, zero when not applicable.
	ID uint64
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s: %s (id=%d)", e.Code, e.Message, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code, so wrapped store errors compare
// equal to ErrInvalidInput / ErrNotFound.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewInvalidInputError creates an Error for a rejected field.
func NewInvalidInputError(message string) *Error {
	return &Error{Code: CodeInvalidInput, Message: message}
}

// NewNotFoundError creates an Error for a missing entry.
func NewNotFoundError(id uint64) *Error {
	return &Error{Code: CodeNotFound, Message: "entry not found", ID: id}
}

// IsInvalidInput returns true if err is, or wraps, an invalid-input error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotFound returns true if err is, or wraps, a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// CodeOf extracts the ErrorCode from err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
