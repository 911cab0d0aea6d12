// Package todo defines the to-do list domain: entries, their priority and
// status variants, the error taxonomy shared by every backend, pagination
// bounds, and the Store contract that backends implement.
//
// # Identity
//
// Entry ids are unsigned 64-bit integers issued by a persisted counter that
// starts at FirstID. Ids are strictly increasing and never reused, even after
// the entry they named is deleted. Callers never supply ids on creation.
//
// # Ordering
//
// Every range query walks entries in ascending id order. Pagination uses an
// exclusive cursor: the last id of one page is the StartAfter of the next,
// which neither repeats nor skips entries when others are deleted between
// calls.
//
// # Errors
//
// Store operations fail with *Error values carrying CodeInvalidInput or
// CodeNotFound. Use errors.Is with ErrInvalidInput / ErrNotFound, or the
// IsInvalidInput / IsNotFound helpers.
package todo
