package todo

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FirstID is the id issued to the first entry of a fresh store.
const FirstID uint64 = 1

// Entry is a single persisted to-do record.
type Entry struct {
	ID          uint64   `json:"id"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
}

// Patch carries the optional fields of an update.
// A nil field leaves the stored value unchanged.
type Patch struct {
	Description *string
	Status      *Status
	Priority    *Priority
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Description == nil && p.Status == nil && p.Priority == nil
}

// NormalizeDescription returns the NFC form of s.
// Fails with CodeInvalidInput when s is empty or only whitespace.
func NormalizeDescription(s string) (string, error) {
	n := norm.NFC.String(s)
	if strings.TrimSpace(n) == "" {
		return "", NewInvalidInputError("description must not be empty")
	}
	return n, nil
}

// NewEntry builds the record stored by a creation: status ToDo, priority
// defaulting to PriorityNone. The id must come from the allocator.
func NewEntry(id uint64, description string, priority *Priority) (Entry, error) {
	desc, err := NormalizeDescription(description)
	if err != nil {
		return Entry{}, err
	}

	p := PriorityNone
	if priority != nil {
		if !priority.Valid() {
			return Entry{}, NewInvalidInputError("invalid priority")
		}
		p = *priority
	}

	return Entry{
		ID:          id,
		Description: desc,
		Status:      StatusToDo,
		Priority:    p,
	}, nil
}

// ValidateCreate checks creation input without building an entry.
// Backends call it before allocating an id so a rejected request never
// touches the counter.
func ValidateCreate(description string, priority *Priority) error {
	_, err := NewEntry(0, description, priority)
	return err
}

// Apply returns e with the patch fields merged in. e is not modified.
func (e Entry) Apply(p Patch) (Entry, error) {
	out := e

	if p.Description != nil {
		desc, err := NormalizeDescription(*p.Description)
		if err != nil {
			return Entry{}, err
		}
		out.Description = desc
	}

	if p.Status != nil {
		if !p.Status.Valid() {
			return Entry{}, NewInvalidInputError("invalid status")
		}
		out.Status = *p.Status
	}

	if p.Priority != nil {
		if !p.Priority.Valid() {
			return Entry{}, NewInvalidInputError("invalid priority")
		}
		out.Priority = *p.Priority
	}

	return out, nil
}
