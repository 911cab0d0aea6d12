package todo

import "fmt"

// Priority is the urgency attached to an entry.
// There is no ordering between variants; only equality matters.
type Priority uint8

const (
	// PriorityNone is the default when no priority is supplied.
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

var priorityNames = [...]string{
	PriorityNone:   "None",
	PriorityLow:    "Low",
	PriorityMedium: "Medium",
	PriorityHigh:   "High",
}

// Priorities lists every variant in declaration order.
var Priorities = []Priority{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) String() string {
	if int(p) < len(priorityNames) {
		return priorityNames[p]
	}
	return fmt.Sprintf("Priority(%d)", uint8(p))
}

// Valid reports whether p is one of the declared variants.
func (p Priority) Valid() bool {
	return int(p) < len(priorityNames)
}

// ParsePriority converts a variant name ("None", "Low", "Medium", "High").
// Names are case-sensitive, matching the wire format.
func ParsePriority(s string) (Priority, error) {
	for i, name := range priorityNames {
		if name == s {
			return Priority(i), nil
		}
	}
	return PriorityNone, NewInvalidInputError(fmt.Sprintf("unknown priority %q", s))
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("marshal priority: invalid value %d", uint8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	v, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Status is the progress state of an entry.
type Status uint8

const (
	// StatusToDo is the initial state of every new entry.
	StatusToDo Status = iota
	StatusInProgress
	StatusDone
	StatusCancelled
)

var statusNames = [...]string{
	StatusToDo:       "ToDo",
	StatusInProgress: "InProgress",
	StatusDone:       "Done",
	StatusCancelled:  "Cancelled",
}

// Statuses lists every variant in declaration order.
var Statuses = []Status{StatusToDo, StatusInProgress, StatusDone, StatusCancelled}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Valid reports whether s is one of the declared variants.
func (s Status) Valid() bool {
	return int(s) < len(statusNames)
}

// ParseStatus converts a variant name ("ToDo", "InProgress", "Done", "Cancelled").
func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if name == s {
			return Status(i), nil
		}
	}
	return StatusToDo, NewInvalidInputError(fmt.Sprintf("unknown status %q", s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("marshal status: invalid value %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
