package todo

import "math"

// Pagination bounds for List.
const (
	// DefaultLimit applies when a query carries no limit.
	DefaultLimit = 10

	// MaxLimit caps every page. Larger requests are clamped, not rejected.
	MaxLimit = 30
)

// Page selects a slice of the id-ordered entry set.
type Page struct {
	// StartAfter is an exclusive lower bound on ids. Nil starts from the
	// smallest id.
	StartAfter *uint64

	// Limit bounds the number of entries returned. Nil means DefaultLimit.
	Limit *uint32
}

// Size returns the effective number of entries to return, in [0, MaxLimit].
func (p Page) Size() int {
	if p.Limit == nil {
		return DefaultLimit
	}
	if *p.Limit > MaxLimit {
		return MaxLimit
	}
	return int(*p.Limit)
}

// Lower returns the smallest eligible id. ok is false when no id can follow
// StartAfter, i.e. StartAfter is math.MaxUint64.
func (p Page) Lower() (id uint64, ok bool) {
	if p.StartAfter == nil {
		return 0, true
	}
	if *p.StartAfter == math.MaxUint64 {
		return 0, false
	}
	return *p.StartAfter + 1, true
}

// After is a convenience constructor for a page starting after id.
func After(id uint64, limit uint32) Page {
	return Page{StartAfter: &id, Limit: &limit}
}

// First is a convenience constructor for the first page of the given size.
func First(limit uint32) Page {
	return Page{Limit: &limit}
}
