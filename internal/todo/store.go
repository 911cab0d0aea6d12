package todo

import "context"

// Store is the persistent entry collection plus its id counter.
//
// Implementations must make every mutation atomic: a failed operation leaves
// no trace, including in the counter. Operations are assumed to be strictly
// serialized by the caller (see internal/engine); implementations need not be
// safe for concurrent writers beyond that.
type Store interface {
	// Instantiate records the owner of the list, or clears it when owner is
	// nil. Entries and the counter are left untouched.
	Instantiate(ctx context.Context, owner *string) error

	// Owner returns the recorded owner. ok is false if none was recorded.
	Owner(ctx context.Context) (owner string, ok bool, err error)

	// Create allocates the next id and stores a new entry with status ToDo.
	Create(ctx context.Context, description string, priority *Priority) (Entry, error)

	// Update merges patch into the entry with the given id.
	Update(ctx context.Context, id uint64, patch Patch) (Entry, error)

	// Delete removes the entry with the given id.
	Delete(ctx context.Context, id uint64) error

	// Get returns the entry with the given id.
	Get(ctx context.Context, id uint64) (Entry, error)

	// List returns entries in ascending id order within page.
	// The result is never nil.
	List(ctx context.Context, page Page) ([]Entry, error)

	// PeekID returns the id the next Create would allocate.
	PeekID(ctx context.Context) (uint64, error)

	// Close releases the underlying storage.
	Close() error
}
