package engine

import (
	"context"

	"github.com/roach88/todolist/internal/todo"
)

// OpKind names a store operation.
type OpKind string

const (
	OpInstantiate OpKind = "instantiate"
	OpCreate      OpKind = "new_entry"
	OpUpdate      OpKind = "update_entry"
	OpDelete      OpKind = "delete_entry"
	OpGet         OpKind = "query_entry"
	OpList        OpKind = "query_list"
	OpOwner       OpKind = "owner"
	OpPeekID      OpKind = "peek_id"
)

// Op is one store operation. Only the fields its Kind uses are read.
type Op struct {
	Kind OpKind

	// OpInstantiate
	Owner *string

	// OpUpdate, OpDelete, OpGet
	ID uint64

	// OpCreate
	Description string
	Priority    *todo.Priority

	// OpUpdate
	Patch todo.Patch

	// OpList
	Page todo.Page
}

// Result is the outcome of an applied Op.
type Result struct {
	// RequestID and Seq identify the application of the Op.
	RequestID string
	Seq       int64

	// Entry is set by OpCreate, OpUpdate and OpGet.
	Entry todo.Entry

	// Entries is set by OpList. Never nil on success.
	Entries []todo.Entry

	// Owner and HasOwner are set by OpOwner.
	Owner    string
	HasOwner bool

	// NextID is set by OpPeekID.
	NextID uint64
}

// Instantiate records (or clears) the list owner.
func (e *Engine) Instantiate(ctx context.Context, owner *string) error {
	_, err := e.Submit(ctx, Op{Kind: OpInstantiate, Owner: owner})
	return err
}

// Create stores a new entry and returns it.
func (e *Engine) Create(ctx context.Context, description string, priority *todo.Priority) (todo.Entry, error) {
	res, err := e.Submit(ctx, Op{Kind: OpCreate, Description: description, Priority: priority})
	return res.Entry, err
}

// Update merges patch into entry id.
func (e *Engine) Update(ctx context.Context, id uint64, patch todo.Patch) (todo.Entry, error) {
	res, err := e.Submit(ctx, Op{Kind: OpUpdate, ID: id, Patch: patch})
	return res.Entry, err
}

// Delete removes entry id.
func (e *Engine) Delete(ctx context.Context, id uint64) error {
	_, err := e.Submit(ctx, Op{Kind: OpDelete, ID: id})
	return err
}

// Get returns entry id.
func (e *Engine) Get(ctx context.Context, id uint64) (todo.Entry, error) {
	res, err := e.Submit(ctx, Op{Kind: OpGet, ID: id})
	return res.Entry, err
}

// List returns one page of entries.
func (e *Engine) List(ctx context.Context, page todo.Page) ([]todo.Entry, error) {
	res, err := e.Submit(ctx, Op{Kind: OpList, Page: page})
	return res.Entries, err
}

// Owner returns the recorded owner.
func (e *Engine) Owner(ctx context.Context) (string, bool, error) {
	res, err := e.Submit(ctx, Op{Kind: OpOwner})
	return res.Owner, res.HasOwner, err
}

// PeekID returns the id the next Create would allocate.
func (e *Engine) PeekID(ctx context.Context) (uint64, error) {
	res, err := e.Submit(ctx, Op{Kind: OpPeekID})
	return res.NextID, err
}
