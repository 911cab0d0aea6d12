package msg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/todolist/internal/todo"
)

// Backend is the set of store operations the handler dispatches to.
// Satisfied by *engine.Engine and by any todo.Store.
type Backend interface {
	Instantiate(ctx context.Context, owner *string) error
	Create(ctx context.Context, description string, priority *todo.Priority) (todo.Entry, error)
	Update(ctx context.Context, id uint64, patch todo.Patch) (todo.Entry, error)
	Delete(ctx context.Context, id uint64) error
	Get(ctx context.Context, id uint64) (todo.Entry, error)
	List(ctx context.Context, page todo.Page) ([]todo.Entry, error)
}

// Handler validates, decodes and dispatches raw JSON messages.
// Every method returns the JSON-encoded response.
type Handler struct {
	backend Backend
	schema  *Schema
}

// NewHandler creates a Handler over b.
func NewHandler(b Backend) (*Handler, error) {
	schema, err := NewSchema()
	if err != nil {
		return nil, err
	}
	return &Handler{backend: b, schema: schema}, nil
}

// Instantiate handles an InstantiateMsg.
func (h *Handler) Instantiate(ctx context.Context, raw []byte) ([]byte, error) {
	var m InstantiateMsg
	if err := h.decode(DefInstantiate, raw, &m); err != nil {
		return nil, err
	}

	if err := h.backend.Instantiate(ctx, m.Owner); err != nil {
		return nil, err
	}

	return encode(InstantiateResponse{Method: MethodInstantiate, Owner: m.Owner})
}

// Execute handles an ExecuteMsg.
func (h *Handler) Execute(ctx context.Context, raw []byte) ([]byte, error) {
	var m ExecuteMsg
	if err := h.decode(DefExecute, raw, &m); err != nil {
		return nil, err
	}

	resp, err := h.HandleExecute(ctx, m)
	if err != nil {
		return nil, err
	}
	return encode(resp)
}

// HandleExecute dispatches a decoded ExecuteMsg.
func (h *Handler) HandleExecute(ctx context.Context, m ExecuteMsg) (ExecuteResponse, error) {
	switch {
	case m.NewEntry != nil:
		e, err := h.backend.Create(ctx, m.NewEntry.Description, m.NewEntry.Priority)
		if err != nil {
			return ExecuteResponse{}, err
		}
		return entryResult(MethodNewEntry, e), nil

	case m.UpdateEntry != nil:
		e, err := h.backend.Update(ctx, m.UpdateEntry.ID, m.UpdateEntry.Patch())
		if err != nil {
			return ExecuteResponse{}, err
		}
		return entryResult(MethodUpdateEntry, e), nil

	case m.DeleteEntry != nil:
		if err := h.backend.Delete(ctx, m.DeleteEntry.ID); err != nil {
			return ExecuteResponse{}, err
		}
		return ExecuteResponse{Method: MethodDeleteEntry, ID: m.DeleteEntry.ID}, nil
	}

	return ExecuteResponse{}, todo.NewInvalidInputError("execute message has no variant")
}

// Query handles a QueryMsg. The response is an EntryResponse or a
// ListResponse depending on the variant.
func (h *Handler) Query(ctx context.Context, raw []byte) ([]byte, error) {
	var m QueryMsg
	if err := h.decode(DefQuery, raw, &m); err != nil {
		return nil, err
	}

	resp, err := h.HandleQuery(ctx, m)
	if err != nil {
		return nil, err
	}
	return encode(resp)
}

// HandleQuery dispatches a decoded QueryMsg.
func (h *Handler) HandleQuery(ctx context.Context, m QueryMsg) (any, error) {
	switch {
	case m.QueryEntry != nil:
		e, err := h.backend.Get(ctx, m.QueryEntry.ID)
		if err != nil {
			return nil, err
		}
		return NewEntryResponse(e), nil

	case m.QueryList != nil:
		entries, err := h.backend.List(ctx, m.QueryList.Page())
		if err != nil {
			return nil, err
		}
		out := ListResponse{Entries: make([]EntryResponse, 0, len(entries))}
		for _, e := range entries {
			out.Entries = append(out.Entries, NewEntryResponse(e))
		}
		return out, nil
	}

	return nil, todo.NewInvalidInputError("query message has no variant")
}

// decode validates raw against def and decodes it into v.
func (h *Handler) decode(def string, raw []byte, v any) error {
	if err := h.schema.Validate(def, raw); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return todo.NewInvalidInputError(fmt.Sprintf("decode %s: %v", def[1:], err))
	}
	return nil
}

func entryResult(method string, e todo.Entry) ExecuteResponse {
	resp := NewEntryResponse(e)
	return ExecuteResponse{Method: method, ID: e.ID, Entry: &resp}
}

func encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return b, nil
}
