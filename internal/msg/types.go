package msg

import "github.com/roach88/todolist/internal/todo"

// InstantiateMsg sets up the list.
type InstantiateMsg struct {
	// Owner of the list. Recorded, not enforced.
	Owner *string `json:"owner,omitempty"`
}

// ExecuteMsg carries exactly one mutating variant.
type ExecuteMsg struct {
	NewEntry    *NewEntry    `json:"new_entry,omitempty"`
	UpdateEntry *UpdateEntry `json:"update_entry,omitempty"`
	DeleteEntry *DeleteEntry `json:"delete_entry,omitempty"`
}

// NewEntry creates an entry.
type NewEntry struct {
	Description string         `json:"description"`
	Priority    *todo.Priority `json:"priority,omitempty"`
}

// UpdateEntry overwrites the supplied fields of entry ID.
type UpdateEntry struct {
	ID          uint64         `json:"id"`
	Description *string        `json:"description,omitempty"`
	Status      *todo.Status   `json:"status,omitempty"`
	Priority    *todo.Priority `json:"priority,omitempty"`
}

// Patch returns the store patch for this update.
func (u UpdateEntry) Patch() todo.Patch {
	return todo.Patch{
		Description: u.Description,
		Status:      u.Status,
		Priority:    u.Priority,
	}
}

// DeleteEntry removes entry ID.
type DeleteEntry struct {
	ID uint64 `json:"id"`
}

// QueryMsg carries exactly one read-only variant.
type QueryMsg struct {
	QueryEntry *QueryEntry `json:"query_entry,omitempty"`
	QueryList  *QueryList  `json:"query_list,omitempty"`
}

// QueryEntry reads entry ID.
type QueryEntry struct {
	ID uint64 `json:"id"`
}

// QueryList reads one page of entries.
type QueryList struct {
	StartAfter *uint64 `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

// Page returns the store page for this query.
func (q QueryList) Page() todo.Page {
	return todo.Page{StartAfter: q.StartAfter, Limit: q.Limit}
}

// EntryResponse is one entry as returned by queries.
type EntryResponse struct {
	ID          uint64        `json:"id"`
	Description string        `json:"description"`
	Status      todo.Status   `json:"status"`
	Priority    todo.Priority `json:"priority"`
}

// NewEntryResponse converts a stored entry.
func NewEntryResponse(e todo.Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		Description: e.Description,
		Status:      e.Status,
		Priority:    e.Priority,
	}
}

// ListResponse is one page of entries in ascending id order.
type ListResponse struct {
	Entries []EntryResponse `json:"entries"`
}

// InstantiateResponse acknowledges an InstantiateMsg.
type InstantiateResponse struct {
	Method string  `json:"method"`
	Owner  *string `json:"owner"`
}

// ExecuteResponse acknowledges an ExecuteMsg.
//
// Method is the executed variant. ID is the entry affected. Entry is the
// stored record after a create or update, absent after a delete.
type ExecuteResponse struct {
	Method string         `json:"method"`
	ID     uint64         `json:"id"`
	Entry  *EntryResponse `json:"entry,omitempty"`
}

// Variant names, used as ExecuteResponse.Method and in traces.
const (
	MethodInstantiate = "instantiate"
	MethodNewEntry    = "new_entry"
	MethodUpdateEntry = "update_entry"
	MethodDeleteEntry = "delete_entry"
	MethodQueryEntry  = "query_entry"
	MethodQueryList   = "query_list"
)

// Method returns the name of the variant set in m, or "" if none is.
func (m ExecuteMsg) Method() string {
	switch {
	case m.NewEntry != nil:
		return MethodNewEntry
	case m.UpdateEntry != nil:
		return MethodUpdateEntry
	case m.DeleteEntry != nil:
		return MethodDeleteEntry
	}
	return ""
}

// Method returns the name of the variant set in m, or "" if none is.
func (m QueryMsg) Method() string {
	switch {
	case m.QueryEntry != nil:
		return MethodQueryEntry
	case m.QueryList != nil:
		return MethodQueryList
	}
	return ""
}
