package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/todolist/internal/msg"
)

// Text renderings of command results. In JSON mode the embedded message
// types are encoded as-is.

type entryView struct {
	msg.EntryResponse
}

func (v entryView) String() string {
	return fmt.Sprintf("%d\t%-10s\t%-6s\t%s", v.ID, v.Status, v.Priority, v.Description)
}

type listView struct {
	msg.ListResponse
}

func (v listView) String() string {
	if len(v.Entries) == 0 {
		return "No entries."
	}
	lines := make([]string, len(v.Entries))
	for i, e := range v.Entries {
		lines[i] = entryView{e}.String()
	}
	return strings.Join(lines, "\n")
}

type executeView struct {
	msg.ExecuteResponse
}

func (v executeView) String() string {
	switch v.Method {
	case msg.MethodNewEntry:
		return fmt.Sprintf("Created entry %d", v.ID)
	case msg.MethodUpdateEntry:
		return fmt.Sprintf("Updated entry %d", v.ID)
	case msg.MethodDeleteEntry:
		return fmt.Sprintf("Deleted entry %d", v.ID)
	}
	return fmt.Sprintf("%s %d", v.Method, v.ID)
}

type instantiateView struct {
	msg.InstantiateResponse
}

func (v instantiateView) String() string {
	if v.Owner == nil {
		return "Initialized (no owner)"
	}
	return fmt.Sprintf("Initialized (owner: %s)", *v.Owner)
}

type infoView struct {
	Backend  string  `json:"backend"`
	Database string  `json:"db"`
	Owner    *string `json:"owner"`
	NextID   uint64  `json:"next_id"`
}

func (v infoView) String() string {
	owner := "(none)"
	if v.Owner != nil {
		owner = *v.Owner
	}
	return fmt.Sprintf("Backend:  %s\nDatabase: %s\nOwner:    %s\nNext id:  %d",
		v.Backend, v.Database, owner, v.NextID)
}

// rawView prints a raw JSON response as-is in text mode.
type rawView struct {
	json []byte
}

func (v rawView) String() string {
	return string(v.json)
}

func (v rawView) MarshalJSON() ([]byte, error) {
	return v.json, nil
}
