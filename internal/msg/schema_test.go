package msg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todolist/internal/todo"
)

func TestSchema_Accepts(t *testing.T) {
	s, err := NewSchema()
	require.NoError(t, err)

	tests := []struct {
		def  string
		data string
	}{
		{DefInstantiate, `{}`},
		{DefInstantiate, `{"owner": "alice"}`},
		{DefInstantiate, `{"owner": null}`},
		{DefExecute, `{"new_entry": {"description": "buy milk"}}`},
		{DefExecute, `{"new_entry": {"description": "buy milk", "priority": "High"}}`},
		{DefExecute, `{"new_entry": {"description": "buy milk", "priority": null}}`},
		{DefExecute, `{"update_entry": {"id": 1}}`},
		{DefExecute, `{"update_entry": {"id": 1, "description": "x", "status": "Done", "priority": "Low"}}`},
		{DefExecute, `{"update_entry": {"id": 1, "status": null}}`},
		{DefExecute, `{"delete_entry": {"id": 18446744073709551615}}`},
		{DefQuery, `{"query_entry": {"id": 0}}`},
		{DefQuery, `{"query_list": {}}`},
		{DefQuery, `{"query_list": {"start_after": 3, "limit": 4294967295}}`},
		{DefQuery, `{"query_list": {"start_after": null, "limit": null}}`},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			assert.NoError(t, s.Validate(tt.def, []byte(tt.data)))
		})
	}
}

func TestSchema_Rejects(t *testing.T) {
	s, err := NewSchema()
	require.NoError(t, err)

	tests := []struct {
		name    string
		def     string
		data    string
		mention string
	}{
		{"malformed json", DefExecute, `{"new_entry": `, "malformed JSON"},
		{"not an object", DefExecute, `[]`, "ExecuteMsg"},
		{"no variant", DefExecute, `{}`, "expected exactly one of new_entry, update_entry, delete_entry"},
		{"two variants", DefExecute, `{"new_entry": {"description": "a"}, "delete_entry": {"id": 1}}`, "got 2 keys"},
		{"unknown variant", DefExecute, `{"archive_entry": {"id": 1}}`, "unknown variant \"archive_entry\""},
		{"missing description", DefExecute, `{"new_entry": {}}`, "new_entry.description"},
		{"empty description", DefExecute, `{"new_entry": {"description": ""}}`, "new_entry.description"},
		{"unknown priority", DefExecute, `{"new_entry": {"description": "a", "priority": "Urgent"}}`, "new_entry.priority"},
		{"unknown field", DefExecute, `{"new_entry": {"description": "a", "due": "tomorrow"}}`, "due"},
		{"missing id", DefExecute, `{"update_entry": {"description": "a"}}`, "update_entry.id"},
		{"negative id", DefExecute, `{"delete_entry": {"id": -1}}`, "delete_entry.id"},
		{"id overflow", DefExecute, `{"delete_entry": {"id": 18446744073709551616}}`, "delete_entry.id"},
		{"fractional id", DefExecute, `{"delete_entry": {"id": 1.5}}`, "delete_entry.id"},
		{"string id", DefExecute, `{"delete_entry": {"id": "1"}}`, "delete_entry.id"},
		{"unknown status", DefExecute, `{"update_entry": {"id": 1, "status": "Pending"}}`, "update_entry.status"},
		{"empty update description", DefExecute, `{"update_entry": {"id": 1, "description": ""}}`, "update_entry.description"},
		{"limit overflow", DefQuery, `{"query_list": {"limit": 4294967296}}`, "query_list.limit"},
		{"no query variant", DefQuery, `{}`, "expected exactly one of query_entry, query_list"},
		{"query with execute variant", DefQuery, `{"new_entry": {"description": "a"}}`, "unknown variant \"new_entry\""},
		{"owner not a string", DefInstantiate, `{"owner": 7}`, "owner"},
		{"instantiate unknown field", DefInstantiate, `{"admin": "bob"}`, "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(tt.def, []byte(tt.data))
			require.Error(t, err)
			assert.True(t, todo.IsInvalidInput(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.mention)
		})
	}
}

func TestSchema_UnknownDefinition(t *testing.T) {
	s, err := NewSchema()
	require.NoError(t, err)

	err = s.Validate("#MigrateMsg", []byte(`{}`))
	require.Error(t, err)
	assert.False(t, todo.IsInvalidInput(err))
}
