// Package msg is the JSON message boundary of the to-do list.
//
// Requests arrive as three message families, each a JSON object in the
// externally tagged, snake_case form:
//
//	InstantiateMsg  {"owner": "alice"}
//	ExecuteMsg      {"new_entry": {...}} | {"update_entry": {...}} | {"delete_entry": {...}}
//	QueryMsg        {"query_entry": {...}} | {"query_list": {...}}
//
// Raw bytes are checked against the embedded CUE schema (schema.cue) before
// they are decoded, so unknown fields, missing variants, out-of-range ids and
// unknown enum names are rejected with todo.ErrInvalidInput. Handler then
// dispatches the decoded message to a Backend and encodes the response.
package msg
