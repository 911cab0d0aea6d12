// Package kvstore provides a todo.Store backed by a Pebble LSM tree.
//
// Pebble keeps keys in byte order, so entries are keyed by their id encoded
// as 8 big-endian bytes under the "e/" prefix: byte order equals numeric id
// order, and a range query is a bounded iterator seek.
//
// Key layout:
//
//	e/<id:8>      entry record
//	m/next_id     next id to issue (8 bytes, big-endian); absent until first use
//	m/owner       list owner (raw string); absent when unset
//
// Creation reads m/next_id and writes both the entry and the advanced
// counter in one indexed batch committed with pebble.Sync. Writers are
// serialized by a mutex. After Close every operation returns ErrClosed.
//
// Pebble's own log lines go to the logger passed with WithLogger
// (slog.Default otherwise): informational lines at Debug, fatal ones at
// Error before the process exits.
package kvstore
