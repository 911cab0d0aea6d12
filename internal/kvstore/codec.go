package kvstore

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/roach88/todolist/internal/todo"
)

var (
	entryPrefix = []byte("e/")
	keyNextID   = []byte("m/next_id")
	keyOwner    = []byte("m/owner")
)

// entryKey encodes id so that byte order equals numeric order.
func entryKey(id uint64) []byte {
	key := make([]byte, len(entryPrefix)+8)
	copy(key, entryPrefix)
	binary.BigEndian.PutUint64(key[len(entryPrefix):], id)
	return key
}

// parseEntryKey is the inverse of entryKey.
func parseEntryKey(key []byte) (uint64, error) {
	if len(key) != len(entryPrefix)+8 || string(key[:len(entryPrefix)]) != string(entryPrefix) {
		return 0, fmt.Errorf("malformed entry key %q", key)
	}
	return binary.BigEndian.Uint64(key[len(entryPrefix):]), nil
}

// entryUpperBound is the first key past every entry key.
func entryUpperBound() []byte {
	upper := make([]byte, len(entryPrefix))
	copy(upper, entryPrefix)
	upper[len(upper)-1]++
	return upper
}

// binary encoding: [status:1][priority:1][description:rest]
// The id lives in the key only.
func encodeEntry(e todo.Entry) []byte {
	buf := make([]byte, 2+len(e.Description))
	buf[0] = byte(e.Status)
	buf[1] = byte(e.Priority)
	copy(buf[2:], e.Description)
	return buf
}

func decodeEntry(id uint64, b []byte) (todo.Entry, error) {
	if len(b) < 3 {
		return todo.Entry{}, errors.New("invalid entry record length")
	}
	e := todo.Entry{
		ID:          id,
		Status:      todo.Status(b[0]),
		Priority:    todo.Priority(b[1]),
		Description: string(b[2:]),
	}
	if !e.Status.Valid() || !e.Priority.Valid() {
		return todo.Entry{}, fmt.Errorf("invalid entry record for id %d", id)
	}
	return e, nil
}

func encodeCounter(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeCounter(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, errors.New("invalid counter length")
	}
	return binary.BigEndian.Uint64(b), nil
}
