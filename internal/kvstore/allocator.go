package kvstore

import (
	"context"
	"fmt"
	"math"

	"github.com/cockroachdb/pebble"

	"github.com/roach88/todolist/internal/todo"
)

// peekID reads the counter through g. An absent counter means nothing was
// ever created, so the next id is FirstID.
func peekID(g getter) (uint64, error) {
	v, found, err := readValue(g, keyNextID)
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	if !found {
		return todo.FirstID, nil
	}
	return decodeCounter(v)
}

// nextID returns the next id and stages the advanced counter in b.
// Nothing is visible until b commits.
func nextID(b *pebble.Batch) (uint64, error) {
	id, err := peekID(b)
	if err != nil {
		return 0, err
	}
	if id == math.MaxUint64 {
		return 0, fmt.Errorf("allocate id: counter exhausted")
	}

	if err := b.Set(keyNextID, encodeCounter(id+1), nil); err != nil {
		return 0, fmt.Errorf("advance counter: %w", err)
	}
	return id, nil
}

// PeekID returns the id the next Create would allocate.
func (s *Store) PeekID(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return 0, ErrClosed
	}

	id, err := peekID(s.db)
	if err != nil {
		return 0, fmt.Errorf("peek id: %w", err)
	}
	return id, nil
}
