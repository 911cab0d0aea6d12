package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/todolist/internal/todo"
)

// entryCounter names the counters row holding the next entry id.
const entryCounter = "entry_id"

// peekID reads the next id without allocating it.
// A missing counter row means nothing was ever created: the next id is FirstID.
func peekID(ctx context.Context, q queryer) (uint64, error) {
	var value int64
	err := q.QueryRowContext(ctx, `
		SELECT value FROM counters WHERE name = ?
	`, entryCounter).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return todo.FirstID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	return uint64(value), nil
}

// nextID returns the next id and advances the counter within tx.
// The advance only becomes visible when tx commits, together with the
// entry it was allocated for.
func nextID(ctx context.Context, tx *sql.Tx) (uint64, error) {
	id, err := peekID(ctx, tx)
	if err != nil {
		return 0, err
	}

	next, ok := sqlID(id + 1)
	if !ok {
		return 0, fmt.Errorf("allocate id: counter exhausted at %d", id)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO counters (name, value)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`, entryCounter, next)
	if err != nil {
		return 0, fmt.Errorf("advance counter: %w", err)
	}

	return id, nil
}

// PeekID returns the id the next Create would allocate.
func (s *Store) PeekID(ctx context.Context) (uint64, error) {
	id, err := peekID(ctx, s.db)
	if err != nil {
		return 0, fmt.Errorf("peek id: %w", err)
	}
	return id, nil
}
