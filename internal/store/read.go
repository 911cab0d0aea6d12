package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/todolist/internal/todo"
)

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id uint64) (todo.Entry, error) {
	return getEntry(ctx, s.db, id)
}

// getEntry reads one entry through q, which may be a transaction.
func getEntry(ctx context.Context, q queryer, id uint64) (todo.Entry, error) {
	key, ok := sqlID(id)
	if !ok {
		return todo.Entry{}, todo.NewNotFoundError(id)
	}

	row := q.QueryRowContext(ctx, `
		SELECT id, description, status, priority
		FROM entries
		WHERE id = ?
	`, key)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return todo.Entry{}, todo.NewNotFoundError(id)
	}
	if err != nil {
		return todo.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// List returns entries with id > page.StartAfter in ascending id order,
// at most page.Size() of them. Returns an empty slice (not nil) when nothing
// qualifies.
func (s *Store) List(ctx context.Context, page todo.Page) ([]todo.Entry, error) {
	entries := []todo.Entry{}

	size := page.Size()
	lower, ok := page.Lower()
	if !ok || size == 0 {
		return entries, nil
	}
	from, ok := sqlID(lower)
	if !ok {
		return entries, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, status, priority
		FROM entries
		WHERE id >= ?
		ORDER BY id ASC
		LIMIT ?
	`, from, size)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

// Owner returns the recorded owner, if any.
func (s *Store) Owner(ctx context.Context) (string, bool, error) {
	var owner string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM settings WHERE key = ?
	`, settingOwner).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read owner: %w", err)
	}
	return owner, true, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEntry scans an (id, description, status, priority) row.
// sql.ErrNoRows is returned unwrapped so callers can map it to not found.
func scanEntry(sc scanner) (todo.Entry, error) {
	var (
		id               int64
		entry            todo.Entry
		status, priority string
	)

	if err := sc.Scan(&id, &entry.Description, &status, &priority); err != nil {
		return todo.Entry{}, err
	}
	entry.ID = uint64(id)

	var err error
	if entry.Status, err = todo.ParseStatus(status); err != nil {
		return todo.Entry{}, fmt.Errorf("entry %d: %w", id, err)
	}
	if entry.Priority, err = todo.ParsePriority(priority); err != nil {
		return todo.Entry{}, fmt.Errorf("entry %d: %w", id, err)
	}

	return entry, nil
}
