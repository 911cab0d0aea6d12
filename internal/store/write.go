package store

import (
	"context"
	"fmt"

	"github.com/roach88/todolist/internal/todo"
)

// settingOwner is the settings key holding the list owner.
const settingOwner = "owner"

// Instantiate records the owner, or clears it when owner is nil.
func (s *Store) Instantiate(ctx context.Context, owner *string) error {
	var err error
	if owner == nil {
		_, err = s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, settingOwner)
	} else {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO settings (key, value)
			VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, settingOwner, *owner)
	}
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	return nil
}

// Create allocates the next id and inserts a new entry in one transaction.
//
// Input is validated before the transaction starts, so a rejected request
// never reaches the counter.
func (s *Store) Create(ctx context.Context, description string, priority *todo.Priority) (todo.Entry, error) {
	if err := todo.ValidateCreate(description, priority); err != nil {
		return todo.Entry{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return todo.Entry{}, fmt.Errorf("create entry: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	id, err := nextID(ctx, tx)
	if err != nil {
		return todo.Entry{}, fmt.Errorf("create entry: %w", err)
	}

	entry, err := todo.NewEntry(id, description, priority)
	if err != nil {
		return todo.Entry{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (id, description, status, priority)
		VALUES (?, ?, ?, ?)
	`,
		int64(entry.ID),
		entry.Description,
		entry.Status.String(),
		entry.Priority.String(),
	)
	if err != nil {
		return todo.Entry{}, fmt.Errorf("create entry: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return todo.Entry{}, fmt.Errorf("create entry: commit: %w", err)
	}

	return entry, nil
}

// Update merges patch into the stored entry and writes it back.
// The read and the write share one transaction.
func (s *Store) Update(ctx context.Context, id uint64, patch todo.Patch) (todo.Entry, error) {
	key, ok := sqlID(id)
	if !ok {
		return todo.Entry{}, todo.NewNotFoundError(id)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return todo.Entry{}, fmt.Errorf("update entry: begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := getEntry(ctx, tx, id)
	if err != nil {
		return todo.Entry{}, err
	}

	merged, err := current.Apply(patch)
	if err != nil {
		return todo.Entry{}, err
	}

	if merged == current {
		return current, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE entries
		SET description = ?, status = ?, priority = ?
		WHERE id = ?
	`,
		merged.Description,
		merged.Status.String(),
		merged.Priority.String(),
		key,
	)
	if err != nil {
		return todo.Entry{}, fmt.Errorf("update entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return todo.Entry{}, fmt.Errorf("update entry: commit: %w", err)
	}

	return merged, nil
}

// Delete removes the entry with the given id.
func (s *Store) Delete(ctx context.Context, id uint64) error {
	key, ok := sqlID(id)
	if !ok {
		return todo.NewNotFoundError(id)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, key)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return todo.NewNotFoundError(id)
	}

	return nil
}
