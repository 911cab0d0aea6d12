package kvstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/roach88/todolist/internal/todo"
)

// ErrClosed is returned by every operation on a closed Store.
var ErrClosed = errors.New("kvstore: database is closed")

// Store is the Pebble implementation of todo.Store.
type Store struct {
	db *pebble.DB

	// mu serializes read-modify-write sequences (counter, update merges)
	// and guards db against Close.
	mu sync.RWMutex
}

var _ todo.Store = (*Store)(nil)

// Option configures Open and OpenInMemory.
type Option func(*pebble.Options)

// WithLogger routes Pebble's own log lines to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *pebble.Options) {
		o.Logger = newPebbleLogger(logger)
	}
}

// Open creates or opens a Pebble database in dir.
func Open(dir string, opts ...Option) (*Store, error) {
	return open(dir, &pebble.Options{}, opts)
}

// OpenInMemory opens a database that lives only as long as the Store.
func OpenInMemory(opts ...Option) (*Store, error) {
	return open("", &pebble.Options{FS: vfs.NewMem()}, opts)
}

func open(dir string, po *pebble.Options, opts []Option) (*Store, error) {
	po.Logger = newPebbleLogger(slog.Default())
	for _, opt := range opts {
		opt(po)
	}

	db, err := pebble.Open(dir, po)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// getter is satisfied by *pebble.DB and *pebble.Batch.
type getter interface {
	Get(key []byte) ([]byte, io.Closer, error)
}

// readValue returns a copy of the value at key. found is false if absent.
func readValue(g getter, key []byte) (value []byte, found bool, err error) {
	v, closer, err := g.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()

	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Instantiate records the owner, or clears it when owner is nil.
func (s *Store) Instantiate(_ context.Context, owner *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}

	var err error
	if owner == nil {
		err = s.db.Delete(keyOwner, pebble.Sync)
	} else {
		err = s.db.Set(keyOwner, []byte(*owner), pebble.Sync)
	}
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	return nil
}

// Owner returns the recorded owner, if any.
func (s *Store) Owner(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return "", false, ErrClosed
	}

	v, found, err := readValue(s.db, keyOwner)
	if err != nil {
		return "", false, fmt.Errorf("read owner: %w", err)
	}
	return string(v), found, nil
}

// Create allocates the next id and writes the entry and the advanced counter
// in one batch.
func (s *Store) Create(_ context.Context, description string, priority *todo.Priority) (todo.Entry, error) {
	if err := todo.ValidateCreate(description, priority); err != nil {
		return todo.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return todo.Entry{}, ErrClosed
	}

	b := s.db.NewIndexedBatch()
	defer b.Close()

	id, err := nextID(b)
	if err != nil {
		return todo.Entry{}, fmt.Errorf("create entry: %w", err)
	}

	entry, err := todo.NewEntry(id, description, priority)
	if err != nil {
		return todo.Entry{}, err
	}

	if err := b.Set(entryKey(id), encodeEntry(entry), nil); err != nil {
		return todo.Entry{}, fmt.Errorf("create entry: %w", err)
	}

	if err := b.Commit(pebble.Sync); err != nil {
		return todo.Entry{}, fmt.Errorf("create entry: commit: %w", err)
	}

	return entry, nil
}

// Update merges patch into the stored entry and writes it back.
func (s *Store) Update(_ context.Context, id uint64, patch todo.Patch) (todo.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return todo.Entry{}, ErrClosed
	}

	current, err := s.get(id)
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

	if err := s.db.Set(entryKey(id), encodeEntry(merged), pebble.Sync); err != nil {
		return todo.Entry{}, fmt.Errorf("update entry: %w", err)
	}

	return merged, nil
}

// Delete removes the entry with the given id.
func (s *Store) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}

	key := entryKey(id)
	_, found, err := readValue(s.db, key)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if !found {
		return todo.NewNotFoundError(id)
	}

	if err := s.db.Delete(key, pebble.Sync); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Get returns the entry with the given id.
func (s *Store) Get(_ context.Context, id uint64) (todo.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return todo.Entry{}, ErrClosed
	}
	return s.get(id)
}

func (s *Store) get(id uint64) (todo.Entry, error) {
	v, found, err := readValue(s.db, entryKey(id))
	if err != nil {
		return todo.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	if !found {
		return todo.Entry{}, todo.NewNotFoundError(id)
	}

	entry, err := decodeEntry(id, v)
	if err != nil {
		return todo.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// List returns entries with id > page.StartAfter in ascending id order,
// at most page.Size() of them. Returns an empty slice (not nil) when nothing
// qualifies.
func (s *Store) List(_ context.Context, page todo.Page) ([]todo.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	entries := []todo.Entry{}

	size := page.Size()
	lower, ok := page.Lower()
	if !ok || size == 0 {
		return entries, nil
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: entryKey(lower),
		UpperBound: entryUpperBound(),
	})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid() && len(entries) < size; iter.Next() {
		id, err := parseEntryKey(iter.Key())
		if err != nil {
			return nil, fmt.Errorf("list entries: %w", err)
		}

		entry, err := decodeEntry(id, iter.Value())
		if err != nil {
			return nil, fmt.Errorf("list entries: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	return entries, nil
}
