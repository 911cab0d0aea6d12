package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todolist/internal/store"
	"github.com/roach88/todolist/internal/todo"
	"github.com/roach88/todolist/internal/todo/todotest"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startEngine runs an engine over s until the test ends.
func startEngine(t *testing.T, s todo.Store, opts ...Option) *Engine {
	t.Helper()

	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	e := New(s, NewSequenceGenerator("req"), opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("Run did not return after cancel")
		}
	})
	return e
}

// engineStore adapts an Engine to todo.Store so the conformance suite can
// drive the store through the single-writer loop.
type engineStore struct {
	*Engine
	backing todo.Store
}

func (s engineStore) Close() error {
	s.Engine.Close()
	return s.backing.Close()
}

func TestEngine_Conformance(t *testing.T) {
	todotest.Run(t, func(t *testing.T) todo.Store {
		s, err := store.Open(":memory:")
		require.NoError(t, err)
		return engineStore{Engine: startEngine(t, s), backing: s}
	})
}

func TestEngine_New(t *testing.T) {
	s := setupTestStore(t)
	e := New(s, NewFixedGenerator("req-1"))

	assert.NotNil(t, e.clock)
	assert.NotNil(t, e.queue)
	assert.NotNil(t, e.logger)
	assert.Equal(t, 0, e.QueueLen())
}

func TestEngine_WithClock(t *testing.T) {
	s := setupTestStore(t)
	clock := NewClockAt(41)
	e := startEngine(t, s, WithClock(clock))

	res, err := e.Submit(context.Background(), Op{Kind: OpPeekID})
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.Seq)
	assert.Same(t, clock, e.Clock())
}

func TestEngine_StampsRequests(t *testing.T) {
	s := setupTestStore(t)
	e := New(s, NewFixedGenerator("req-a", "req-b"), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	r1, err := e.Submit(ctx, Op{Kind: OpCreate, Description: "a"})
	require.NoError(t, err)
	r2, err := e.Submit(ctx, Op{Kind: OpGet, ID: r1.Entry.ID})
	require.NoError(t, err)

	assert.Equal(t, "req-a", r1.RequestID)
	assert.Equal(t, int64(1), r1.Seq)
	assert.Equal(t, "req-b", r2.RequestID)
	assert.Equal(t, int64(2), r2.Seq)
	assert.Equal(t, r1.Entry, r2.Entry)
}

func TestEngine_DomainErrorsPassThrough(t *testing.T) {
	s := setupTestStore(t)
	e := startEngine(t, s)
	ctx := context.Background()

	_, err := e.Update(ctx, 999, todo.Patch{Description: ptr("x")})
	assert.True(t, todo.IsNotFound(err))

	var te *todo.Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, uint64(999), te.ID)

	_, err = e.Create(ctx, "", nil)
	assert.True(t, todo.IsInvalidInput(err))
}

func TestEngine_UnknownOp(t *testing.T) {
	s := setupTestStore(t)
	e := startEngine(t, s)

	_, err := e.Submit(context.Background(), Op{Kind: "compact"})
	var uo *UnknownOpError
	require.True(t, errors.As(err, &uo))
	assert.Equal(t, OpKind("compact"), uo.Kind)
}

func TestEngine_OwnerAndPeek(t *testing.T) {
	s := setupTestStore(t)
	e := startEngine(t, s)
	ctx := context.Background()

	_, ok, err := e.Owner(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, e.Instantiate(ctx, ptr("alice")))
	owner, ok, err := e.Owner(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", owner)

	next, err := e.PeekID(ctx)
	require.NoError(t, err)
	assert.Equal(t, todo.FirstID, next)
}

func TestEngine_ConcurrentSubmitters(t *testing.T) {
	s := setupTestStore(t)
	e := startEngine(t, s)
	ctx := context.Background()

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	ids := make(chan uint64, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				entry, err := e.Create(ctx, "task", nil)
				if !assert.NoError(t, err) {
					return
				}
				ids <- entry.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d issued twice", id)
		seen[id] = true
	}
	require.Len(t, seen, workers*perWorker)
	for id := uint64(1); id <= workers*perWorker; id++ {
		assert.True(t, seen[id], "id %d missing", id)
	}

	next, err := e.PeekID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(workers*perWorker+1), next)
}

func TestEngine_SubmitAfterClose(t *testing.T) {
	s := setupTestStore(t)
	e := startEngine(t, s)

	e.Close()
	e.Close() // idempotent

	_, err := e.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.True(t, IsClosed(err))
}

func TestEngine_CloseFailsQueuedRequests(t *testing.T) {
	s := setupTestStore(t)
	// Run is never started, so the request stays queued.
	e := New(s, NewSequenceGenerator("req"), WithLogger(quietLogger()))

	errs := make(chan error, 1)
	go func() {
		_, err := e.Create(context.Background(), "a", nil)
		errs <- err
	}()

	require.Eventually(t, func() bool { return e.QueueLen() == 1 }, time.Second, time.Millisecond)
	e.Close()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("queued request was not failed by Close")
	}

	next, err := s.PeekID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, todo.FirstID, next, "a request failed by Close must not be applied")
}

func TestEngine_RunReturnsOnClose(t *testing.T) {
	s := setupTestStore(t)
	e := New(s, NewSequenceGenerator("req"), WithLogger(quietLogger()))

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	e.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestEngine_RunReturnsOnCancel(t *testing.T) {
	s := setupTestStore(t)
	e := New(s, NewSequenceGenerator("req"), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	_, err := e.PeekID(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEngine_SubmitCancelledContext(t *testing.T) {
	s := setupTestStore(t)
	e := startEngine(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Create(ctx, "a", nil)
	assert.ErrorIs(t, err, context.Canceled)

	next, err := e.PeekID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, todo.FirstID, next)
}

func TestEngine_SkipsRequestsCancelledWhileQueued(t *testing.T) {
	s := setupTestStore(t)
	e := New(s, NewSequenceGenerator("req"), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := e.Create(ctx, "a", nil)
		errs <- err
	}()
	require.Eventually(t, func() bool { return e.QueueLen() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errs, context.Canceled)

	// Start the loop only now: the cancelled request must be skipped.
	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go e.Run(runCtx)

	next, err := e.PeekID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, todo.FirstID, next)
	assert.Equal(t, int64(1), e.Clock().Current(), "only the peek was stamped")
}

// cancellingStore cancels the submitter's context from inside Create and
// records what the store saw.
type cancellingStore struct {
	todo.Store
	cancel context.CancelFunc
	ctxErr chan error
}

func (s *cancellingStore) Create(ctx context.Context, description string, priority *todo.Priority) (todo.Entry, error) {
	s.cancel()
	s.ctxErr <- ctx.Err()
	return s.Store.Create(ctx, description, priority)
}

func TestEngine_AppliesDequeuedOpAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &cancellingStore{Store: setupTestStore(t), cancel: cancel, ctxErr: make(chan error, 1)}
	e := startEngine(t, s)

	_, _ = e.Create(ctx, "a", nil)
	assert.NoError(t, <-s.ctxErr, "store sees a live context once the op is dequeued")

	got, err := e.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Description)

	next, err := e.PeekID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next)
}

func ptr[T any](v T) *T { return &v }
