// Package todotest provides a behavioural test suite for todo.Store
// implementations. Backend packages call Run from their own tests so every
// backend is held to the same contract.
package todotest

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todolist/internal/todo"
)

// Factory opens a fresh, empty store. The suite closes it when the test ends.
type Factory func(t *testing.T) todo.Store

// Run executes every conformance test against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s todo.Store)
	}{
		{"FreshStoreIsEmpty", testFreshStoreIsEmpty},
		{"CreateAssignsIncreasingIDs", testCreateAssignsIncreasingIDs},
		{"CreateThenGet", testCreateThenGet},
		{"CreateDefaults", testCreateDefaults},
		{"CreateEmptyDescriptionLeavesCounter", testCreateEmptyDescriptionLeavesCounter},
		{"IDsNotReusedAfterDelete", testIDsNotReusedAfterDelete},
		{"UpdateEmptyPatchIsNoop", testUpdateEmptyPatchIsNoop},
		{"UpdateMergesFields", testUpdateMergesFields},
		{"UpdateMissing", testUpdateMissing},
		{"UpdateEmptyDescriptionLeavesEntry", testUpdateEmptyDescriptionLeavesEntry},
		{"DeleteThenGet", testDeleteThenGet},
		{"DeleteTwice", testDeleteTwice},
		{"ListScenario", testListScenario},
		{"ListBounds", testListBounds},
		{"ListWalksAllPages", testListWalksAllPages},
		{"ListCursorSurvivesDeletes", testListCursorSurvivesDeletes},
		{"ListIsReadOnly", testListIsReadOnly},
		{"Owner", testOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func mustCreate(t *testing.T, s todo.Store, desc string) todo.Entry {
	t.Helper()
	e, err := s.Create(context.Background(), desc, nil)
	require.NoError(t, err)
	return e
}

func ids(entries []todo.Entry) []uint64 {
	out := make([]uint64, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func testFreshStoreIsEmpty(t *testing.T, s todo.Store) {
	ctx := context.Background()

	next, err := s.PeekID(ctx)
	require.NoError(t, err)
	assert.Equal(t, todo.FirstID, next)

	entries, err := s.List(ctx, todo.Page{})
	require.NoError(t, err)
	assert.NotNil(t, entries, "List must return an empty slice, not nil")
	assert.Empty(t, entries)
}

func testCreateAssignsIncreasingIDs(t *testing.T, s todo.Store) {
	var last uint64
	for i := 0; i < 25; i++ {
		e := mustCreate(t, s, fmt.Sprintf("item %d", i))
		assert.Greater(t, e.ID, last)
		last = e.ID
	}
	assert.Equal(t, uint64(25), last)

	next, err := s.PeekID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(26), next)
}

func testCreateThenGet(t *testing.T, s todo.Store) {
	ctx := context.Background()

	created, err := s.Create(ctx, "write report", ptr(todo.PriorityMedium))
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func testCreateDefaults(t *testing.T, s todo.Store) {
	e := mustCreate(t, s, "a")
	assert.Equal(t, todo.FirstID, e.ID)
	assert.Equal(t, "a", e.Description)
	assert.Equal(t, todo.StatusToDo, e.Status)
	assert.Equal(t, todo.PriorityNone, e.Priority)
}

func testCreateEmptyDescriptionLeavesCounter(t *testing.T, s todo.Store) {
	ctx := context.Background()

	first := mustCreate(t, s, "a")

	_, err := s.Create(ctx, "", nil)
	require.Error(t, err)
	assert.True(t, todo.IsInvalidInput(err), "got %v", err)

	_, err = s.Create(ctx, "x", ptr(todo.Priority(200)))
	assert.True(t, todo.IsInvalidInput(err), "got %v", err)

	second := mustCreate(t, s, "b")
	assert.Equal(t, first.ID+1, second.ID, "failed creations must not advance the counter")

	entries, err := s.List(ctx, todo.Page{})
	require.NoError(t, err)
	assert.Equal(t, []uint64{first.ID, second.ID}, ids(entries))
}

func testIDsNotReusedAfterDelete(t *testing.T, s todo.Store) {
	ctx := context.Background()

	a := mustCreate(t, s, "a")
	b := mustCreate(t, s, "b")
	require.NoError(t, s.Delete(ctx, b.ID))
	require.NoError(t, s.Delete(ctx, a.ID))

	c := mustCreate(t, s, "c")
	assert.Equal(t, b.ID+1, c.ID)
}

func testUpdateEmptyPatchIsNoop(t *testing.T, s todo.Store) {
	ctx := context.Background()

	created, err := s.Create(ctx, "a", ptr(todo.PriorityLow))
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, todo.Patch{})
	require.NoError(t, err)
	assert.Equal(t, created, updated)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func testUpdateMergesFields(t *testing.T, s todo.Store) {
	ctx := context.Background()
	created := mustCreate(t, s, "a")

	updated, err := s.Update(ctx, created.ID, todo.Patch{Status: ptr(todo.StatusInProgress)})
	require.NoError(t, err)
	assert.Equal(t, todo.Entry{ID: created.ID, Description: "a", Status: todo.StatusInProgress, Priority: todo.PriorityNone}, updated)

	updated, err = s.Update(ctx, created.ID, todo.Patch{
		Description: ptr("a, revised"),
		Priority:    ptr(todo.PriorityHigh),
	})
	require.NoError(t, err)
	want := todo.Entry{ID: created.ID, Description: "a, revised", Status: todo.StatusInProgress, Priority: todo.PriorityHigh}
	assert.Equal(t, want, updated)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func testUpdateMissing(t *testing.T, s todo.Store) {
	_, err := s.Update(context.Background(), 999, todo.Patch{Description: ptr("x")})
	require.Error(t, err)
	assert.True(t, todo.IsNotFound(err), "got %v", err)
}

func testUpdateEmptyDescriptionLeavesEntry(t *testing.T, s todo.Store) {
	ctx := context.Background()
	created := mustCreate(t, s, "a")

	_, err := s.Update(ctx, created.ID, todo.Patch{
		Description: ptr(""),
		Status:      ptr(todo.StatusDone),
	})
	assert.True(t, todo.IsInvalidInput(err), "got %v", err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got, "a rejected update must not apply any field")
}

func testDeleteThenGet(t *testing.T, s todo.Store) {
	ctx := context.Background()
	e := mustCreate(t, s, "a")

	require.NoError(t, s.Delete(ctx, e.ID))

	_, err := s.Get(ctx, e.ID)
	assert.True(t, todo.IsNotFound(err), "got %v", err)
}

func testDeleteTwice(t *testing.T, s todo.Store) {
	ctx := context.Background()
	e := mustCreate(t, s, "a")

	require.NoError(t, s.Delete(ctx, e.ID))
	for i := 0; i < 2; i++ {
		err := s.Delete(ctx, e.ID)
		assert.True(t, todo.IsNotFound(err), "attempt %d: got %v", i, err)
	}

	err := s.Delete(ctx, 12345)
	assert.True(t, todo.IsNotFound(err))
}

func testListScenario(t *testing.T, s todo.Store) {
	ctx := context.Background()

	a := mustCreate(t, s, "a")
	b := mustCreate(t, s, "b")
	c := mustCreate(t, s, "c")
	require.Equal(t, []uint64{1, 2, 3}, []uint64{a.ID, b.ID, c.ID})

	require.NoError(t, s.Delete(ctx, 2))

	entries, err := s.List(ctx, todo.First(10))
	require.NoError(t, err)
	assert.Equal(t, []todo.Entry{a, c}, entries)

	entries, err = s.List(ctx, todo.After(1, 1))
	require.NoError(t, err)
	assert.Equal(t, []todo.Entry{c}, entries)

	entries, err = s.List(ctx, todo.After(3, 10))
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func testListBounds(t *testing.T, s todo.Store) {
	ctx := context.Background()
	for i := 0; i < 40; i++ {
		mustCreate(t, s, fmt.Sprintf("item %d", i))
	}

	entries, err := s.List(ctx, todo.Page{})
	require.NoError(t, err)
	assert.Len(t, entries, todo.DefaultLimit)
	assert.Equal(t, uint64(1), entries[0].ID)

	entries, err = s.List(ctx, todo.First(100))
	require.NoError(t, err)
	assert.Len(t, entries, todo.MaxLimit, "oversized limits are clamped")

	entries, err = s.List(ctx, todo.First(0))
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = s.List(ctx, todo.After(35, 30))
	require.NoError(t, err)
	assert.Equal(t, []uint64{36, 37, 38, 39, 40}, ids(entries))

	entries, err = s.List(ctx, todo.After(math.MaxUint64, 30))
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = s.List(ctx, todo.After(1000, 30))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func testListWalksAllPages(t *testing.T, s todo.Store) {
	ctx := context.Background()
	for i := 0; i < 23; i++ {
		mustCreate(t, s, fmt.Sprintf("item %d", i))
	}
	for _, id := range []uint64{2, 3, 10, 11, 12, 23} {
		require.NoError(t, s.Delete(ctx, id))
	}

	var seen []uint64
	page := todo.First(4)
	for {
		entries, err := s.List(ctx, page)
		require.NoError(t, err)
		require.LessOrEqual(t, len(entries), 4)
		if len(entries) == 0 {
			break
		}
		seen = append(seen, ids(entries)...)
		page = todo.After(entries[len(entries)-1].ID, 4)
	}

	want := []uint64{1, 4, 5, 6, 7, 8, 9, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22}
	assert.Equal(t, want, seen)
}

func testListCursorSurvivesDeletes(t *testing.T, s todo.Store) {
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		mustCreate(t, s, fmt.Sprintf("item %d", i))
	}

	first, err := s.List(ctx, todo.First(2))
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2}, ids(first))

	// Delete the cursor entry itself and the one right after it.
	require.NoError(t, s.Delete(ctx, 2))
	require.NoError(t, s.Delete(ctx, 3))

	next, err := s.List(ctx, todo.After(2, 2))
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 5}, ids(next))
}

func testListIsReadOnly(t *testing.T, s todo.Store) {
	ctx := context.Background()
	mustCreate(t, s, "a")
	mustCreate(t, s, "b")

	before, err := s.PeekID(ctx)
	require.NoError(t, err)

	first, err := s.List(ctx, todo.Page{})
	require.NoError(t, err)
	second, err := s.List(ctx, todo.Page{})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	after, err := s.PeekID(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func testOwner(t *testing.T, s todo.Store) {
	ctx := context.Background()

	_, ok, err := s.Owner(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	mustCreate(t, s, "kept")

	require.NoError(t, s.Instantiate(ctx, ptr("alice")))
	owner, ok, err := s.Owner(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", owner)

	require.NoError(t, s.Instantiate(ctx, nil))
	_, ok, err = s.Owner(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// Instantiate leaves entries and the counter alone.
	entries, err := s.List(ctx, todo.Page{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	next, err := s.PeekID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next)
}
