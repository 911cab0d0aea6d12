package kvstore

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todolist/internal/todo"
)

func TestEntryKey_ByteOrderMatchesIDOrder(t *testing.T) {
	ids := []uint64{0, 1, 2, 255, 256, 1 << 32, math.MaxUint64 - 1, math.MaxUint64}
	for i := 1; i < len(ids); i++ {
		assert.Equal(t, -1, bytes.Compare(entryKey(ids[i-1]), entryKey(ids[i])),
			"key(%d) must sort before key(%d)", ids[i-1], ids[i])
	}
}

func TestEntryKey_RoundTrip(t *testing.T) {
	for _, id := range []uint64{1, 42, math.MaxUint64} {
		got, err := parseEntryKey(entryKey(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}

	_, err := parseEntryKey([]byte("m/next_id"))
	assert.Error(t, err)
}

func TestEntryUpperBound(t *testing.T) {
	upper := entryUpperBound()
	assert.Equal(t, -1, bytes.Compare(entryKey(math.MaxUint64), upper))
	assert.Equal(t, 1, bytes.Compare(keyNextID, upper), "meta keys sort after entries")
}

func TestDecodeEntry_Rejects(t *testing.T) {
	_, err := decodeEntry(1, []byte{0, 0})
	assert.Error(t, err, "description must be non-empty")

	_, err = decodeEntry(1, []byte{9, 0, 'x'})
	assert.Error(t, err, "unknown status byte")
}

func TestDecodeEntry_RoundTrip(t *testing.T) {
	e := todo.Entry{ID: 5, Description: "ship it", Status: todo.StatusDone, Priority: todo.PriorityHigh}
	got, err := decodeEntry(5, encodeEntry(e))
	require.NoError(t, err)
	assert.Equal(t, e, got)
}
