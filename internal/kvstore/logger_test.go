package kvstore

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeAndReopen leaves an unflushed WAL behind so the next Open replays it.
func writeAndReopen(t *testing.T, logger *slog.Logger) {
	t.Helper()
	dir := t.TempDir()

	s1, err := Open(dir, quiet())
	require.NoError(t, err)
	_, err = s1.Create(context.Background(), "a", nil)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(dir, WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestWithLogger_InfoLinesAtDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	writeAndReopen(t, logger)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "component=pebble")
	assert.Contains(t, out, "replayed")
}

func TestWithLogger_QuietAtInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	writeAndReopen(t, logger)

	assert.Empty(t, buf.String())
}
