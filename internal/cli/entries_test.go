package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todolist/internal/msg"
	"github.com/roach88/todolist/internal/todo"
)

// response is CLIResponse with a typed payload.
type response[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
}

// cliEnv runs commands against one database.
type cliEnv struct {
	t       *testing.T
	db      string
	backend string
	stdin   string
}

func newEnv(t *testing.T, backend string) *cliEnv {
	t.Helper()
	name := "todo.db"
	if backend == BackendPebble {
		name = "todo-kv"
	}
	return &cliEnv{t: t, db: filepath.Join(t.TempDir(), name), backend: backend}
}

// run executes the root command and returns stdout.
func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(e.stdin))
	cmd.SetArgs(append([]string{"--db", e.db, "--backend", e.backend}, args...))

	err := cmd.Execute()
	return out.String(), err
}

// runJSON executes the root command with --format json and decodes stdout.
func runJSON[T any](e *cliEnv, args ...string) (response[T], error) {
	e.t.Helper()

	out, err := e.run(append([]string{"--format", "json"}, args...)...)

	var resp response[T]
	require.NoError(e.t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp, err
}

func forEachBackend(t *testing.T, fn func(t *testing.T, env *cliEnv)) {
	for _, backend := range ValidBackends {
		t.Run(backend, func(t *testing.T) {
			fn(t, newEnv(t, backend))
		})
	}
}

func TestEntries_Lifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, env *cliEnv) {
		created, err := runJSON[msg.ExecuteResponse](env, "add", "buy milk", "--priority", "High")
		require.NoError(t, err)
		assert.Equal(t, "ok", created.Status)
		assert.Equal(t, msg.MethodNewEntry, created.Data.Method)
		assert.Equal(t, uint64(1), created.Data.ID)
		require.NotNil(t, created.Data.Entry)
		assert.Equal(t, todo.StatusToDo, created.Data.Entry.Status)
		assert.Equal(t, todo.PriorityHigh, created.Data.Entry.Priority)

		got, err := runJSON[msg.EntryResponse](env, "get", "1")
		require.NoError(t, err)
		assert.Equal(t, *created.Data.Entry, got.Data)

		updated, err := runJSON[msg.ExecuteResponse](env, "update", "1", "--status", "Done")
		require.NoError(t, err)
		require.NotNil(t, updated.Data.Entry)
		assert.Equal(t, msg.EntryResponse{
			ID:          1,
			Description: "buy milk",
			Status:      todo.StatusDone,
			Priority:    todo.PriorityHigh,
		}, *updated.Data.Entry)

		deleted, err := runJSON[msg.ExecuteResponse](env, "delete", "1")
		require.NoError(t, err)
		assert.Equal(t, msg.MethodDeleteEntry, deleted.Data.Method)
		assert.Nil(t, deleted.Data.Entry)

		missing, err := runJSON[msg.EntryResponse](env, "get", "1")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Equal(t, "error", missing.Status)
		require.NotNil(t, missing.Error)
		assert.Equal(t, string(todo.CodeNotFound), missing.Error.Code)
	})
}

func TestEntries_IDsSurviveDeletionAndRestart(t *testing.T) {
	forEachBackend(t, func(t *testing.T, env *cliEnv) {
		for _, d := range []string{"a", "b", "c"} {
			_, err := env.run("add", d)
			require.NoError(t, err)
		}
		_, err := env.run("delete", "2")
		require.NoError(t, err)

		list, err := runJSON[msg.ListResponse](env, "list")
		require.NoError(t, err)
		require.Len(t, list.Data.Entries, 2)
		assert.Equal(t, uint64(1), list.Data.Entries[0].ID)
		assert.Equal(t, uint64(3), list.Data.Entries[1].ID)

		page, err := runJSON[msg.ListResponse](env, "list", "--start-after", "1", "--limit", "1")
		require.NoError(t, err)
		require.Len(t, page.Data.Entries, 1)
		assert.Equal(t, uint64(3), page.Data.Entries[0].ID)

		empty, err := runJSON[msg.ListResponse](env, "list", "--start-after", "3")
		require.NoError(t, err)
		assert.NotNil(t, empty.Data.Entries)
		assert.Empty(t, empty.Data.Entries)

		created, err := runJSON[msg.ExecuteResponse](env, "add", "d")
		require.NoError(t, err)
		assert.Equal(t, uint64(4), created.Data.ID)
	})
}

func TestEntries_Rejections(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code todo.ErrorCode
	}{
		{"empty_description", []string{"add", ""}, todo.CodeInvalidInput},
		{"blank_description", []string{"add", "   "}, todo.CodeInvalidInput},
		{"unknown_priority", []string{"add", "x", "--priority", "Urgent"}, todo.CodeInvalidInput},
		{"unknown_status", []string{"update", "1", "--status", "Pending"}, todo.CodeInvalidInput},
		{"bad_id", []string{"get", "abc"}, todo.CodeInvalidInput},
		{"update_missing", []string{"update", "999", "--description", "x"}, todo.CodeNotFound},
		{"delete_missing", []string{"delete", "999"}, todo.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, BackendSQLite)

			resp, err := runJSON[any](env, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.True(t, IsReported(err))
			require.NotNil(t, resp.Error)
			assert.Equal(t, string(tt.code), resp.Error.Code)
		})
	}
}

func TestEntries_RejectedCreateDoesNotConsumeID(t *testing.T) {
	env := newEnv(t, BackendSQLite)

	_, err := env.run("add", "")
	require.Error(t, err)

	created, err := runJSON[msg.ExecuteResponse](env, "add", "real")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), created.Data.ID)
}

func TestEntries_TextOutput(t *testing.T) {
	env := newEnv(t, BackendSQLite)

	out, err := env.run("add", "buy milk")
	require.NoError(t, err)
	assert.Equal(t, "Created entry 1\n", out)

	out, err = env.run("get", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "buy milk")
	assert.Contains(t, out, "ToDo")

	out, err = env.run("get", "5")
	require.Error(t, err)
	assert.Contains(t, out, "Error [NOT_FOUND]")
	assert.Contains(t, out, "id=5")

	_, err = env.run("delete", "1")
	require.NoError(t, err)

	out, err = env.run("list")
	require.NoError(t, err)
	assert.Equal(t, "No entries.\n", out)
}

func TestInitAndInfo(t *testing.T) {
	forEachBackend(t, func(t *testing.T, env *cliEnv) {
		info, err := runJSON[infoView](env, "info")
		require.NoError(t, err)
		assert.Nil(t, info.Data.Owner)
		assert.Equal(t, todo.FirstID, info.Data.NextID)
		assert.Equal(t, env.backend, info.Data.Backend)

		_, err = env.run("add", "a")
		require.NoError(t, err)

		out, err := env.run("init", "--owner", "alice")
		require.NoError(t, err)
		assert.Equal(t, "Initialized (owner: alice)\n", out)

		info, err = runJSON[infoView](env, "info")
		require.NoError(t, err)
		require.NotNil(t, info.Data.Owner)
		assert.Equal(t, "alice", *info.Data.Owner)
		assert.Equal(t, uint64(2), info.Data.NextID, "init must not reset the counter")

		_, err = env.run("init")
		require.NoError(t, err)

		info, err = runJSON[infoView](env, "info")
		require.NoError(t, err)
		assert.Nil(t, info.Data.Owner)
	})
}

func TestOpenFailureIsCommandError(t *testing.T) {
	env := &cliEnv{t: t, db: "/nonexistent/dir/todo.db", backend: BackendSQLite}

	_, err := env.run("list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.False(t, IsReported(err))
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestPebbleLogsFollowVerbose(t *testing.T) {
	env := newEnv(t, BackendPebble)

	runWithStderr := func(args ...string) string {
		cmd := NewRootCommand()
		errOut := &bytes.Buffer{}
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(errOut)
		cmd.SetArgs(append([]string{"--db", env.db, "--backend", env.backend}, args...))
		require.NoError(t, cmd.Execute())
		return errOut.String()
	}

	runWithStderr("add", "a")

	quiet := runWithStderr("add", "b")
	assert.NotContains(t, quiet, "component=pebble")

	verbose := runWithStderr("--verbose", "add", "c")
	assert.Contains(t, verbose, "component=pebble")
	assert.Contains(t, verbose, "replayed")
}
