package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return s
}

func TestRun_TestdataScenariosPass(t *testing.T) {
	for _, name := range []string{"crud_lifecycle", "list_pagination", "invalid_input", "not_found"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
			assert.NoError(t, result.Err(s.Name))
		})
	}
}

func TestRun_TraceShape(t *testing.T) {
	s := mustParse(t, `
name: shape
description: trace shape
owner: bob
steps:
  - execute: { new_entry: { description: a } }
  - execute: { delete_entry: { id: 7 } }
    expect: { error: not_found }
`)

	result, err := Run(s)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 3)

	inst := result.Trace[0]
	assert.Equal(t, int64(1), inst.Seq)
	assert.Equal(t, KindInstantiate, inst.Kind)
	assert.Equal(t, OutcomeOK, inst.Outcome)

	create := result.Trace[1]
	assert.Equal(t, int64(2), create.Seq)
	assert.Equal(t, "new_entry", create.Method)
	assert.Equal(t, OutcomeOK, create.Outcome)
	assert.Empty(t, create.Error)
	require.IsType(t, map[string]any{}, create.Result)

	del := result.Trace[2]
	assert.Equal(t, OutcomeError, del.Outcome)
	assert.Equal(t, ErrorNotFound, del.Error)
	assert.Nil(t, del.Result)
}

func TestRun_IsolatedStores(t *testing.T) {
	s := mustParse(t, `
name: isolated
description: every run starts empty
steps:
  - execute: { new_entry: { description: a } }
    expect:
      result: { id: 1 }
`)

	for i := 0; i < 2; i++ {
		result, err := Run(s)
		require.NoError(t, err)
		assert.True(t, result.Pass, "run %d: %v", i, result.Errors)
	}
}

func TestRun_ReportsUnexpectedError(t *testing.T) {
	s := mustParse(t, `
name: unexpected_error
description: a step without expect must succeed
steps:
  - execute: { delete_entry: { id: 1 } }
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected success, got error not_found")

	err = result.Err(s.Name)
	require.Error(t, err)
	assert.True(t, IsExpectationFailure(err))
	assert.Contains(t, err.Error(), "scenario unexpected_error failed")
}

func TestRun_ReportsUnexpectedSuccess(t *testing.T) {
	s := mustParse(t, `
name: unexpected_success
description: expected error that does not happen
steps:
  - query: { query_list: {} }
    expect: { error: not_found }
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected error not_found, got success")
}

func TestRun_ReportsWrongErrorCode(t *testing.T) {
	s := mustParse(t, `
name: wrong_code
description: invalid_input expected, not_found produced
steps:
  - execute: { delete_entry: { id: 3 } }
    expect: { error: invalid_input }
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected error invalid_input, got not_found")
}

func TestRun_ReportsResultMismatch(t *testing.T) {
	s := mustParse(t, `
name: mismatch
description: wrong id expected
steps:
  - execute: { new_entry: { description: a } }
    expect:
      result: { id: 2 }
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "result mismatch")
}

func TestRun_ReportsFailedAssertions(t *testing.T) {
	s := mustParse(t, `
name: failed_assertions
description: assertions that do not hold
steps:
  - execute: { new_entry: { description: a } }
assertions:
  - type: trace_count
    method: new_entry
    count: 2
  - type: final_state
    next_id: 7
  - type: final_state
    owner: carol
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "trace_count")
	assert.Contains(t, result.Errors[1], "next_id 7")
	assert.Contains(t, result.Errors[2], `owner "carol"`)
}

func TestRun_FinalStateWalksEveryPage(t *testing.T) {
	src := `
name: many_entries
description: final_state reads past the page cap
steps:
`
	for i := 0; i < 35; i++ {
		src += "  - execute: { new_entry: { description: x } }\n"
	}
	s := mustParse(t, src)

	want := make([]map[string]any, 0, 35)
	for i := 1; i <= 35; i++ {
		want = append(want, map[string]any{"id": i})
	}
	next := uint64(36)
	s.Assertions = []Assertion{{Type: AssertFinalState, Entries: want, NextID: &next}}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
