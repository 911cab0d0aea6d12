package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/todolist/internal/msg"
	"github.com/roach88/todolist/internal/todo"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n", event.Seq, event.Kind, compactJSON(event.Msg), event.Outcome)
		}
	}

	return buf.String()
}

// variantBody returns the body of a traced message, e.g. the object under
// "new_entry".
func variantBody(event TraceEvent) any {
	m, ok := event.Msg.(map[string]any)
	if !ok {
		return nil
	}
	return m[event.Method]
}

// assertTraceContains checks if the trace contains a message with the given
// method whose body matches args (subset match).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	want, err := normalize(assertion.Args)
	if err != nil {
		return fmt.Errorf("trace_contains: %w", err)
	}

	for _, event := range trace {
		if event.Method != assertion.Method {
			continue
		}
		if len(assertion.Args) == 0 || matchSubset(variantBody(event), want) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("%s with args %s", assertion.Method, compactJSON(assertion.Args)),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if methods appear in the specified order.
// Methods don't need to be consecutive (intervening messages are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(assertion.Methods) && event.Method == assertion.Methods[next] {
			next++
		}
	}

	if next < len(assertion.Methods) {
		return &AssertionError{
			Type:     AssertTraceOrder,
			Expected: fmt.Sprintf("methods in order: %v", assertion.Methods),
			Actual:   fmt.Sprintf("%s not found after %v", assertion.Methods[next], assertion.Methods[:next]),
			Trace:    trace,
		}
	}

	return nil
}

// assertTraceCount checks if the method appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Method == assertion.Method {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Method),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertFinalState checks the store after the last step: the full live
// entry set, the next id and the owner, each only if specified.
func assertFinalState(ctx context.Context, b StateReader, assertion Assertion) error {
	if assertion.Entries != nil {
		entries, err := allEntries(ctx, b)
		if err != nil {
			return fmt.Errorf("final_state: %w", err)
		}

		actual, err := normalize(toResponses(entries))
		if err != nil {
			return fmt.Errorf("final_state: %w", err)
		}
		want, err := normalize(assertion.Entries)
		if err != nil {
			return fmt.Errorf("final_state: %w", err)
		}

		if !matchSubset(actual, want) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("entries %s", compactJSON(want)),
				Actual:   fmt.Sprintf("entries %s", compactJSON(actual)),
			}
		}
	}

	if assertion.NextID != nil {
		next, err := b.PeekID(ctx)
		if err != nil {
			return fmt.Errorf("final_state: %w", err)
		}
		if next != *assertion.NextID {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("next_id %d", *assertion.NextID),
				Actual:   fmt.Sprintf("next_id %d", next),
			}
		}
	}

	if assertion.Owner != nil {
		owner, ok, err := b.Owner(ctx)
		if err != nil {
			return fmt.Errorf("final_state: %w", err)
		}
		if !ok || owner != *assertion.Owner {
			actual := "no owner"
			if ok {
				actual = fmt.Sprintf("owner %q", owner)
			}
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("owner %q", *assertion.Owner),
				Actual:   actual,
			}
		}
	}

	return nil
}

// allEntries walks every page of the store.
func allEntries(ctx context.Context, b StateReader) ([]todo.Entry, error) {
	var all []todo.Entry
	page := todo.First(todo.MaxLimit)
	for {
		entries, err := b.List(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
		if len(entries) < todo.MaxLimit {
			return all, nil
		}
		page = todo.After(entries[len(entries)-1].ID, todo.MaxLimit)
	}
}

func toResponses(entries []todo.Entry) []msg.EntryResponse {
	out := make([]msg.EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, msg.NewEntryResponse(e))
	}
	return out
}

// matchSubset reports whether actual contains expected.
// Maps match if every expected key matches; extra keys in actual are
// ignored. Slices match element-wise and must have equal length. Values
// must be JSON-normalized.
func matchSubset(actual, expected any) bool {
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for key, expVal := range exp {
			actVal, exists := act[key]
			if !exists || !matchSubset(actVal, expVal) {
				return false
			}
		}
		return true

	case []any:
		act, ok := actual.([]any)
		if !ok || len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if !matchSubset(act[i], exp[i]) {
				return false
			}
		}
		return true

	case json.Number:
		act, ok := actual.(json.Number)
		return ok && act.String() == exp.String()
	}

	return reflect.DeepEqual(actual, expected)
}

// StateReader is the read side of the store used by final_state.
// Satisfied by *engine.Engine and by any todo.Store.
type StateReader interface {
	List(ctx context.Context, page todo.Page) ([]todo.Entry, error)
	PeekID(ctx context.Context) (uint64, error)
	Owner(ctx context.Context) (string, bool, error)
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Backend StateReader
	Ctx     context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides store access for final_state assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			if actx == nil || actx.Backend == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires store context", i)
			} else {
				err = assertFinalState(actx.Ctx, actx.Backend, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
