package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/todolist/internal/engine"
	"github.com/roach88/todolist/internal/msg"
	"github.com/roach88/todolist/internal/store"
	"github.com/roach88/todolist/internal/todo"
)

// Harness is the scenario execution context: one fresh store, one engine
// in front of it and one message handler in front of the engine.
type Harness struct {
	engine  *engine.Engine
	handler *msg.Handler
	clock   *engine.Clock
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. Request
// ids come from a sequence named after the scenario and trace seq numbers
// from a fresh clock, so a scenario always produces the same trace.
//
// Execution flow:
// 1. Create fresh in-memory database and start the engine
// 2. Send the InstantiateMsg
// 3. Send each step, checking its expect clause
// 4. Evaluate assertions
//
// A returned error means the scenario could not be executed (storage
// failure); expectation mismatches are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(st, engine.NewSequenceGenerator(scenario.Name), engine.WithLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = eng.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	handler, err := msg.NewHandler(eng)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		engine:  eng,
		handler: handler,
		clock:   engine.NewClock(),
		logger:  logger,
	}

	result := NewResult()

	if err := h.instantiate(ctx, scenario.Owner, result); err != nil {
		return nil, fmt.Errorf("failed to instantiate: %w", err)
	}

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("failed to execute step %d: %w", i, err)
		}
	}

	actx := &AssertionContext{Backend: eng, Ctx: ctx}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

func (h *Harness) instantiate(ctx context.Context, owner *string, result *Result) error {
	raw, err := json.Marshal(msg.InstantiateMsg{Owner: owner})
	if err != nil {
		return err
	}

	out, err := h.handler.Instantiate(ctx, raw)
	if err != nil {
		return err
	}

	ev, err := h.traceEvent(KindInstantiate, msg.MethodInstantiate, raw, out, nil)
	if err != nil {
		return err
	}
	result.AddTrace(ev)
	return nil
}

// executeStep sends one step and checks its expectation.
// Domain failures are outcomes, not errors; anything else aborts the run.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	raw, err := json.Marshal(step.Message())
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	var out []byte
	if step.Kind() == KindExecute {
		out, err = h.handler.Execute(ctx, raw)
	} else {
		out, err = h.handler.Query(ctx, raw)
	}
	if err != nil && todo.CodeOf(err) == "" {
		return err
	}

	ev, traceErr := h.traceEvent(step.Kind(), methodOf(step.Message()), raw, out, err)
	if traceErr != nil {
		return traceErr
	}
	result.AddTrace(ev)

	h.logger.Debug("step executed",
		"index", index,
		"method", ev.Method,
		"outcome", ev.Outcome,
	)

	for _, e := range checkExpect(index, step.Expect, ev) {
		result.AddError(e)
	}
	return nil
}

// traceEvent builds a trace event from the raw request and response.
func (h *Harness) traceEvent(kind, method string, raw, out []byte, stepErr error) (TraceEvent, error) {
	msgVal, err := decodeJSON(raw)
	if err != nil {
		return TraceEvent{}, fmt.Errorf("decode message: %w", err)
	}

	ev := TraceEvent{
		Seq:    h.clock.Next(),
		Kind:   kind,
		Method: method,
		Msg:    msgVal,
	}

	if stepErr != nil {
		ev.Outcome = OutcomeError
		ev.Error = errorName(stepErr)
		return ev, nil
	}

	ev.Outcome = OutcomeOK
	if ev.Result, err = decodeJSON(out); err != nil {
		return TraceEvent{}, fmt.Errorf("decode response: %w", err)
	}
	return ev, nil
}

// checkExpect compares a step outcome against its expect clause.
func checkExpect(index int, exp *Expect, ev TraceEvent) []string {
	var errs []string

	wantErr := ""
	if exp != nil {
		wantErr = exp.Error
	}

	switch {
	case wantErr == "" && ev.Outcome == OutcomeError:
		errs = append(errs, fmt.Sprintf("steps[%d] %s: expected success, got error %s", index, ev.Method, ev.Error))
	case wantErr != "" && ev.Outcome == OutcomeOK:
		errs = append(errs, fmt.Sprintf("steps[%d] %s: expected error %s, got success", index, ev.Method, wantErr))
	case wantErr != "" && wantErr != ev.Error:
		errs = append(errs, fmt.Sprintf("steps[%d] %s: expected error %s, got %s", index, ev.Method, wantErr, ev.Error))
	}

	if exp != nil && exp.Result != nil && ev.Outcome == OutcomeOK {
		want, err := normalize(exp.Result)
		if err != nil {
			errs = append(errs, fmt.Sprintf("steps[%d].expect.result: %v", index, err))
		} else if !matchSubset(ev.Result, want) {
			errs = append(errs, fmt.Sprintf("steps[%d] %s: result mismatch\n  Expected (subset): %s\n  Actual: %s",
				index, ev.Method, compactJSON(want), compactJSON(ev.Result)))
		}
	}

	return errs
}

// errorName maps a domain error to its scenario name, e.g. "not_found".
func errorName(err error) string {
	return strings.ToLower(string(todo.CodeOf(err)))
}

// methodOf returns the variant name of a message: its single top-level key.
func methodOf(m map[string]any) string {
	if len(m) != 1 {
		return ""
	}
	for k := range m {
		return k
	}
	return ""
}

// decodeJSON decodes b keeping numbers as json.Number.
func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// normalize round-trips v through JSON so YAML values compare equal to
// decoded responses.
func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeJSON(b)
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// IsExpectationFailure reports whether err came from a failed scenario
// rather than a failure to run it.
func IsExpectationFailure(err error) bool {
	var fe *FailureError
	return errors.As(err, &fe)
}

// FailureError summarizes a failed Result.
type FailureError struct {
	Scenario string
	Errors   []string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("scenario %s failed:\n  %s", e.Scenario, strings.Join(e.Errors, "\n  "))
}

// Err returns a *FailureError if r did not pass, else nil.
func (r *Result) Err(scenario string) error {
	if r.Pass {
		return nil
	}
	return &FailureError{Scenario: scenario, Errors: r.Errors}
}
