package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of messages with expectations.
// Each scenario runs against a fresh, empty store.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Owner is passed to the InstantiateMsg sent before the first step.
	Owner *string `yaml:"owner,omitempty"`

	// Steps are sent in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and store state.
	// Supported types: trace_contains, trace_order, trace_count, final_state
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step sends exactly one message: an ExecuteMsg or a QueryMsg, written in
// its JSON shape (e.g. {new_entry: {description: a}}).
type Step struct {
	Execute map[string]any `yaml:"execute,omitempty"`
	Query   map[string]any `yaml:"query,omitempty"`

	// Expect validates the outcome. If nil, the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Kind returns "execute" or "query".
func (s Step) Kind() string {
	if s.Execute != nil {
		return KindExecute
	}
	return KindQuery
}

// Message returns the message payload of the step.
func (s Step) Message() map[string]any {
	if s.Execute != nil {
		return s.Execute
	}
	return s.Query
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// OK states explicitly that the step succeeds. Implied when Error is empty.
	OK bool `yaml:"ok,omitempty"`

	// Result is matched against the decoded response.
	// This is a subset match: only specified fields are validated.
	Result any `yaml:"result,omitempty"`

	// Error is the expected failure: "not_found" or "invalid_input".
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the trace or the final store state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": a step with Method whose message matches Args
	// - "trace_order": Methods appear in order
	// - "trace_count": Method appears exactly Count times
	// - "final_state": the store holds exactly Entries, and NextID / Owner
	Type string `yaml:"type"`

	// Method is the message variant (used by trace_contains, trace_count).
	Method string `yaml:"method,omitempty"`

	// Args is matched against the variant body (used by trace_contains).
	// Subset match.
	Args map[string]any `yaml:"args,omitempty"`

	// Methods is the expected order (used by trace_order).
	Methods []string `yaml:"methods,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Entries are the live entries in id order (used by final_state).
	// Each element is a subset match; the count must match exactly.
	Entries []map[string]any `yaml:"entries,omitempty"`

	// NextID is the id the next creation would receive (used by final_state).
	NextID *uint64 `yaml:"next_id,omitempty"`

	// Owner is the recorded owner (used by final_state).
	Owner *string `yaml:"owner,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// Expected error names.
const (
	ErrorNotFound     = "not_found"
	ErrorInvalidInput = "invalid_input"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step Step) error {
	switch {
	case step.Execute == nil && step.Query == nil:
		return fmt.Errorf("steps[%d]: one of execute or query is required", index)
	case step.Execute != nil && step.Query != nil:
		return fmt.Errorf("steps[%d]: execute and query are mutually exclusive", index)
	}

	if step.Expect == nil {
		return nil
	}

	switch step.Expect.Error {
	case "":
	case ErrorNotFound, ErrorInvalidInput:
		if step.Expect.OK {
			return fmt.Errorf("steps[%d].expect: ok and error are mutually exclusive", index)
		}
		if step.Expect.Result != nil {
			return fmt.Errorf("steps[%d].expect: result and error are mutually exclusive", index)
		}
	default:
		return fmt.Errorf("steps[%d].expect: unknown error %q (want %s or %s)",
			index, step.Expect.Error, ErrorNotFound, ErrorInvalidInput)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Method == "" {
			return fmt.Errorf("assertions[%d]: method is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Methods) == 0 {
			return fmt.Errorf("assertions[%d]: methods list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Method == "" {
			return fmt.Errorf("assertions[%d]: method is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Entries == nil && a.NextID == nil && a.Owner == nil {
			return fmt.Errorf("assertions[%d]: final_state needs entries, next_id or owner", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
