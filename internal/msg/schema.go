package msg

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/todolist/internal/todo"
)

//go:embed schema.cue
var schemaCUE string

// Definition names in schema.cue.
const (
	DefInstantiate = "#InstantiateMsg"
	DefExecute     = "#ExecuteMsg"
	DefQuery       = "#QueryMsg"
)

// variant is one arm of a single-key message union.
type variant struct {
	label string
	def   string
}

// unions lists the arms of each union definition, in schema order.
var unions = map[string][]variant{
	DefExecute: {
		{"new_entry", "#NewEntry"},
		{"update_entry", "#UpdateEntry"},
		{"delete_entry", "#DeleteEntry"},
	},
	DefQuery: {
		{"query_entry", "#QueryEntry"},
		{"query_list", "#QueryList"},
	},
}

// Schema validates raw message bytes against schema.cue.
//
// A cue.Context is not safe for concurrent use, so Validate serializes
// callers.
type Schema struct {
	mu   sync.Mutex
	ctx  *cue.Context
	root cue.Value
}

// NewSchema compiles the embedded schema.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile message schema: %w", err)
	}

	for _, def := range []string{DefInstantiate, DefExecute, DefQuery} {
		if !root.LookupPath(cue.ParsePath(def)).Exists() {
			return nil, fmt.Errorf("compile message schema: %s not defined", def)
		}
	}

	return &Schema{ctx: ctx, root: root}, nil
}

// Validate checks that data is a JSON document matching def.
// Any mismatch is returned as a todo invalid-input error.
func (s *Schema) Validate(def string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schema := s.root.LookupPath(cue.ParsePath(def))
	if !schema.Exists() {
		return fmt.Errorf("unknown message definition %q", def)
	}

	expr, err := cuejson.Extract("message.json", data)
	if err != nil {
		return todo.NewInvalidInputError(fmt.Sprintf("malformed JSON: %s", describeCUEError(err, "")))
	}
	msg := s.ctx.BuildExpr(expr)
	name := def[1:]

	if arms, ok := unions[def]; ok {
		if err := s.validateArm(name, arms, msg); err != nil {
			return err
		}
	}

	v := schema.Unify(msg)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return todo.NewInvalidInputError(fmt.Sprintf("%s: %s", name, describeCUEError(err, "")))
	}

	return nil
}

// validateArm checks that msg has exactly one known key and validates its
// value against that arm's definition, so errors name the offending field.
// A msg that is not an object is left to the whole-definition check.
func (s *Schema) validateArm(name string, arms []variant, msg cue.Value) error {
	iter, err := msg.Fields()
	if err != nil {
		return nil
	}

	var (
		labels []string
		value  cue.Value
	)
	for iter.Next() {
		labels = append(labels, iter.Selector().Unquoted())
		value = iter.Value()
	}

	known := make([]string, len(arms))
	for i, arm := range arms {
		known[i] = arm.label
	}
	if len(labels) != 1 {
		return todo.NewInvalidInputError(fmt.Sprintf("%s: expected exactly one of %s, got %d keys",
			name, strings.Join(known, ", "), len(labels)))
	}

	for _, arm := range arms {
		if arm.label != labels[0] {
			continue
		}
		v := s.root.LookupPath(cue.ParsePath(arm.def)).Unify(value)
		if err := v.Validate(cue.Concrete(true)); err != nil {
			return todo.NewInvalidInputError(fmt.Sprintf("%s: %s", name, describeCUEError(err, arm.label)))
		}
		return nil
	}

	return todo.NewInvalidInputError(fmt.Sprintf("%s: unknown variant %q, expected one of %s",
		name, labels[0], strings.Join(known, ", ")))
}

// describeCUEError renders the error with the deepest path in a CUE error
// list as "path: message". Definition names are dropped from the path and
// prefix, when set, leads it.
func describeCUEError(err error, prefix string) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}

	deepest := errs[0]
	for _, e := range errs[1:] {
		if len(e.Path()) > len(deepest.Path()) {
			deepest = e
		}
	}

	var path []string
	if prefix != "" {
		path = append(path, prefix)
	}
	for _, p := range deepest.Path() {
		if strings.HasPrefix(p, "#") || (len(path) == 1 && p == prefix) {
			continue
		}
		path = append(path, p)
	}

	format, args := deepest.Msg()
	msg := fmt.Sprintf(format, args...)
	if len(path) == 0 {
		return msg
	}
	return strings.Join(path, ".") + ": " + msg
}
