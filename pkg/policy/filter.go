// Package policy evaluates user-supplied CEL expressions over query results.
package policy

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/DrSkyle/chainpath/pkg/graph"
)

// ErrNotBoolean is returned when a filter does not produce a bool.
var ErrNotBoolean = errors.New("filter must evaluate to a bool")

// ErrEvaluation wraps runtime failures such as an out-of-range index.
var ErrEvaluation = errors.New("filter evaluation failed")

// PathFilter is a compiled CEL predicate over one path. Variables:
//
//	path   list(string)  the node sequence
//	degree int           number of edges
//	from   string        first node
//	to     string        last node
//
// Example: "degree <= 3 && !('Mallory' in path)".
type PathFilter struct {
	expr string
	prg  cel.Program
}

func newEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("path", cel.ListType(cel.StringType)),
		cel.Variable("degree", cel.IntType),
		cel.Variable("from", cel.StringType),
		cel.Variable("to", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return env, nil
}

// Compile parses and type-checks expr.
func Compile(expr string) (*PathFilter, error) {
	env, err := newEnv()
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("filter compilation error: %w", issues.Err())
	}
	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w, got %s", ErrNotBoolean, out)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("filter program creation error: %w", err)
	}
	return &PathFilter{expr: expr, prg: prg}, nil
}

// String returns the source expression, or "" for a nil filter.
func (f *PathFilter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match reports whether p satisfies the filter.
func (f *PathFilter) Match(p graph.Path) (bool, error) {
	vars := map[string]interface{}{
		"path":   []string(p),
		"degree": int64(p.Degree()),
		"from":   "",
		"to":     "",
	}
	if len(p) > 0 {
		vars["from"] = p[0]
		vars["to"] = p[len(p)-1]
	}

	out, _, err := f.prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}
	match, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w, got %T", ErrNotBoolean, out.Value())
	}
	return match, nil
}

// Apply keeps the paths that match. A nil filter keeps everything.
func (f *PathFilter) Apply(paths []graph.Path) ([]graph.Path, error) {
	if f == nil {
		return paths, nil
	}
	kept := make([]graph.Path, 0, len(paths))
	for _, p := range paths {
		ok, err := f.Match(p)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, p)
		}
	}
	return kept, nil
}
