// Package query evaluates CEL expressions against a JSON document. The
// document is bound to the variable "_", so "_.items[0]" selects the first
// element of the top-level "items" array.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/decls"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/jview/pkg/jsonvalue"
)

// Root is the variable the document is bound to.
const Root = "_"

// Evaluator compiles and evaluates CEL expressions.
type Evaluator struct {
	env *cel.Env
}

// New creates an Evaluator with the standard extension libraries. Extra
// options extend the environment.
func New(opts ...cel.EnvOption) (*Evaluator, error) {
	all := make([]cel.EnvOption, 0, 5+len(opts))
	all = append(all,
		cel.Variable(Root, cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	all = append(all, opts...)
	env, err := cel.NewEnv(all...)
	if err != nil {
		return nil, fmt.Errorf("query: create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Env returns the underlying CEL environment.
func (e *Evaluator) Env() *cel.Env { return e.env }

// Evaluate runs expr with v bound to "_" and converts the result back into a
// JSON value. Parts of the result taken from v keep their original key order
// and number text; maps built by the expression have sorted keys.
func (e *Evaluator) Evaluate(expr string, v *jsonvalue.Value) (*jsonvalue.Value, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("query: empty expression")
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("query: compile %q: %w", expr, issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("query: program %q: %w", expr, err)
	}

	conv := newConverter()
	out, _, err := prg.Eval(map[string]any{Root: conv.toNative(v)})
	if err != nil {
		return nil, fmt.Errorf("query: eval %q: %w", expr, err)
	}
	res, err := conv.fromCEL(out, 0)
	if err != nil {
		return nil, fmt.Errorf("query: result of %q: %w", expr, err)
	}
	return res, nil
}

// Functions lists the callable functions and macros of the environment as
// "name() - usage" lines, sorted.
func (e *Evaluator) Functions() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 100)
	add := func(entry string) {
		if !seen[entry] {
			seen[entry] = true
			out = append(out, entry)
		}
	}
	for _, fn := range e.env.Functions() {
		if isOperator(fn.Name()) {
			continue
		}
		for _, o := range fn.OverloadDecls() {
			add(fn.Name() + "() - " + usage(fn.Name(), o))
		}
	}
	for _, m := range e.env.Macros() {
		if isOperator(m.Function()) {
			continue
		}
		add(m.Function() + "() - macro")
	}
	sort.Strings(out)
	return out
}

func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") || strings.HasPrefix(name, "!") || strings.HasPrefix(name, "-") {
		return true
	}
	return strings.HasPrefix(name, "_") && (strings.HasSuffix(name, "_") || strings.HasSuffix(name, "]"))
}

func typeLabel(t *types.Type) string {
	if t == nil {
		return "any"
	}
	if name := t.DeclaredTypeName(); name != "" {
		return name
	}
	if name := t.TypeName(); name != "" {
		return name
	}
	return "any"
}

func usage(name string, o *decls.OverloadDecl) string {
	params := o.ArgTypes()
	labels := make([]string, len(params))
	for i, p := range params {
		labels[i] = typeLabel(p)
	}
	call := name + "(" + strings.Join(labels, ", ") + ")"
	if o.IsMemberFunction() && len(labels) > 0 {
		call = labels[0] + "." + name + "(" + strings.Join(labels[1:], ", ") + ")"
	}
	if o.ResultType() != nil {
		call += " -> " + typeLabel(o.ResultType())
	}
	return call
}
