package query

import (
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Segments parses expr and, when it is a plain navigation path rooted at "_"
// (field selects and constant indexes only), returns its steps, e.g.
// `_.items[0]["a b"]` gives ["_", "items", "0", "a b"]. ok is false for
// anything else, including expressions that do not parse.
func (e *Evaluator) Segments(expr string) (segments []string, ok bool) {
	ast, issues := e.env.Parse(strings.TrimSpace(expr))
	if issues != nil && issues.Err() != nil {
		return nil, false
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, false
	}
	segments, ok = pathSegments(parsed.GetExpr())
	if !ok || len(segments) == 0 || segments[0] != Root {
		return nil, false
	}
	return segments, true
}

// IsPath reports whether expr only navigates into the document.
func (e *Evaluator) IsPath(expr string) bool {
	_, ok := e.Segments(expr)
	return ok
}

func pathSegments(expr *exprpb.Expr) ([]string, bool) {
	if expr == nil {
		return nil, false
	}
	switch expr.ExprKind.(type) {
	case *exprpb.Expr_IdentExpr:
		return []string{expr.GetIdentExpr().GetName()}, true

	case *exprpb.Expr_SelectExpr:
		sel := expr.GetSelectExpr()
		if sel.GetTestOnly() {
			return nil, false
		}
		base, ok := pathSegments(sel.GetOperand())
		if !ok {
			return nil, false
		}
		return append(base, sel.GetField()), true

	case *exprpb.Expr_CallExpr:
		call := expr.GetCallExpr()
		if call.GetFunction() != "_[_]" || len(call.GetArgs()) != 2 {
			return nil, false
		}
		key, ok := constKey(call.GetArgs()[1].GetConstExpr())
		if !ok {
			return nil, false
		}
		base, ok := pathSegments(call.GetArgs()[0])
		if !ok {
			return nil, false
		}
		return append(base, key), true
	}
	return nil, false
}

func constKey(c *exprpb.Constant) (string, bool) {
	if c == nil {
		return "", false
	}
	switch c.ConstantKind.(type) {
	case *exprpb.Constant_StringValue:
		return c.GetStringValue(), true
	case *exprpb.Constant_Int64Value:
		return strconv.FormatInt(c.GetInt64Value(), 10), true
	case *exprpb.Constant_Uint64Value:
		return strconv.FormatUint(c.GetUint64Value(), 10), true
	}
	return "", false
}
