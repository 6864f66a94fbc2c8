package compiler

import (
	"fmt"

	"github.com/aretw0/weft/pkg/domain"
)

// parseExpr turns a decoded YAML value into an expression.
// Scalars and lists are literals; single-key maps select an operator.
func parseExpr(v any) (domain.Expr, error) {
	m, ok := asMap(v)
	if !ok {
		return domain.Lit(v), nil
	}
	if len(m) != 1 {
		return domain.Expr{}, fmt.Errorf("%w: expression map must have exactly one key, got %d", domain.ErrInvalidExpr, len(m))
	}

	var (
		op  string
		arg any
	)
	for k, v := range m {
		op, arg = k, v
	}

	switch op {
	case "lit":
		return domain.Lit(arg), nil
	case "var":
		name, ok := arg.(string)
		if !ok || name == "" {
			return domain.Expr{}, fmt.Errorf("%w: var needs a name", domain.ErrInvalidExpr)
		}
		return domain.Var(name), nil
	case "field":
		path, ok := arg.(string)
		if !ok || path == "" {
			return domain.Expr{}, fmt.Errorf("%w: field needs a path", domain.ErrInvalidExpr)
		}
		return domain.Field(path), nil
	case "eq":
		args, ok := arg.([]any)
		if !ok || len(args) != 2 {
			return domain.Expr{}, fmt.Errorf("%w: eq needs a list of two operands", domain.ErrInvalidExpr)
		}
		a, err := parseExpr(args[0])
		if err != nil {
			return domain.Expr{}, err
		}
		b, err := parseExpr(args[1])
		if err != nil {
			return domain.Expr{}, err
		}
		return domain.Eq(a, b), nil
	case "not":
		a, err := parseExpr(arg)
		if err != nil {
			return domain.Expr{}, err
		}
		return domain.Not(a), nil
	default:
		return domain.Expr{}, fmt.Errorf("%w: unknown operator %q", domain.ErrInvalidExpr, op)
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}
