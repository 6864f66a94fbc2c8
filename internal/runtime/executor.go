package runtime

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aretw0/weft/pkg/domain"
)

// Executor is the stateless visitor that carries the logic of every node kind.
// A single instance is shared by all workers.
type Executor struct{}

var _ domain.Visitor = Executor{}

// VisitAssign commits the statement's value to its target binding.
func (x Executor) VisitAssign(ctx context.Context, ectx *domain.ExecutionContext, n *domain.AssignEndNode) error {
	stmt, err := statementOf(ectx, n, domain.StmtAssign)
	if err != nil {
		return err
	}
	v, err := x.Eval(ectx, stmt.Value)
	if err != nil {
		return fmt.Errorf("assign %s: %w", stmt.Target, err)
	}
	return ectx.Bind(stmt.Target, v)
}

// VisitReply records the value delivered back to the caller.
func (x Executor) VisitReply(ctx context.Context, ectx *domain.ExecutionContext, n *domain.ReplyNode) error {
	stmt, err := statementOf(ectx, n, domain.StmtReply)
	if err != nil {
		return err
	}
	v, err := x.Eval(ectx, stmt.Value)
	if err != nil {
		return fmt.Errorf("reply: %w", err)
	}
	ectx.SetReply(v)
	return nil
}

// VisitBranch evaluates the condition and records the decision the node's
// Successor follows.
func (x Executor) VisitBranch(ctx context.Context, ectx *domain.ExecutionContext, n *domain.BranchNode) error {
	stmt, err := statementOf(ectx, n, domain.StmtIf)
	if err != nil {
		return err
	}
	v, err := x.Eval(ectx, stmt.Cond)
	if err != nil {
		return fmt.Errorf("condition: %w", err)
	}
	ectx.Decide(Truthy(v))
	return nil
}

func statementOf(ectx *domain.ExecutionContext, n domain.Node, want domain.StmtKind) (domain.Statement, error) {
	g := ectx.Graph()
	if g == nil {
		return domain.Statement{}, fmt.Errorf("%w: no graph", domain.ErrInvalidGraph)
	}
	stmt, ok := g.Statement(n.Parent())
	if !ok {
		return domain.Statement{}, fmt.Errorf("%w: statement %d not found", domain.ErrInvalidGraph, n.Parent())
	}
	if stmt.Kind != want {
		return domain.Statement{}, fmt.Errorf("%w: %s node attached to %s statement", domain.ErrInvalidGraph, n.Kind(), stmt.Kind)
	}
	return stmt, nil
}

// Eval evaluates an expression against the context.
func (x Executor) Eval(ectx *domain.ExecutionContext, e domain.Expr) (any, error) {
	switch e.Op {
	case domain.OpLit:
		return e.Value, nil
	case domain.OpVar:
		v, ok := ectx.Lookup(e.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnboundVariable, e.Name)
		}
		return v, nil
	case domain.OpField:
		v, ok := ectx.Message().Lookup(e.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingField, e.Name)
		}
		return v, nil
	case domain.OpEq:
		if len(e.Args) != 2 {
			return nil, fmt.Errorf("%w: eq takes 2 operands, got %d", domain.ErrInvalidExpr, len(e.Args))
		}
		a, err := x.Eval(ectx, e.Args[0])
		if err != nil {
			return nil, err
		}
		b, err := x.Eval(ectx, e.Args[1])
		if err != nil {
			return nil, err
		}
		return Equal(a, b), nil
	case domain.OpNot:
		if len(e.Args) != 1 {
			return nil, fmt.Errorf("%w: not takes 1 operand, got %d", domain.ErrInvalidExpr, len(e.Args))
		}
		v, err := x.Eval(ectx, e.Args[0])
		if err != nil {
			return nil, err
		}
		return !Truthy(v), nil
	case "":
		return nil, fmt.Errorf("%w: empty expression", domain.ErrInvalidExpr)
	default:
		return nil, fmt.Errorf("%w: unknown op %q", domain.ErrInvalidExpr, e.Op)
	}
}

// Truthy follows the usual scripting rules: nil, false, zero numbers and
// empty strings are false.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	return true
}

// Equal compares values, treating every numeric type as a number.
func Equal(a, b any) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
