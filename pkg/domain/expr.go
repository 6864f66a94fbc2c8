package domain

import (
	"fmt"
	"strings"
)

// ExprOp is the tag of an Expr.
type ExprOp string

const (
	OpLit   ExprOp = "lit"
	OpVar   ExprOp = "var"
	OpField ExprOp = "field"
	OpEq    ExprOp = "eq"
	OpNot   ExprOp = "not"
)

// Expr is a small tagged expression. Only the forms nodes need are supported:
// literals, binding references, message payload fields, equality and negation.
type Expr struct {
	Op    ExprOp `json:"op"`
	Value any    `json:"value,omitempty"`
	Name  string `json:"name,omitempty"`
	Args  []Expr `json:"args,omitempty"`
}

// Lit returns a literal expression.
func Lit(v any) Expr { return Expr{Op: OpLit, Value: v} }

// Var returns a reference to a binding of the execution context.
func Var(name string) Expr { return Expr{Op: OpVar, Name: name} }

// Field returns a reference to a dot-separated path in the message payload.
func Field(path string) Expr { return Expr{Op: OpField, Name: path} }

// Eq compares two expressions for equality.
func Eq(a, b Expr) Expr { return Expr{Op: OpEq, Args: []Expr{a, b}} }

// Not negates the truthiness of an expression.
func Not(a Expr) Expr { return Expr{Op: OpNot, Args: []Expr{a}} }

// IsZero reports whether the expression was never set.
func (e Expr) IsZero() bool { return e.Op == "" }

func (e Expr) String() string {
	switch e.Op {
	case OpLit:
		if s, ok := e.Value.(string); ok {
			return fmt.Sprintf("%q", s)
		}
		return fmt.Sprintf("%v", e.Value)
	case OpVar:
		return e.Name
	case OpField:
		return "msg." + e.Name
	case OpEq:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = a.String()
		}
		return strings.Join(parts, " == ")
	case OpNot:
		if len(e.Args) == 1 {
			return "!" + e.Args[0].String()
		}
	}
	return "<invalid>"
}
