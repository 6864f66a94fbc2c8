package domain

import "fmt"

// StmtID is the index of a statement inside its Graph arena.
type StmtID int

// NoStmt marks a node without a parent statement.
const NoStmt StmtID = -1

// StmtKind is the language construct a statement represents.
type StmtKind string

const (
	StmtAssign StmtKind = "assign"
	StmtReply  StmtKind = "reply"
	StmtIf     StmtKind = "if"
)

// Position locates a statement in its source program.
type Position struct {
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
	Index int    `json:"index" yaml:"index"`
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("statement %d", p.Index)
	}
	return fmt.Sprintf("%s: statement %d", p.File, p.Index)
}

// Statement is the higher-level construct that nodes point back to.
type Statement struct {
	ID   StmtID   `json:"id"`
	Kind StmtKind `json:"kind"`

	// Target is the binding written by an assign statement.
	Target string `json:"target,omitempty"`
	// Value is the assigned value (assign) or the reply value (reply).
	Value Expr `json:"value,omitempty"`
	// Cond is the condition of an if statement.
	Cond Expr `json:"cond,omitempty"`

	Pos Position `json:"pos"`
}

func (s Statement) String() string {
	switch s.Kind {
	case StmtAssign:
		return fmt.Sprintf("%s := %s", s.Target, s.Value)
	case StmtReply:
		return fmt.Sprintf("reply %s", s.Value)
	case StmtIf:
		return fmt.Sprintf("if %s", s.Cond)
	default:
		return string(s.Kind)
	}
}
