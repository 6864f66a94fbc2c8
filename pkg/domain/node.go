package domain

import "context"

// NodeID is the index of a node inside its Graph arena.
type NodeID int

// NoNode marks an absent successor. A node whose successor is NoNode is terminal.
const NoNode NodeID = -1

// Kind identifies the concrete node type.
type Kind string

const (
	// KindAssign ends an assignment statement and commits its value to a binding.
	KindAssign Kind = "assign"
	// KindReply sets the value delivered back to the caller.
	KindReply Kind = "reply"
	// KindBranch picks one of two successors from a condition.
	KindBranch Kind = "branch"
)

// Node is one executable step of a program.
//
// A node never executes logic itself: Accept forwards to the Visitor method
// for its kind, and the walk advances to whatever Successor returns.
type Node interface {
	ID() NodeID
	Kind() Kind

	// Parent is the statement this node belongs to, as an index into the
	// Graph's statement arena. It is fixed at construction.
	Parent() StmtID

	// Successor returns the next node to run, or NoNode when the walk ends here.
	Successor(ectx *ExecutionContext) NodeID

	Accept(ctx context.Context, v Visitor, ectx *ExecutionContext) error
}

// Visitor holds the execution logic for every node kind.
// Implementations must not keep per-request state: one instance is shared by all workers.
type Visitor interface {
	VisitAssign(ctx context.Context, ectx *ExecutionContext, n *AssignEndNode) error
	VisitReply(ctx context.Context, ectx *ExecutionContext, n *ReplyNode) error
	VisitBranch(ctx context.Context, ectx *ExecutionContext, n *BranchNode) error
}

type linked struct {
	id     NodeID
	parent StmtID
	next   NodeID
}

func (l linked) ID() NodeID     { return l.id }
func (l linked) Parent() StmtID { return l.parent }

// AssignEndNode represents the end of an assignment statement, where the
// actual assignment happens.
type AssignEndNode struct {
	linked
}

// NewAssignEndNode creates the end node of the given assignment statement.
func NewAssignEndNode(id NodeID, stmt StmtID, next NodeID) *AssignEndNode {
	return &AssignEndNode{linked{id: id, parent: stmt, next: next}}
}

func (n *AssignEndNode) Kind() Kind { return KindAssign }

func (n *AssignEndNode) Successor(*ExecutionContext) NodeID { return n.next }

func (n *AssignEndNode) Accept(ctx context.Context, v Visitor, ectx *ExecutionContext) error {
	return v.VisitAssign(ctx, ectx, n)
}

// ReplyNode stores the reply of the request.
type ReplyNode struct {
	linked
}

// NewReplyNode creates the node of the given reply statement.
func NewReplyNode(id NodeID, stmt StmtID, next NodeID) *ReplyNode {
	return &ReplyNode{linked{id: id, parent: stmt, next: next}}
}

func (n *ReplyNode) Kind() Kind { return KindReply }

func (n *ReplyNode) Successor(*ExecutionContext) NodeID { return n.next }

func (n *ReplyNode) Accept(ctx context.Context, v Visitor, ectx *ExecutionContext) error {
	return v.VisitReply(ctx, ectx, n)
}

// BranchNode evaluates the condition of an if statement. The visitor records
// the outcome on the context and Successor follows it.
type BranchNode struct {
	id     NodeID
	parent StmtID
	then   NodeID
	els    NodeID
}

// NewBranchNode creates the node of the given if statement.
// Either target may be NoNode.
func NewBranchNode(id NodeID, stmt StmtID, then, els NodeID) *BranchNode {
	return &BranchNode{id: id, parent: stmt, then: then, els: els}
}

func (n *BranchNode) ID() NodeID     { return n.id }
func (n *BranchNode) Parent() StmtID { return n.parent }
func (n *BranchNode) Kind() Kind     { return KindBranch }

// Then is the successor taken when the condition holds.
func (n *BranchNode) Then() NodeID { return n.then }

// Else is the successor taken otherwise.
func (n *BranchNode) Else() NodeID { return n.els }

func (n *BranchNode) Successor(ectx *ExecutionContext) NodeID {
	if ectx != nil && ectx.Decision() {
		return n.then
	}
	return n.els
}

func (n *BranchNode) Accept(ctx context.Context, v Visitor, ectx *ExecutionContext) error {
	return v.VisitBranch(ctx, ectx, n)
}

// Targets returns every successor a node may take, regardless of context.
// It is used for validation and rendering.
func Targets(n Node) []NodeID {
	switch v := n.(type) {
	case *BranchNode:
		return []NodeID{v.then, v.els}
	default:
		return []NodeID{n.Successor(nil)}
	}
}
