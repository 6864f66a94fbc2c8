package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGraph is returned when a graph violates its structural invariants.
	ErrInvalidGraph = errors.New("invalid graph")

	// ErrInvalidTarget is returned when an assignment targets an empty or reserved name.
	ErrInvalidTarget = errors.New("invalid assignment target")

	// ErrUnboundVariable is returned when an expression reads a binding that was never set.
	ErrUnboundVariable = errors.New("unbound variable")

	// ErrMissingField is returned when an expression reads an absent payload field.
	ErrMissingField = errors.New("missing payload field")

	// ErrInvalidExpr is returned for malformed expressions.
	ErrInvalidExpr = errors.New("invalid expression")

	// ErrNodeNotFound is returned when the walk reaches an index outside the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrStepLimit is returned when a walk exceeds its step budget.
	ErrStepLimit = errors.New("step limit exceeded")

	// ErrProgramNotFound is returned when a message names an unknown program.
	ErrProgramNotFound = errors.New("program not found")

	// ErrResultNotFound is returned when a result store has no entry for a message.
	ErrResultNotFound = errors.New("result not found")

	// ErrAlreadyCompleted is returned when a completion callback fires more than once.
	ErrAlreadyCompleted = errors.New("callback already completed")

	// ErrRejected is wrapped by every error that refuses an inbound message.
	ErrRejected = errors.New("message rejected")
)

// DispatchError reports a fault raised while a node was executing.
type DispatchError struct {
	NodeID    NodeID
	Kind      Kind
	Statement StmtID
	Err       error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("node %d (%s, statement %d): %v", e.NodeID, e.Kind, e.Statement, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
