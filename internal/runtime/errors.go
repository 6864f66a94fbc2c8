package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/weft/pkg/domain"
)

// PanicError reports a panic recovered while a node was executing.
type PanicError struct {
	NodeID domain.NodeID
	Value  any
	Stack  []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic at node %d: %v", e.NodeID, e.Value)
}

// StepLimitError reports a walk that ran past its step budget.
type StepLimitError struct {
	NodeID domain.NodeID
	Limit  int
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("%v: %d steps at node %d", domain.ErrStepLimit, e.Limit, e.NodeID)
}

func (e *StepLimitError) Unwrap() error { return domain.ErrStepLimit }

// failureFrom classifies a walk error into the Failure carried by the Result.
func failureFrom(ectx *domain.ExecutionContext, err error) *domain.Failure {
	f := &domain.Failure{
		NodeID:  ectx.Cursor(),
		Message: err.Error(),
	}

	var (
		dispatch *domain.DispatchError
		panicked *PanicError
	)
	switch {
	case errors.As(err, &dispatch):
		f.Kind = domain.FailureDispatch
		f.NodeID = dispatch.NodeID
	case errors.As(err, &panicked):
		f.Kind = domain.FailurePanic
		f.NodeID = panicked.NodeID
	case errors.Is(err, domain.ErrStepLimit):
		f.Kind = domain.FailureStepLimit
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		f.Kind = domain.FailureCancelled
	default:
		f.Kind = domain.FailureGraph
	}

	if g := ectx.Graph(); g != nil {
		if n, ok := g.Node(f.NodeID); ok {
			f.NodeKind = n.Kind()
			if stmt, ok := g.Statement(n.Parent()); ok {
				f.Statement = stmt.String()
			}
		}
	}
	return f
}
