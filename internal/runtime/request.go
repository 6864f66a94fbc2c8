package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/weft/pkg/domain"
)

// Completer receives the outcome of a request exactly once.
type Completer interface {
	Complete(ctx context.Context, result domain.Result) error
}

// Request binds an execution context to its completion handle. It is the unit
// of work a pool worker services end to end.
type Request struct {
	engine   *Engine
	ectx     *domain.ExecutionContext
	complete Completer
}

// NewRequest prepares a request for submission to a pool.
func (e *Engine) NewRequest(ectx *domain.ExecutionContext, complete Completer) *Request {
	return &Request{engine: e, ectx: ectx, complete: complete}
}

// Context is the request's execution context.
func (r *Request) Context() *domain.ExecutionContext { return r.ectx }

// Run walks the graph and completes the request. Every exit path, including a
// panic outside the walk, reaches Complete exactly once.
func (r *Request) Run(ctx context.Context) {
	var result domain.Result
	defer func() {
		if rec := recover(); rec != nil {
			result = domain.Result{
				MessageID: r.ectx.Message().ID,
				Status:    domain.StatusFailure,
				Bindings:  r.ectx.Bindings(),
				Steps:     r.ectx.Steps(),
				Failure: &domain.Failure{
					Kind:    domain.FailurePanic,
					NodeID:  r.ectx.Cursor(),
					Message: fmt.Sprintf("panic: %v", rec),
				},
				CompletedAt: r.engine.now(),
			}
			if p := r.ectx.Program(); p != nil {
				result.Program = p.Name
			}
			r.engine.logger.Error("request panicked", "message_id", result.MessageID, "panic", rec)
		}
		if r.complete == nil {
			return
		}
		// The responder must see the result even when the run was cancelled.
		if err := r.complete.Complete(context.WithoutCancel(ctx), result); err != nil {
			r.engine.logger.Warn("completion failed", "message_id", result.MessageID, "err", err)
		}
	}()

	result, _ = r.engine.Execute(ctx, r.ectx)
}
