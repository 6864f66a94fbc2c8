package runtime

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/aretw0/weft/pkg/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// walk dispatches nodes from the context's cursor until a terminal node.
// Node execution is strictly sequential; a panic in a node is recovered and
// returned as *PanicError.
func (e *Engine) walk(ctx context.Context, span trace.Span, ectx *domain.ExecutionContext) (err error) {
	g := ectx.Graph()
	if g == nil {
		return fmt.Errorf("%w: program has no graph", domain.ErrInvalidGraph)
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{NodeID: ectx.Cursor(), Value: r, Stack: debug.Stack()}
			e.logger.ErrorContext(ctx, "node panicked",
				"message_id", ectx.Message().ID,
				"node_id", ectx.Cursor(),
				"panic", r,
			)
		}
	}()

	for cur := ectx.Cursor(); cur != domain.NoNode; {
		if err := ctx.Err(); err != nil {
			return err
		}
		node, ok := g.Node(cur)
		if !ok {
			return fmt.Errorf("%w: %d", domain.ErrNodeNotFound, cur)
		}
		ectx.SetCursor(cur)
		if ectx.Steps() >= e.maxSteps {
			return &StepLimitError{NodeID: cur, Limit: e.maxSteps}
		}
		step := ectx.Step()

		span.AddEvent("node", trace.WithAttributes(
			attribute.Int("weft.node_id", int(cur)),
			attribute.String("weft.node_kind", string(node.Kind())),
			attribute.Int("weft.step", step),
		))
		e.emitNodeVisit(ctx, ectx, node, step)

		if err := node.Accept(ctx, e.visitor, ectx); err != nil {
			return &domain.DispatchError{
				NodeID:    cur,
				Kind:      node.Kind(),
				Statement: node.Parent(),
				Err:       err,
			}
		}
		cur = node.Successor(ectx)
	}
	return nil
}
