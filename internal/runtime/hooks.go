package runtime

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

func (e *Engine) base(ectx *domain.ExecutionContext, t domain.EventType) domain.EventBase {
	b := domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		MessageID: ectx.Message().ID,
	}
	if p := ectx.Program(); p != nil {
		b.Program = p.Name
	}
	return b
}

func (e *Engine) emitRequestStart(ctx context.Context, ectx *domain.ExecutionContext) {
	if e.hooks.OnRequestStart == nil {
		return
	}
	e.hooks.OnRequestStart(ctx, &domain.RequestEvent{EventBase: e.base(ectx, domain.EventRequestStart)})
}

func (e *Engine) emitNodeVisit(ctx context.Context, ectx *domain.ExecutionContext, node domain.Node, step int) {
	if e.hooks.OnNodeVisit == nil {
		return
	}
	ev := &domain.NodeEvent{
		EventBase: e.base(ectx, domain.EventNodeVisit),
		NodeID:    node.ID(),
		NodeKind:  node.Kind(),
		Step:      step,
	}
	if stmt, ok := ectx.Graph().Statement(node.Parent()); ok {
		ev.Statement = stmt.String()
	}
	e.hooks.OnNodeVisit(ctx, ev)
}

func (e *Engine) emitRequestComplete(ctx context.Context, ectx *domain.ExecutionContext, result *domain.Result) {
	if e.hooks.OnRequestComplete == nil {
		return
	}
	e.hooks.OnRequestComplete(ctx, &domain.RequestEvent{
		EventBase: e.base(ectx, domain.EventRequestComplete),
		Result:    result,
	})
}
