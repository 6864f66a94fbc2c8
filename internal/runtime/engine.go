package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxSteps bounds a single walk.
const DefaultMaxSteps = 10000

const tracerName = "github.com/aretw0/weft/internal/runtime"

// Engine drives requests through their program graphs.
// It holds no per-request state and is shared by all workers.
type Engine struct {
	visitor  domain.Visitor
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	tracer   trace.Tracer
	maxSteps int
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxSteps bounds the number of nodes one request may dispatch.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithVisitor replaces the default Executor.
func WithVisitor(v domain.Visitor) Option {
	return func(e *Engine) {
		if v != nil {
			e.visitor = v
		}
	}
}

// NewEngine creates an engine with the default Executor.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		visitor:  Executor{},
		logger:   logging.NewNop(),
		tracer:   otel.Tracer(tracerName),
		maxSteps: DefaultMaxSteps,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxSteps is the step budget of one walk.
func (e *Engine) MaxSteps() int { return e.maxSteps }

// Execute runs the request on the calling goroutine and returns its Result.
// The error is the fault behind a failed Result, nil on success.
func (e *Engine) Execute(ctx context.Context, ectx *domain.ExecutionContext) (domain.Result, error) {
	start := e.now()
	msg := ectx.Message()
	programName := ""
	if p := ectx.Program(); p != nil {
		programName = p.Name
	}

	ctx, span := e.tracer.Start(ctx, "weft.request", trace.WithAttributes(
		attribute.String("weft.message_id", msg.ID),
		attribute.String("weft.program", programName),
	))
	defer span.End()

	logger := e.logger.With("message_id", msg.ID, "program", programName)
	logger.DebugContext(ctx, "request started")
	e.emitRequestStart(ctx, ectx)

	err := e.walk(ctx, span, ectx)

	result := domain.Result{
		MessageID:   msg.ID,
		Program:     programName,
		Status:      domain.StatusSuccess,
		Bindings:    ectx.Bindings(),
		Steps:       ectx.Steps(),
		CompletedAt: e.now(),
	}
	result.Duration = result.CompletedAt.Sub(start)
	if v, ok := ectx.Reply(); ok {
		result.Value = v
	}

	if err != nil {
		result.Status = domain.StatusFailure
		result.Failure = failureFrom(ectx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, result.Failure.Message)
		logger.WarnContext(ctx, "request failed",
			"kind", result.Failure.Kind,
			"node_id", result.Failure.NodeID,
			"err", err,
		)
	} else {
		span.SetStatus(codes.Ok, "")
		logger.DebugContext(ctx, "request completed", "steps", result.Steps)
	}
	span.SetAttributes(attribute.Int("weft.steps", result.Steps))

	e.emitRequestComplete(ctx, ectx, &result)
	return result, err
}
