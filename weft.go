package weft

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/weft/internal/compiler"
	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/internal/runtime"
	"github.com/aretw0/weft/pkg/callback"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/pool"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/processor"
	"github.com/aretw0/weft/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Engine is the high-level entry point for the weft library.
// It wires the program registry, the runtime, the lazily started worker pool
// and the message processor.
type Engine struct {
	registry  *registry.Registry
	runtime   *runtime.Engine
	pool      *pool.Lazy
	processor *processor.Processor
	logger    *slog.Logger

	hooks    domain.LifecycleHooks
	poolCfg  pool.Config
	maxSteps int
	metrics  *pool.Metrics
	tracer   trace.Tracer
	claimer  ports.MessageClaimer
	claimTTL time.Duration
	id       string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithPoolConfig sizes the worker pool.
func WithPoolConfig(cfg pool.Config) Option {
	return func(e *Engine) {
		e.poolCfg = cfg
	}
}

// WithMaxSteps bounds the nodes a single request may dispatch.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithMetrics registers pool metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.metrics = pool.NewMetrics(reg)
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithDeduplication rejects message IDs seen within ttl.
func WithDeduplication(c ports.MessageClaimer, ttl time.Duration) Option {
	return func(e *Engine) {
		e.claimer = c
		e.claimTTL = ttl
	}
}

// WithProcessorID names the processor instance.
func WithProcessorID(id string) Option {
	return func(e *Engine) {
		e.id = id
	}
}

// New initializes an Engine. The worker pool is not started until the first
// message is received.
func New(opts ...Option) *Engine {
	eng := &Engine{
		poolCfg: pool.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	// Ensure logger is initialized (so we don't pass nil down the stack)
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	eng.registry = registry.NewRegistry()
	eng.runtime = runtime.NewEngine(
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithMaxSteps(eng.maxSteps),
		runtime.WithTracer(eng.tracer),
	)
	eng.pool = pool.NewLazyConfig(eng.poolCfg,
		pool.WithLogger(eng.logger),
		pool.WithMetrics(eng.metrics),
	)

	procOpts := []processor.Option{
		processor.WithLogger(eng.logger),
		processor.WithID(eng.id),
	}
	if eng.claimer != nil {
		procOpts = append(procOpts, processor.WithClaimer(eng.claimer, eng.claimTTL))
	}
	eng.processor = processor.New(eng.registry, eng.runtime, eng.pool, procOpts...)

	return eng
}

// Register adds a program built with pkg/dsl or the compiler.
func (e *Engine) Register(p *domain.Program) error {
	if err := e.registry.Register(p); err != nil {
		return err
	}
	e.logger.Debug("program registered", "program", p.Name, "nodes", p.Graph.Len())
	return nil
}

// LoadFile compiles and registers a YAML program file.
func (e *Engine) LoadFile(path string) (*domain.Program, error) {
	prog, err := compiler.ParseFile(path)
	if err != nil {
		return nil, err
	}
	if err := e.Register(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

// LoadDir compiles and registers every program file in dir.
func (e *Engine) LoadDir(dir string) error {
	programs, err := compiler.LoadDir(dir)
	if err != nil {
		return err
	}
	for _, p := range programs {
		if err := e.Register(p); err != nil {
			return err
		}
	}
	e.logger.Info("programs loaded", "dir", dir, "count", len(programs))
	return nil
}

// Receive hands msg to the processor. See processor.Processor.Receive.
func (e *Engine) Receive(ctx context.Context, msg domain.Message, responder ports.Responder) (bool, error) {
	return e.processor.Receive(ctx, msg, responder)
}

// Send receives msg and waits for its result. Extra responders are called
// with the same result before Send returns it.
func (e *Engine) Send(ctx context.Context, msg domain.Message, extra ...ports.Responder) (domain.Result, error) {
	ch := callback.NewChan()
	responder := ports.Responder(ch)
	if len(extra) > 0 {
		responder = callback.Multi(append(extra, ch)...)
	}

	if _, err := e.Receive(ctx, msg, responder); err != nil {
		return domain.Result{}, err
	}
	result, err := ch.Wait(ctx)
	if err != nil {
		return domain.Result{}, fmt.Errorf("waiting for result: %w", err)
	}
	return result, nil
}

// Programs lists the registered program names.
func (e *Engine) Programs() []string { return e.registry.Programs() }

// Program looks up a registered program.
func (e *Engine) Program(name string) (*domain.Program, error) { return e.registry.Program(name) }

// Resolver exposes the program registry.
func (e *Engine) Resolver() ports.ProgramResolver { return e.registry }

// Processor exposes the message entry point.
func (e *Engine) Processor() ports.MessageProcessor { return e.processor }

// PoolState reports the worker pool lifecycle phase.
func (e *Engine) PoolState() pool.State { return e.pool.State() }

// PoolStats returns a snapshot of the worker pool.
func (e *Engine) PoolStats() pool.Stats { return e.pool.Stats() }

// Shutdown stops accepting messages and drains accepted ones.
func (e *Engine) Shutdown(ctx context.Context) error {
	return e.pool.Shutdown(ctx)
}
