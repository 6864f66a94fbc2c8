package pool

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/weft/internal/logging"
)

var (
	// ErrSaturated is returned by Submit when the queue is full.
	ErrSaturated = errors.New("worker pool saturated")

	// ErrPoolClosed is returned by Submit once the pool stopped accepting work.
	ErrPoolClosed = errors.New("worker pool closed")
)

// Unit is one piece of work executed by a single worker.
// The context is cancelled only when a shutdown deadline expires.
type Unit interface {
	Run(ctx context.Context)
}

// UnitFunc adapts a function to Unit.
type UnitFunc func(ctx context.Context)

func (f UnitFunc) Run(ctx context.Context) { f(ctx) }

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger used by the pool and its workers.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records pool activity on m.
func WithMetrics(m *Metrics) Option {
	return func(p *Pool) {
		p.metrics = m
	}
}

// Stats is a point-in-time view of a pool.
type Stats struct {
	State         State `json:"state"`
	Workers       int   `json:"workers"`
	QueueCapacity int   `json:"queue_capacity"`
	Queued        int   `json:"queued"`
	InFlight      int64 `json:"in_flight"`
}

// Pool is a fixed set of workers fed by a bounded queue.
type Pool struct {
	cfg     Config
	logger  *slog.Logger
	metrics *Metrics

	// mu orders Submit against the close of queue.
	mu       sync.RWMutex
	state    atomic.Int32
	queue    chan Unit
	inFlight atomic.Int64

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	done    chan struct{}
}

// New starts an Active pool.
func New(cfg Config, opts ...Option) *Pool {
	cfg = cfg.normalize()
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		cfg:     cfg,
		logger:  logging.NewNop(),
		queue:   make(chan Unit, cfg.QueueCapacity),
		baseCtx: ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go p.worker(i)
	}
	go func() {
		p.wg.Wait()
		close(p.done)
	}()

	p.state.Store(int32(StateActive))
	p.logger.Info("worker pool initialized",
		"workers", cfg.Workers,
		"queue_capacity", cfg.QueueCapacity,
	)
	return p
}

// Submit enqueues u without blocking.
func (p *Pool) Submit(u Unit) error {
	if u == nil {
		return errors.New("pool: nil unit")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.State() != StateActive {
		p.metrics.refused("closed")
		return ErrPoolClosed
	}
	select {
	case p.queue <- u:
		p.metrics.accepted(len(p.queue))
		return nil
	default:
		p.metrics.refused("saturated")
		return ErrSaturated
	}
}

// State reports the lifecycle phase.
func (p *Pool) State() State {
	return State(p.state.Load())
}

// Config returns the effective sizing.
func (p *Pool) Config() Config { return p.cfg }

// Stats returns a snapshot of the pool.
func (p *Pool) Stats() Stats {
	return Stats{
		State:         p.State(),
		Workers:       p.cfg.Workers,
		QueueCapacity: p.cfg.QueueCapacity,
		Queued:        len(p.queue),
		InFlight:      p.inFlight.Load(),
	}
}

// Shutdown stops accepting work and waits for queued and running units.
// If ctx expires first, running units see their context cancelled and
// Shutdown returns ctx.Err() once the workers have exited.
// Calling Shutdown more than once is safe.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.State() == StateActive {
		p.state.Store(int32(StateShuttingDown))
		close(p.queue)
		p.logger.Info("worker pool shutting down", "queued", len(p.queue))
	}
	p.mu.Unlock()

	var err error
	select {
	case <-p.done:
	case <-ctx.Done():
		err = ctx.Err()
		p.logger.Warn("worker pool shutdown deadline exceeded, cancelling units", "err", err)
		p.cancel()
		<-p.done
	}
	p.cancel()

	if p.state.CompareAndSwap(int32(StateShuttingDown), int32(StateTerminated)) {
		p.logger.Info("worker pool terminated")
	}
	return err
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	logger := p.logger.With("worker_id", id)
	for u := range p.queue {
		p.run(logger, u)
	}
}

func (p *Pool) run(logger *slog.Logger, u Unit) {
	start := time.Now()
	p.inFlight.Add(1)
	p.metrics.started(len(p.queue))

	panicked := false
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			logger.Error("unit panicked", "panic", r, "stack", string(debug.Stack()))
		}
		p.inFlight.Add(-1)
		p.metrics.finished(time.Since(start), panicked)
	}()

	u.Run(p.baseCtx)
}
