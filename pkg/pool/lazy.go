package pool

import (
	"context"
	"sync"
	"sync/atomic"
)

// Lazy is a process-scoped pool handle that builds its pool on first use.
// Concurrent first callers observe a single construction.
type Lazy struct {
	build  func() *Pool
	once   sync.Once
	pool   atomic.Pointer[Pool]
	closed atomic.Bool
}

// NewLazy returns a handle that calls build at most once.
func NewLazy(build func() *Pool) *Lazy {
	return &Lazy{build: build}
}

// NewLazyConfig returns a handle that builds New(cfg, opts...) on first use.
func NewLazyConfig(cfg Config, opts ...Option) *Lazy {
	return NewLazy(func() *Pool { return New(cfg, opts...) })
}

// Get returns the pool, building it if needed.
// It returns ErrPoolClosed if the handle was shut down before first use.
func (l *Lazy) Get() (*Pool, error) {
	l.once.Do(func() {
		if !l.closed.Load() {
			l.pool.Store(l.build())
		}
	})
	p := l.pool.Load()
	if p == nil {
		return nil, ErrPoolClosed
	}
	return p, nil
}

// Submit builds the pool if needed and submits u.
func (l *Lazy) Submit(u Unit) error {
	p, err := l.Get()
	if err != nil {
		return err
	}
	return p.Submit(u)
}

// Initialized reports whether the pool has been built.
func (l *Lazy) Initialized() bool { return l.pool.Load() != nil }

// State reports StateUninitialized until the pool is built.
func (l *Lazy) State() State {
	if p := l.pool.Load(); p != nil {
		return p.State()
	}
	if l.closed.Load() {
		return StateTerminated
	}
	return StateUninitialized
}

// Stats returns the pool snapshot, or a zero snapshot carrying the state.
func (l *Lazy) Stats() Stats {
	if p := l.pool.Load(); p != nil {
		return p.Stats()
	}
	return Stats{State: l.State()}
}

// Shutdown shuts the pool down. A handle that was never used goes straight to
// Terminated without building anything.
func (l *Lazy) Shutdown(ctx context.Context) error {
	l.closed.Store(true)
	l.once.Do(func() {})
	if p := l.pool.Load(); p != nil {
		return p.Shutdown(ctx)
	}
	return nil
}
