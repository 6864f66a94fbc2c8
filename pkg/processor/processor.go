package processor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/internal/runtime"
	"github.com/aretw0/weft/pkg/callback"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/pool"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/schema"
	"github.com/google/uuid"
)

// Submitter accepts units of work without blocking. *pool.Pool and
// *pool.Lazy both satisfy it.
type Submitter interface {
	Submit(u pool.Unit) error
}

// Processor is the message entry point. It turns an inbound message into a
// request, hands it to the pool and returns without waiting for execution.
type Processor struct {
	id       string
	resolver ports.ProgramResolver
	engine   *runtime.Engine
	pool     Submitter
	logger   *slog.Logger

	claimer  ports.MessageClaimer
	claimTTL time.Duration

	now func() time.Time
}

var _ ports.MessageProcessor = (*Processor)(nil)

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithID overrides the generated processor identity.
func WithID(id string) Option {
	return func(p *Processor) {
		if id != "" {
			p.id = id
		}
	}
}

// WithClaimer rejects message IDs that were already accepted within ttl.
func WithClaimer(c ports.MessageClaimer, ttl time.Duration) Option {
	return func(p *Processor) {
		p.claimer = c
		p.claimTTL = ttl
	}
}

// New creates a processor resolving programs through resolver and executing
// them with engine on the given pool.
func New(resolver ports.ProgramResolver, engine *runtime.Engine, submitter Submitter, opts ...Option) *Processor {
	p := &Processor{
		id:       uuid.NewString(),
		resolver: resolver,
		engine:   engine,
		pool:     submitter,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID identifies this processor instance.
func (p *Processor) ID() string { return p.id }

// Receive accepts msg for asynchronous execution.
//
// When accepted is true the responder will be called exactly once with the
// Result. When it is false the error is a *RejectionError and the responder
// is never called. Receive never executes the program itself.
func (p *Processor) Receive(ctx context.Context, msg domain.Message, responder ports.Responder) (bool, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = p.now()
	}
	logger := p.logger.With("message_id", msg.ID, "program", msg.Program)

	reject := func(reason Reason, err error) (bool, error) {
		logger.DebugContext(ctx, "message rejected", "reason", reason, "err", err)
		return false, &RejectionError{MessageID: msg.ID, Program: msg.Program, Reason: reason, Err: err}
	}

	if msg.Program == "" {
		return reject(ReasonInvalidMessage, errors.New("message names no program"))
	}
	if responder == nil {
		return reject(ReasonInvalidMessage, errors.New("message has no responder"))
	}

	prog, err := p.resolver.Program(msg.Program)
	if err != nil {
		return reject(ReasonUnknownProgram, err)
	}
	if err := schema.Validate(prog.Input, msg.Payload); err != nil {
		return reject(ReasonInvalidPayload, err)
	}

	claimed := false
	if p.claimer != nil {
		ok, err := p.claimer.Claim(ctx, msg.ID, p.claimTTL)
		if err != nil {
			return reject(ReasonUnavailable, err)
		}
		if !ok {
			return reject(ReasonDuplicate, ErrDuplicate)
		}
		claimed = true
	}

	ectx := domain.NewExecutionContext(msg, prog)
	once := callback.NewOnce(msg.ID, responder, callback.WithLogger(logger))

	if err := p.pool.Submit(p.engine.NewRequest(ectx, once)); err != nil {
		if claimed {
			if rerr := p.claimer.Release(ctx, msg.ID); rerr != nil {
				logger.WarnContext(ctx, "failed to release claim", "err", rerr)
			}
		}
		reason := ReasonUnavailable
		switch {
		case errors.Is(err, pool.ErrSaturated):
			reason = ReasonSaturated
		case errors.Is(err, pool.ErrPoolClosed):
			reason = ReasonClosed
		}
		return reject(reason, err)
	}

	logger.DebugContext(ctx, "message accepted")
	return true, nil
}
