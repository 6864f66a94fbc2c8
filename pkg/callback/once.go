package callback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// Once is bound to a single message and forwards exactly one Result to its
// responder. Any later Complete is a protocol fault: it is logged and
// reported as domain.ErrAlreadyCompleted without reaching the responder.
type Once struct {
	messageID string
	responder ports.Responder
	logger    *slog.Logger

	mu        sync.Mutex
	completed bool
	done      chan struct{}
}

// OnceOption configures a Once.
type OnceOption func(*Once)

// WithLogger sets the logger used to report protocol faults.
func WithLogger(logger *slog.Logger) OnceOption {
	return func(o *Once) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOnce binds a completion handle to a message and its responder.
func NewOnce(messageID string, responder ports.Responder, opts ...OnceOption) *Once {
	o := &Once{
		messageID: messageID,
		responder: responder,
		logger:    logging.NewNop(),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// MessageID is the message this handle is bound to.
func (o *Once) MessageID() string { return o.messageID }

// Complete delivers result. Only the first call reaches the responder; the
// returned error is the responder's.
func (o *Once) Complete(ctx context.Context, result domain.Result) error {
	o.mu.Lock()
	if o.completed {
		o.mu.Unlock()
		o.logger.Error("completion callback invoked twice",
			"message_id", o.messageID,
			"status", result.Status,
		)
		return fmt.Errorf("message %s: %w", o.messageID, domain.ErrAlreadyCompleted)
	}
	o.completed = true
	o.mu.Unlock()
	defer close(o.done)

	if result.MessageID == "" {
		result.MessageID = o.messageID
	}
	if o.responder == nil {
		return nil
	}
	return o.respond(ctx, result)
}

func (o *Once) respond(ctx context.Context, result domain.Result) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("responder panicked: %v", r)
			o.logger.Error("responder panicked", "message_id", o.messageID, "panic", r)
		}
	}()
	if err := o.responder.Respond(ctx, result); err != nil {
		o.logger.Warn("responder failed", "message_id", o.messageID, "err", err)
		return err
	}
	return nil
}

// Completed reports whether Complete has been called.
func (o *Once) Completed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.completed
}

// Done is closed once the first Complete has returned.
func (o *Once) Done() <-chan struct{} { return o.done }
