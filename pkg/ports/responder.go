package ports

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

// Responder delivers the outcome of a request back to the transport.
type Responder interface {
	Respond(ctx context.Context, result domain.Result) error
}

// MessageProcessor is the inbound boundary of the engine.
type MessageProcessor interface {
	// Receive accepts a message for asynchronous execution and returns without
	// waiting for it. accepted is false, with a non-nil error, when the message
	// is refused; the responder is then never invoked.
	Receive(ctx context.Context, msg domain.Message, responder Responder) (accepted bool, err error)

	// ID identifies the processor instance.
	ID() string
}

// ProgramResolver resolves programs by name.
type ProgramResolver interface {
	// Program returns domain.ErrProgramNotFound for unknown names.
	Program(name string) (*domain.Program, error)

	// Programs lists the registered program names in a stable order.
	Programs() []string
}
