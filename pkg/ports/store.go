package ports

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

// ResultStore persists completed results keyed by message ID.
type ResultStore interface {
	Save(ctx context.Context, result domain.Result) error

	// Load returns domain.ErrResultNotFound if no result exists for the message.
	Load(ctx context.Context, messageID string) (domain.Result, error)

	Delete(ctx context.Context, messageID string) error

	// List returns the message IDs with a stored result.
	List(ctx context.Context) ([]string, error)
}
