package ports

import (
	"context"
	"time"
)

// MessageClaimer guards against the same message ID being accepted twice
// within a window, e.g. when a transport redelivers.
type MessageClaimer interface {
	// Claim returns true if the caller now owns messageID, false if it was
	// already claimed and the claim has not expired.
	Claim(ctx context.Context, messageID string, ttl time.Duration) (bool, error)

	// Release drops a claim, so a message refused after claiming can be retried.
	Release(ctx context.Context, messageID string) error
}
