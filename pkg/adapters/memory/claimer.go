package memory

import (
	"context"
	"sync"
	"time"
)

// Claimer implements ports.MessageClaimer in memory.
type Claimer struct {
	mu     sync.Mutex
	claims map[string]time.Time
	now    func() time.Time
}

// NewClaimer creates an empty claimer.
func NewClaimer() *Claimer {
	return &Claimer{
		claims: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Claim records messageID for ttl. It returns false if an unexpired claim exists.
// A non-positive ttl never expires.
func (c *Claimer) Claim(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if exp, ok := c.claims[messageID]; ok && (exp.IsZero() || now.Before(exp)) {
		return false, nil
	}
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	c.claims[messageID] = exp
	return true, nil
}

// Release drops the claim on messageID.
func (c *Claimer) Release(ctx context.Context, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.claims, messageID)
	return nil
}
