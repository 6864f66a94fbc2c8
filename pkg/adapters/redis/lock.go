package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// Claimer implements ports.MessageClaimer using Redis SET NX.
type Claimer struct {
	client *backend.Client
	prefix string
}

// NewClaimer creates a Redis-backed message claimer. Claims are kept under
// prefix+"claim:", which never overlaps a ResultStore with the same prefix.
func NewClaimer(client *backend.Client, prefix string) *Claimer {
	return &Claimer{
		client: client,
		prefix: prefix,
	}
}

func (c *Claimer) key(messageID string) string { return c.prefix + "claim:" + messageID }

// Claim takes messageID for ttl. A non-positive ttl never expires.
func (c *Claimer) Claim(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	ok, err := c.client.SetNX(ctx, c.key(messageID), time.Now().UnixNano(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis error claiming message: %w", err)
	}
	return ok, nil
}

// Release drops the claim.
func (c *Claimer) Release(ctx context.Context, messageID string) error {
	return c.client.Del(ctx, c.key(messageID)).Err()
}
