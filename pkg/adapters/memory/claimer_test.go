package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimer(t *testing.T) {
	ctx := context.Background()
	c := NewClaimer()
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	ok, err := c.Claim(ctx, "m1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = c.Claim(ctx, "m1", time.Minute)
	assert.False(t, ok, "second claim must fail while the first is live")

	now = now.Add(2 * time.Minute)
	ok, _ = c.Claim(ctx, "m1", time.Minute)
	assert.True(t, ok, "expired claim can be taken again")

	require.NoError(t, c.Release(ctx, "m1"))
	ok, _ = c.Claim(ctx, "m1", 0)
	assert.True(t, ok)
	now = now.Add(time.Hour)
	ok, _ = c.Claim(ctx, "m1", 0)
	assert.False(t, ok, "claim without ttl never expires")
}
