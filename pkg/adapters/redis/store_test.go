package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisResultStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunResultStoreContract(t, store)
}

func TestRedisResultStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	err := store.Save(ctx, domain.Result{MessageID: "msg-ttl", Status: domain.StatusSuccess})
	assert.NoError(t, err)

	ids, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, ids, "msg-ttl")

	// Key expiration is driven by miniredis time.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "msg-ttl")
	assert.ErrorIs(t, err, domain.ErrResultNotFound)

	// Index pruning compares against the wall clock.
	time.Sleep(2100 * time.Millisecond)

	ids, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisResultStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err := store.Save(ctx, domain.Result{MessageID: "my-msg"})
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:r:my-msg"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	ids, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, ids, "my-msg")
}

func TestRedisResultStore_RejectsEmptyID(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	assert.Error(t, store.Save(context.Background(), domain.Result{}))
}

func TestRedisClaimer(t *testing.T) {
	mr, client := newClient(t)
	claimer := redis.NewClaimer(client, "weft:")
	ctx := context.Background()

	ok, err := claimer.Claim(ctx, "m1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("weft:claim:m1"))

	ok, err = claimer.Claim(ctx, "m1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = claimer.Claim(ctx, "m1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, claimer.Release(ctx, "m1"))
	assert.False(t, mr.Exists("weft:claim:m1"))
}

func TestRedisResultStore_ReservedLookingIDs(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	for _, id := range []string{"a", "index", "r:index", "claim:abc"} {
		require.NoError(t, store.Save(ctx, domain.Result{MessageID: id, Status: domain.StatusSuccess}), id)
	}

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "index", "r:index", "claim:abc"}, ids)

	got, err := store.Load(ctx, "index")
	require.NoError(t, err)
	assert.Equal(t, "index", got.MessageID)

	require.NoError(t, store.Save(ctx, domain.Result{MessageID: "b"}))
}

func TestRedisClaimer_SharedPrefixWithResults(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	claimer := redis.NewClaimer(client, store.Prefix())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Result{MessageID: "claim:abc", Status: domain.StatusSuccess}))

	ok, err := claimer.Claim(ctx, "abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "a stored result must not look like a claim")

	ok, err = claimer.Claim(ctx, "xyz", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = store.Load(ctx, "claim:xyz")
	assert.ErrorIs(t, err, domain.ErrResultNotFound, "a claim must not look like a result")
}
