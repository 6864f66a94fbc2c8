package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const DefaultPrefix = "weft:result:"

// ResultStore implements ports.ResultStore on Redis.
//
// Each result is stored as JSON under prefix+"r:"+messageID. A sorted set at
// prefix+"index" tracks the message IDs, scored by expiry (or +inf without a
// TTL), and is pruned lazily on List. Claims made by a Claimer sharing the
// prefix live under prefix+"claim:". Message IDs are client supplied, so no
// key outside the "r:" namespace may embed one.
type ResultStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a ResultStore.
type Option func(*ResultStore)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *ResultStore) {
		s.prefix = prefix
	}
}

// WithTTL expires stored results after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *ResultStore) {
		s.ttl = ttl
	}
}

// New connects to addr and returns a store.
func New(addr, password string, db int, opts ...Option) *ResultStore {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *ResultStore {
	s := &ResultStore{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks connectivity.
func (s *ResultStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying client so a Claimer can share it.
func (s *ResultStore) Client() *backend.Client { return s.client }

// Prefix returns the key prefix, for a Claimer sharing the keyspace.
func (s *ResultStore) Prefix() string { return s.prefix }

// Close closes the underlying client.
func (s *ResultStore) Close() error {
	return s.client.Close()
}

func (s *ResultStore) key(messageID string) string { return s.prefix + "r:" + messageID }
func (s *ResultStore) indexKey() string            { return s.prefix + "index" }

// Save stores the result and indexes it.
func (s *ResultStore) Save(ctx context.Context, result domain.Result) error {
	if result.MessageID == "" {
		return errors.New("redis: result without message id")
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	score := float64(1<<53 - 1)
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).Unix())
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(result.MessageID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: result.MessageID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save failed: %w", err)
	}
	return nil
}

// Load fetches and decodes a result.
func (s *ResultStore) Load(ctx context.Context, messageID string) (domain.Result, error) {
	data, err := s.client.Get(ctx, s.key(messageID)).Bytes()
	if errors.Is(err, backend.Nil) {
		return domain.Result{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("redis load failed: %w", err)
	}

	var result domain.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.Result{}, fmt.Errorf("failed to unmarshal result %s: %w", messageID, err)
	}
	return result, nil
}

// Delete removes the result and its index entry.
func (s *ResultStore) Delete(ctx context.Context, messageID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(messageID))
	pipe.ZRem(ctx, s.indexKey(), messageID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// List returns the indexed message IDs, dropping expired entries first.
func (s *ResultStore) List(ctx context.Context) ([]string, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("redis index prune failed: %w", err)
	}
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list failed: %w", err)
	}
	return ids, nil
}
