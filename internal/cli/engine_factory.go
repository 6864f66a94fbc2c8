package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/persistence/middleware"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Stack is an engine together with the infrastructure it was wired to.
type Stack struct {
	Engine *weft.Engine
	Store  ports.ResultStore
	// Registry is nil unless metrics were requested.
	Registry *prometheus.Registry

	ping    func(context.Context) error
	closers []func() error
}

// StackOptions tunes NewStack for a command.
type StackOptions struct {
	Debug   bool
	Metrics bool
	// Hooks replaces the debug logging hooks when set.
	Hooks *domain.LifecycleHooks
}

// NewStack builds an engine from cfg with standard CLI conventions:
// Redis backs results and deduplication when an address is configured,
// memory otherwise. Stored results are masked and encrypted when the
// results section of cfg asks for it.
func NewStack(cfg config.Config, logger *slog.Logger, opts StackOptions) (*Stack, error) {
	mws, err := resultMiddleware(cfg.Results)
	if err != nil {
		return nil, err
	}

	s := &Stack{}
	engineOpts := []weft.Option{
		weft.WithLogger(logger),
		weft.WithPoolConfig(cfg.Pool()),
		weft.WithMaxSteps(cfg.MaxSteps),
	}
	switch {
	case opts.Hooks != nil:
		engineOpts = append(engineOpts, weft.WithLifecycleHooks(*opts.Hooks))
	case opts.Debug:
		engineOpts = append(engineOpts, weft.WithLifecycleHooks(createDebugHooks(logger)))
	}
	if opts.Metrics {
		s.Registry = prometheus.NewRegistry()
		s.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		engineOpts = append(engineOpts, weft.WithMetrics(s.Registry))
	}

	var claimer ports.MessageClaimer
	if cfg.Redis.Addr != "" {
		var storeOpts []redis.Option
		if cfg.Redis.Prefix != "" {
			storeOpts = append(storeOpts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		storeOpts = append(storeOpts, redis.WithTTL(cfg.Redis.TTL))
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, storeOpts...)

		s.Store = store
		s.ping = store.Ping
		s.closers = append(s.closers, store.Close)
		claimer = redis.NewClaimer(store.Client(), store.Prefix())
		logger.Info("using redis result store", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	} else {
		s.Store = memory.NewResultStore()
		claimer = memory.NewClaimer()
	}

	if len(mws) > 0 {
		s.Store = middleware.Chain(s.Store, mws...)
		logger.Info("result store middleware enabled",
			"pii_patterns", len(cfg.Results.PIIPatterns),
			"encrypted", cfg.Results.EncryptionKey != "")
	}

	if cfg.DedupTTL > 0 {
		engineOpts = append(engineOpts, weft.WithDeduplication(claimer, cfg.DedupTTL))
	}

	s.Engine = weft.New(engineOpts...)
	return s, nil
}

// resultMiddleware masks before it encrypts, so decrypted results stay masked.
func resultMiddleware(cfg config.Results) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.PIIPatterns) > 0 {
		if _, err := middleware.CompilePatterns(cfg.PIIPatterns); err != nil {
			return nil, err
		}
		mws = append(mws, middleware.NewPIIMiddleware(cfg.PIIPatterns))
	}
	if cfg.EncryptionKey != "" {
		active, err := middleware.DecodeKey(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("results.encryption_key: %w", err)
		}
		enc := middleware.EncryptionConfig{ActiveKey: active}
		for i, k := range cfg.FallbackKeys {
			key, err := middleware.DecodeKey(k)
			if err != nil {
				return nil, fmt.Errorf("results.fallback_keys[%d]: %w", i, err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(enc))
	}
	return mws, nil
}

// Ping checks the result store backend, if it has one.
func (s *Stack) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close drains the engine and releases backend connections.
func (s *Stack) Close(ctx context.Context) error {
	errs := []error{s.Engine.Shutdown(ctx)}
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
