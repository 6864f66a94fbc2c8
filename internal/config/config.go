// Package config loads runtime settings from an optional YAML file and
// WEFT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/weft/internal/runtime"
	"github.com/aretw0/weft/pkg/pool"
	"gopkg.in/yaml.v3"
)

// Redis configures the optional Redis result store.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// Results configures how completed results are stored at rest.
type Results struct {
	// EncryptionKey is a base64 AES-256 key; empty disables encryption.
	EncryptionKey string   `yaml:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys"`
	// PIIPatterns are regular expressions matched against binding keys.
	PIIPatterns []string `yaml:"pii_patterns"`
}

// Config holds every setting of a weft process.
type Config struct {
	Workers       int           `yaml:"workers"`
	QueueCapacity int           `yaml:"queue_capacity"`
	MaxSteps      int           `yaml:"max_steps"`
	ProgramsDir   string        `yaml:"programs"`
	Addr          string        `yaml:"addr"`
	LogLevel      string        `yaml:"log_level"`
	WaitTimeout   time.Duration `yaml:"wait_timeout"`
	DedupTTL      time.Duration `yaml:"dedup_ttl"`
	Redis         Redis         `yaml:"redis"`
	Results       Results       `yaml:"results"`
}

// Default returns the built-in settings.
func Default() Config {
	def := pool.DefaultConfig()
	return Config{
		Workers:       def.Workers,
		QueueCapacity: def.QueueCapacity,
		MaxSteps:      runtime.DefaultMaxSteps,
		ProgramsDir:   "programs",
		Addr:          ":8080",
		LogLevel:      "info",
		WaitTimeout:   30 * time.Second,
		Redis: Redis{
			Prefix: "weft:result:",
		},
	}
}

// Pool returns the worker pool sizing.
func (c Config) Pool() pool.Config {
	return pool.Config{Workers: c.Workers, QueueCapacity: c.QueueCapacity}
}

// Load reads path (if non-empty) over the defaults, then applies environment
// overrides. Invalid environment values keep the previous value and are
// reported together in the returned error, alongside a usable Config.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	return cfg, cfg.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(key string, dst *[]string) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		var items []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		*dst = items
	}
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid integer for %s: %q", key, v))
			return
		}
		*dst = n
	}
	dur := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid duration for %s: %q", key, v))
			return
		}
		*dst = d
	}

	num("WEFT_WORKERS", &c.Workers)
	num("WEFT_QUEUE_CAPACITY", &c.QueueCapacity)
	num("WEFT_MAX_STEPS", &c.MaxSteps)
	str("WEFT_PROGRAMS", &c.ProgramsDir)
	str("WEFT_ADDR", &c.Addr)
	str("WEFT_LOG_LEVEL", &c.LogLevel)
	dur("WEFT_WAIT_TIMEOUT", &c.WaitTimeout)
	dur("WEFT_DEDUP_TTL", &c.DedupTTL)
	str("WEFT_REDIS_ADDR", &c.Redis.Addr)
	str("WEFT_REDIS_PASSWORD", &c.Redis.Password)
	num("WEFT_REDIS_DB", &c.Redis.DB)
	str("WEFT_REDIS_PREFIX", &c.Redis.Prefix)
	dur("WEFT_REDIS_TTL", &c.Redis.TTL)
	str("WEFT_RESULT_KEY", &c.Results.EncryptionKey)
	list("WEFT_RESULT_FALLBACK_KEYS", &c.Results.FallbackKeys)
	list("WEFT_PII_PATTERNS", &c.Results.PIIPatterns)

	return errors.Join(errs...)
}
