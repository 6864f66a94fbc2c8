package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Positive(t, cfg.Workers)
	assert.Equal(t, 1024, cfg.QueueCapacity)
	assert.Equal(t, 10000, cfg.MaxSteps)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workers: 3
queue_capacity: 16
programs: ./progs
wait_timeout: 5s
redis:
  addr: localhost:6379
  ttl: 1h
`), 0o644))

	t.Setenv("WEFT_WORKERS", "7")
	t.Setenv("WEFT_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers, "env wins over file")
	assert.Equal(t, 16, cfg.QueueCapacity)
	assert.Equal(t, "./progs", cfg.ProgramsDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.WaitTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "weft:result:", cfg.Redis.Prefix, "unset keys keep defaults")

	assert.Equal(t, 7, cfg.Pool().Workers)
}

func TestApplyEnv_InvalidKeepsFallback(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		"WEFT_QUEUE_CAPACITY": "lots",
		"WEFT_WAIT_TIMEOUT":   "soon",
		"WEFT_MAX_STEPS":      "50",
	}
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEFT_QUEUE_CAPACITY")
	assert.Contains(t, err.Error(), "WEFT_WAIT_TIMEOUT")
	assert.Equal(t, 1024, cfg.QueueCapacity)
	assert.Equal(t, 30*time.Second, cfg.WaitTimeout)
	assert.Equal(t, 50, cfg.MaxSteps)
}

func TestApplyEnv_ResultSettings(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		"WEFT_RESULT_KEY":           "a2V5",
		"WEFT_RESULT_FALLBACK_KEYS": "b2xk, b2xkZXI=,",
		"WEFT_PII_PATTERNS":         "password,ssn",
	}
	require.NoError(t, cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))

	assert.Equal(t, "a2V5", cfg.Results.EncryptionKey)
	assert.Equal(t, []string{"b2xk", "b2xkZXI="}, cfg.Results.FallbackKeys)
	assert.Equal(t, []string{"password", "ssn"}, cfg.Results.PIIPatterns)
}
