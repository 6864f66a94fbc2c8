package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greetProgram = `
name: greet
input:
  name: string
statements:
  - assign: greeting
    value: hello
  - if: {eq: [{field: name}, admin]}
    then:
      - assign: greeting
        value: welcome back
  - reply: {var: greeting}
`

func writeProgram(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRun_JSON(t *testing.T) {
	path := writeProgram(t, t.TempDir(), "greet.yaml", greetProgram)

	var out bytes.Buffer
	result, err := Run(context.Background(), config.Default(), logging.NewNop(), RunOptions{
		ProgramPath: path,
		MessageID:   "cli-1",
		Payload:     `{"name":"admin"}`,
		JSON:        true,
	}, nil, &out)
	require.NoError(t, err)
	assert.True(t, result.OK())

	var printed domain.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, "cli-1", printed.MessageID)
	assert.Equal(t, "welcome back", printed.Value)
}

func TestRun_MarkdownTrace(t *testing.T) {
	path := writeProgram(t, t.TempDir(), "greet.yaml", greetProgram)

	var out bytes.Buffer
	result, err := Run(context.Background(), config.Default(), logging.NewNop(), RunOptions{
		ProgramPath: path,
		PayloadFile: "-",
		Trace:       true,
	}, strings.NewReader(`{"name":"guest"}`), &out)
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Value)

	report := out.String()
	assert.Contains(t, report, "# greet")
	assert.Contains(t, report, "```mermaid")
	assert.Contains(t, report, "classDef visited")
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	path := writeProgram(t, dir, "greet.yaml", greetProgram)

	_, err := Run(context.Background(), config.Default(), logging.NewNop(), RunOptions{
		ProgramPath: path,
		Payload:     `not json`,
	}, nil, &bytes.Buffer{})
	assert.ErrorContains(t, err, "payload JSON")

	_, err = Run(context.Background(), config.Default(), logging.NewNop(), RunOptions{
		ProgramPath: path,
		Payload:     `{"name":7}`,
	}, nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrRejected)

	_, err = Run(context.Background(), config.Default(), logging.NewNop(), RunOptions{
		ProgramPath: filepath.Join(dir, "missing.yaml"),
	}, nil, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewStack_Memory(t *testing.T) {
	cfg := config.Default()
	cfg.DedupTTL = time.Minute
	stack, err := NewStack(cfg, logging.NewNop(), StackOptions{Metrics: true})
	require.NoError(t, err)
	defer stack.Close(context.Background())

	assert.IsType(t, &memory.ResultStore{}, stack.Store)
	require.NotNil(t, stack.Registry)
	assert.NoError(t, stack.Ping(context.Background()))

	families, err := stack.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewStack_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Redis.Addr = mr.Addr()
	cfg.DedupTTL = time.Minute

	stack, err := NewStack(cfg, logging.NewNop(), StackOptions{})
	require.NoError(t, err)
	require.IsType(t, &redis.ResultStore{}, stack.Store)
	require.NoError(t, stack.Ping(context.Background()))

	path := writeProgram(t, t.TempDir(), "greet.yaml", greetProgram)
	_, err = stack.Engine.LoadFile(path)
	require.NoError(t, err)

	msg := domain.Message{ID: "r-1", Program: "greet", Payload: map[string]any{"name": "admin"}}
	result, err := stack.Engine.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "welcome back", result.Value)

	_, err = stack.Engine.Send(context.Background(), msg)
	assert.ErrorIs(t, err, domain.ErrRejected, "redis claimer deduplicates message IDs")

	require.NoError(t, stack.Close(context.Background()))
}

func TestWatchPrograms(t *testing.T) {
	dir := t.TempDir()
	stack, err := NewStack(config.Default(), logging.NewNop(), StackOptions{})
	require.NoError(t, err)
	defer stack.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- WatchPrograms(ctx, dir, stack.Engine, logging.NewNop(), func(p *domain.Program) {
			select {
			case reloaded <- p.Name:
			default:
			}
		})
	}()

	// Keep writing until the watcher is registered and picks up a change.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "greet.yaml"), []byte(greetProgram), 0o644)
		select {
		case name := <-reloaded:
			return name == "greet"
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"greet"}, stack.Engine.Programs())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNewStack_ResultMiddleware(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	cfg := config.Default()
	cfg.Results.EncryptionKey = base64.StdEncoding.EncodeToString(key)
	cfg.Results.PIIPatterns = []string{"greeting"}

	stack, err := NewStack(cfg, logging.NewNop(), StackOptions{})
	require.NoError(t, err)
	defer stack.Close(context.Background())

	ctx := context.Background()
	require.NoError(t, stack.Store.Save(ctx, domain.Result{
		MessageID: "enc-1",
		Status:    domain.StatusSuccess,
		Bindings:  map[string]any{"greeting": "hello", "name": "ada"},
	}))

	loaded, err := stack.Store.Load(ctx, "enc-1")
	require.NoError(t, err)
	assert.Equal(t, "***", loaded.Bindings["greeting"])
	assert.Equal(t, "ada", loaded.Bindings["name"])

	cfg.Results.EncryptionKey = "c2hvcnQ="
	_, err = NewStack(cfg, logging.NewNop(), StackOptions{})
	assert.ErrorContains(t, err, "encryption_key")

	cfg.Results.EncryptionKey = ""
	cfg.Results.PIIPatterns = []string{"("}
	_, err = NewStack(cfg, logging.NewNop(), StackOptions{})
	assert.ErrorContains(t, err, "pii pattern")
}
