package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/weft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "weft version "+strings.TrimSpace(weft.Version)+"\n", out)
}

func TestValidateCommand_BundledPrograms(t *testing.T) {
	out, err := execute(t, "validate", "--strict", "../../programs")
	require.NoError(t, err)
	assert.Contains(t, out, "greet")
	assert.Contains(t, out, "triage")
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "graph", "../../programs/greet.yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD"))
}

func TestRunCommand_Triage(t *testing.T) {
	out, err := execute(t, "run", "../../programs/triage.yaml", "--json",
		"--payload", `{"ticket":{"priority":"low","vip":true}}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"value": "priority"`)
	assert.Contains(t, out, `"escalated": true`)
}

func TestServeCommand_ClosesStoreOnStartupError(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("WEFT_REDIS_ADDR", mr.Addr())

	_, err := execute(t, "serve", "--metrics=false", "--programs", filepath.Join(t.TempDir(), "missing"))
	require.ErrorContains(t, err, "programs dir")

	assert.Positive(t, mr.TotalConnectionCount(), "serve pings the store before loading programs")
	assert.Eventually(t, func() bool { return mr.CurrentConnectionCount() == 0 },
		2*time.Second, 10*time.Millisecond, "redis client left open")
}
