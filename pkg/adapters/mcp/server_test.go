package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/dsl"
	"github.com/aretw0/weft/pkg/pool"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *weft.Engine {
	t.Helper()
	eng := weft.New(weft.WithPoolConfig(pool.Config{Workers: 1, QueueCapacity: 4}))
	t.Cleanup(func() { eng.Shutdown(context.Background()) })

	prog, err := dsl.New("echo").
		Assign("out", domain.Field("text")).
		Reply(domain.Var("out")).
		Build()
	require.NoError(t, err)
	require.NoError(t, eng.Register(prog))
	return eng
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestSendMessage_Wait(t *testing.T) {
	store := memory.NewResultStore()
	s := NewServer(newEngine(t), WithResultStore(store))

	resp, err := s.handleSendMessage(context.Background(), mcp.CallToolRequest{}, SendArgs{
		Program: "echo",
		ID:      "mcp-1",
		Payload: `{"text":"hi"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "mcp-1", resp.MessageID)
	require.True(t, resp.Completed)
	assert.Equal(t, "hi", resp.Result.Value)

	stored, err := store.Load(context.Background(), "mcp-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, stored.Status)

	res, err := s.handleGetResult(context.Background(), callRequest(map[string]any{"message_id": "mcp-1"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	var got domain.Result
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &got))
	assert.Equal(t, "hi", got.Value)
}

func TestSendMessage_NoWait(t *testing.T) {
	s := NewServer(newEngine(t))
	wait := false

	resp, err := s.handleSendMessage(context.Background(), mcp.CallToolRequest{}, SendArgs{
		Program: "echo",
		Payload: `{"text":"later"}`,
		Wait:    &wait,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.MessageID)
	assert.False(t, resp.Completed)
	assert.Nil(t, resp.Result)
}

func TestSendMessage_Errors(t *testing.T) {
	s := NewServer(newEngine(t))

	_, err := s.handleSendMessage(context.Background(), mcp.CallToolRequest{}, SendArgs{})
	assert.Error(t, err)

	_, err = s.handleSendMessage(context.Background(), mcp.CallToolRequest{}, SendArgs{Program: "echo", Payload: "[1]"})
	assert.ErrorContains(t, err, "JSON object")

	_, err = s.handleSendMessage(context.Background(), mcp.CallToolRequest{}, SendArgs{Program: "missing"})
	assert.ErrorIs(t, err, domain.ErrRejected)
}

func TestListProgramsAndGetResult(t *testing.T) {
	s := NewServer(newEngine(t))

	res, err := s.handleListPrograms(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `["echo"]`, textOf(t, res))

	res, err = s.handleGetResult(context.Background(), callRequest(map[string]any{"message_id": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "no store configured")
}

func TestReadProgramGraph(t *testing.T) {
	s := NewServer(newEngine(t))

	var req mcp.ReadResourceRequest
	req.Params.URI = "weft://programs/echo/graph"
	contents, err := s.readProgramGraph(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcp.TextResourceContents)
	assert.Contains(t, text.Text, "graph TD")

	req.Params.URI = "weft://programs/nope/graph"
	_, err = s.readProgramGraph(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrProgramNotFound)
}
