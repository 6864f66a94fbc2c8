package domain_test

import (
	"testing"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionContext_Bind(t *testing.T) {
	ectx := domain.NewExecutionContext(domain.Message{ID: "m1"}, nil)

	require.NoError(t, ectx.Bind("x", 5))
	require.NoError(t, ectx.Bind("y", 6))
	require.NoError(t, ectx.Bind("x", 7))

	v, ok := ectx.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, []string{"x", "y"}, ectx.Assigned())

	for _, bad := range []string{"", "  ", "sys", "sys.ans", "msg.body"} {
		assert.ErrorIs(t, ectx.Bind(bad, 1), domain.ErrInvalidTarget, bad)
	}
}

func TestExecutionContext_BindingsAreCopied(t *testing.T) {
	ectx := domain.NewExecutionContext(domain.Message{}, nil)
	require.NoError(t, ectx.Bind("x", 1))

	snapshot := ectx.Bindings()
	snapshot["x"] = 99

	v, _ := ectx.Lookup("x")
	assert.Equal(t, 1, v)
}

func TestExecutionContext_StartsAtEntry(t *testing.T) {
	g := domain.NewGraph([]domain.Node{domain.NewReplyNode(0, 0, domain.NoNode)},
		[]domain.Statement{{ID: 0, Kind: domain.StmtReply, Value: domain.Lit("ok")}}, 0)
	ectx := domain.NewExecutionContext(domain.Message{}, &domain.Program{Name: "p", Graph: g})

	assert.Equal(t, domain.NodeID(0), ectx.Cursor())
	_, replied := ectx.Reply()
	assert.False(t, replied)
}

func TestMessage_Lookup(t *testing.T) {
	msg := domain.Message{Payload: map[string]any{
		"order": map[string]any{"id": "o-1", "qty": 2},
		"flag":  true,
	}}

	v, ok := msg.Lookup("order.id")
	assert.True(t, ok)
	assert.Equal(t, "o-1", v)

	_, ok = msg.Lookup("order.missing")
	assert.False(t, ok)
	_, ok = msg.Lookup("flag.deeper")
	assert.False(t, ok)
	_, ok = msg.Lookup("")
	assert.False(t, ok)
}
