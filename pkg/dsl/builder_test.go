package dsl_test

import (
	"testing"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SequentialChain(t *testing.T) {
	prog, err := dsl.New("chain").
		Assign("a", domain.Lit(1)).
		Assign("b", domain.Lit(2)).
		Assign("c", domain.Lit(3)).
		Build()
	require.NoError(t, err)

	g := prog.Graph
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 3, g.Depth())

	// Walk successor links from the entry and check the statements come back in source order.
	var targets []string
	for id := g.Entry(); id != domain.NoNode; {
		n, ok := g.Node(id)
		require.True(t, ok)
		assert.Equal(t, domain.KindAssign, n.Kind())
		stmt, ok := g.Statement(n.Parent())
		require.True(t, ok)
		targets = append(targets, stmt.Target)
		id = n.Successor(nil)
	}
	assert.Equal(t, []string{"a", "b", "c"}, targets)
}

func TestBuilder_IfJoinsBranches(t *testing.T) {
	prog, err := dsl.New("cond").
		If(domain.Field("vip"),
			func(b *dsl.Block) { b.Assign("tier", domain.Lit("gold")) },
			nil,
		).
		Reply(domain.Var("tier")).
		Build()
	require.NoError(t, err)

	g := prog.Graph
	entry, _ := g.Node(g.Entry())
	branch, ok := entry.(*domain.BranchNode)
	require.True(t, ok, "entry should be the branch node")

	thenNode, ok := g.Node(branch.Then())
	require.True(t, ok)
	assert.Equal(t, domain.KindAssign, thenNode.Kind())

	// The empty else branch falls through to the reply, like the end of the then branch.
	assert.Equal(t, thenNode.Successor(nil), branch.Else())
	reply, ok := g.Node(branch.Else())
	require.True(t, ok)
	assert.Equal(t, domain.KindReply, reply.Kind())
	assert.Equal(t, domain.NoNode, reply.Successor(nil))

	stmts := g.Statements()
	require.Len(t, stmts, 3)
	assert.Equal(t, domain.StmtIf, stmts[0].Kind)
	assert.Equal(t, "tier", stmts[1].Target)
	assert.Equal(t, domain.StmtReply, stmts[2].Kind)
}

func TestBuilder_EmptyProgramIsInvalid(t *testing.T) {
	_, err := dsl.New("empty").Build()
	assert.ErrorIs(t, err, domain.ErrInvalidGraph)
}

func TestBuilder_ParentsAreFixed(t *testing.T) {
	prog, err := dsl.New("p").Source("p.yaml").Assign("x", domain.Lit(5)).Build()
	require.NoError(t, err)

	n, _ := prog.Graph.Node(prog.Graph.Entry())
	stmt, ok := prog.Graph.Statement(n.Parent())
	require.True(t, ok)
	assert.Equal(t, "x := 5", stmt.String())
	assert.Equal(t, "p.yaml: statement 0", stmt.Pos.String())
}
