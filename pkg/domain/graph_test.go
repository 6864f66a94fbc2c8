package domain_test

import (
	"testing"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assignStmts(n int) []domain.Statement {
	stmts := make([]domain.Statement, n)
	for i := range stmts {
		stmts[i] = domain.Statement{ID: domain.StmtID(i), Kind: domain.StmtAssign, Target: "v", Value: domain.Lit(i)}
	}
	return stmts
}

func TestGraph_Validate(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []domain.Node
		entry   domain.NodeID
		wantErr bool
	}{
		{
			name:  "single terminal node",
			nodes: []domain.Node{domain.NewAssignEndNode(0, 0, domain.NoNode)},
			entry: 0,
		},
		{
			name:    "missing entry",
			nodes:   []domain.Node{domain.NewAssignEndNode(0, 0, domain.NoNode)},
			entry:   3,
			wantErr: true,
		},
		{
			name:    "dangling successor",
			nodes:   []domain.Node{domain.NewAssignEndNode(0, 0, 7)},
			entry:   0,
			wantErr: true,
		},
		{
			name:    "unknown parent",
			nodes:   []domain.Node{domain.NewAssignEndNode(0, 9, domain.NoNode)},
			entry:   0,
			wantErr: true,
		},
		{
			name:    "id does not match index",
			nodes:   []domain.Node{domain.NewAssignEndNode(1, 0, domain.NoNode)},
			entry:   0,
			wantErr: true,
		},
		{
			name: "cycle",
			nodes: []domain.Node{
				domain.NewAssignEndNode(0, 0, 1),
				domain.NewAssignEndNode(1, 1, 0),
			},
			entry:   0,
			wantErr: true,
		},
		{
			name: "branch cycle",
			nodes: []domain.Node{
				domain.NewBranchNode(0, 0, 1, domain.NoNode),
				domain.NewAssignEndNode(1, 1, 0),
			},
			entry:   0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := domain.NewGraph(tt.nodes, assignStmts(2), tt.entry)
			err := g.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidGraph)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGraph_Depth(t *testing.T) {
	nodes := []domain.Node{
		domain.NewAssignEndNode(0, 0, domain.NoNode),
		domain.NewAssignEndNode(1, 1, 0),
		domain.NewBranchNode(2, 2, 1, 0),
	}
	stmts := assignStmts(3)
	g := domain.NewGraph(nodes, stmts, 2)
	require.NoError(t, g.Validate())
	assert.Equal(t, 3, g.Depth())
}

func TestGraph_IsolatedFromBuilderSlices(t *testing.T) {
	nodes := []domain.Node{domain.NewAssignEndNode(0, 0, domain.NoNode)}
	g := domain.NewGraph(nodes, assignStmts(1), 0)
	nodes[0] = nil

	n, ok := g.Node(0)
	require.True(t, ok)
	assert.NotNil(t, n)
}
