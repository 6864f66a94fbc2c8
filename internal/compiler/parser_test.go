package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greetYAML = `
name: greet
version: 1
input:
  name: string
statements:
  - assign: greeting
    value: hello
  - assign: who
    value: {field: name}
  - if: {eq: [{var: who}, admin]}
    then:
      - assign: greeting
        value: welcome back
    else: []
  - reply: {var: greeting}
`

func TestParse_Program(t *testing.T) {
	prog, err := Parse([]byte(greetYAML))
	require.NoError(t, err)

	assert.Equal(t, "greet", prog.Name)
	assert.Equal(t, "1", prog.Version)
	assert.Equal(t, []string{"name"}, prog.Input.Fields())
	assert.Equal(t, 5, prog.Graph.Len())

	var kinds []domain.StmtKind
	for _, s := range prog.Graph.Statements() {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []domain.StmtKind{
		domain.StmtAssign, domain.StmtAssign, domain.StmtIf, domain.StmtAssign, domain.StmtReply,
	}, kinds)

	entry, ok := prog.Graph.Node(prog.Graph.Entry())
	require.True(t, ok)
	stmt, _ := prog.Graph.Statement(entry.Parent())
	assert.Equal(t, `greeting := "hello"`, stmt.String())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		index int
	}{
		{"invalid yaml", "name: [", -1},
		{"empty", "", -1},
		{"no name", "statements:\n  - assign: x\n    value: 1\n", -1},
		{"unknown key", "name: p\nstatments: []\n", -1},
		{"no statements", "name: p\n", -1},
		{"bad type", "name: p\ninput: {a: decimal}\nstatements:\n  - reply: 1\n", -1},
		{"two kinds", "name: p\nstatements:\n  - reply: 1\n    assign: x\n", 0},
		{"no kind", "name: p\nstatements:\n  - reply: 1\n  - value: 2\n", 1},
		{"bad operator", "name: p\nstatements:\n  - reply: {add: [1, 2]}\n", 0},
		{"bad eq arity", "name: p\nstatements:\n  - if: {eq: [1]}\n", 0},
		{"nested", "name: p\nstatements:\n  - if: true\n    then:\n      - reply: {var: \"\"}\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "got %T: %v", err, err)
			assert.Equal(t, tt.index, perr.Index)
		})
	}
}

func TestParseExpr(t *testing.T) {
	e, err := parseExpr(map[string]any{"not": map[string]any{"field": "user.vip"}})
	require.NoError(t, err)
	assert.Equal(t, "!msg.user.vip", e.String())

	e, err = parseExpr(map[string]any{"lit": map[string]any{"a": 1}})
	require.NoError(t, err)
	assert.Equal(t, domain.OpLit, e.Op)

	e, err = parseExpr([]any{1, 2})
	require.NoError(t, err)
	assert.Equal(t, domain.OpLit, e.Op)

	_, err = parseExpr(map[string]any{"var": "a", "field": "b"})
	assert.ErrorIs(t, err, domain.ErrInvalidExpr)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("b.yaml", "name: beta\nstatements:\n  - assign: x\n    value: 1\n")
	write("alpha.yml", "statements:\n  - reply: hi\n")
	write("notes.txt", "ignored")

	progs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, progs, 2)
	assert.Equal(t, "alpha", progs[0].Name, "name defaults to the file name")
	assert.Equal(t, "beta", progs[1].Name)

	write("c.yaml", "name: beta\nstatements:\n  - reply: 1\n")
	_, err = LoadDir(dir)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Error(), "already defined")
}
