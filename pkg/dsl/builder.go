package dsl

import (
	"fmt"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/schema"
)

// Builder manages the construction of one program.
type Builder struct {
	name    string
	version string
	file    string
	input   schema.Schema
	root    Block
}

// New creates a builder for the named program.
func New(name string) *Builder {
	return &Builder{name: name}
}

// Version sets the program version label.
func (b *Builder) Version(v string) *Builder {
	b.version = v
	return b
}

// Source records the file the program came from, for statement positions.
func (b *Builder) Source(file string) *Builder {
	b.file = file
	return b
}

// Input sets the schema inbound payloads must satisfy.
func (b *Builder) Input(s schema.Schema) *Builder {
	b.input = s
	return b
}

// Assign appends `target := value` to the top-level block.
func (b *Builder) Assign(target string, value domain.Expr) *Builder {
	b.root.Assign(target, value)
	return b
}

// Reply appends a reply statement to the top-level block.
func (b *Builder) Reply(value domain.Expr) *Builder {
	b.root.Reply(value)
	return b
}

// If appends a conditional to the top-level block. els may be nil.
func (b *Builder) If(cond domain.Expr, then, els func(*Block)) *Builder {
	b.root.If(cond, then, els)
	return b
}

// Body returns the top-level block.
func (b *Builder) Body() *Block {
	return &b.root
}

// Build compiles the statements into a validated program.
func (b *Builder) Build() (*domain.Program, error) {
	c := &compiler{file: b.file}
	c.declare(&b.root)
	entry := c.block(&b.root, domain.NoNode)

	prog := &domain.Program{
		Name:    b.name,
		Version: b.version,
		Graph:   domain.NewGraph(c.nodes, c.stmts, entry),
		Input:   b.input,
	}
	if err := prog.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build program: %w", err)
	}
	return prog, nil
}

type compiler struct {
	file  string
	nodes []domain.Node
	stmts []domain.Statement
}

// declare allocates statement indices in source (pre-)order.
func (c *compiler) declare(b *Block) {
	if b == nil {
		return
	}
	for _, s := range b.stmts {
		s.id = domain.StmtID(len(c.stmts))
		c.stmts = append(c.stmts, domain.Statement{
			ID:     s.id,
			Kind:   s.kind,
			Target: s.target,
			Value:  s.value,
			Cond:   s.cond,
			Pos:    domain.Position{File: c.file, Index: int(s.id)},
		})
		c.declare(s.then)
		c.declare(s.els)
	}
}

// block links the statements of b in reverse so each node knows its successor,
// and returns the entry node of the block (next when the block is empty).
func (c *compiler) block(b *Block, next domain.NodeID) domain.NodeID {
	if b == nil {
		return next
	}
	for i := len(b.stmts) - 1; i >= 0; i-- {
		s := b.stmts[i]
		id := domain.NodeID(len(c.nodes))
		switch s.kind {
		case domain.StmtAssign:
			c.nodes = append(c.nodes, domain.NewAssignEndNode(id, s.id, next))
		case domain.StmtReply:
			c.nodes = append(c.nodes, domain.NewReplyNode(id, s.id, next))
		case domain.StmtIf:
			thenEntry := c.block(s.then, next)
			elseEntry := c.block(s.els, next)
			id = domain.NodeID(len(c.nodes))
			c.nodes = append(c.nodes, domain.NewBranchNode(id, s.id, thenEntry, elseEntry))
		}
		next = id
	}
	return next
}
