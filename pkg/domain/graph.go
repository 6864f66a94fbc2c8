package domain

import (
	"errors"
	"fmt"
)

// Graph owns the nodes and statements of one program. Nodes and statements
// refer to each other by index only, so the graph has no ownership cycles.
//
// A Graph is immutable once built and is safe for concurrent traversal.
type Graph struct {
	nodes []Node
	stmts []Statement
	entry NodeID
}

// NewGraph assembles a graph from its arenas. Callers normally go through pkg/dsl
// or the compiler, which assign the indices.
func NewGraph(nodes []Node, stmts []Statement, entry NodeID) *Graph {
	return &Graph{
		nodes: append([]Node(nil), nodes...),
		stmts: append([]Statement(nil), stmts...),
		entry: entry,
	}
}

// Entry is the first node of the walk.
func (g *Graph) Entry() NodeID { return g.entry }

// Len is the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Node looks up a node by ID.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil, false
	}
	return g.nodes[id], true
}

// Statement looks up a statement by ID.
func (g *Graph) Statement(id StmtID) (Statement, bool) {
	if id < 0 || int(id) >= len(g.stmts) {
		return Statement{}, false
	}
	return g.stmts[id], true
}

// Nodes returns the node arena in index order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Statements returns the statement arena in index order.
func (g *Graph) Statements() []Statement {
	return append([]Statement(nil), g.stmts...)
}

// Validate checks the structural invariants the walk relies on.
func (g *Graph) Validate() error {
	if _, ok := g.Node(g.entry); !ok {
		return fmt.Errorf("%w: entry node %d", ErrInvalidGraph, g.entry)
	}

	var errs []error
	for i, n := range g.nodes {
		if n == nil {
			errs = append(errs, fmt.Errorf("node %d is nil", i))
			continue
		}
		if int(n.ID()) != i {
			errs = append(errs, fmt.Errorf("node at index %d reports id %d", i, n.ID()))
		}
		if _, ok := g.Statement(n.Parent()); !ok {
			errs = append(errs, fmt.Errorf("node %d: parent statement %d not found", i, n.Parent()))
		}
		for _, t := range Targets(n) {
			if t == NoNode {
				continue
			}
			if _, ok := g.Node(t); !ok {
				errs = append(errs, fmt.Errorf("node %d: successor %d not found", i, t))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidGraph, errors.Join(errs...))
	}

	if cycle := g.findCycle(); cycle != NoNode {
		return fmt.Errorf("%w: cycle through node %d", ErrInvalidGraph, cycle)
	}
	return nil
}

// findCycle returns a node on a cycle reachable from the entry, or NoNode.
func (g *Graph) findCycle() NodeID {
	const (
		unseen = iota
		active
		done
	)
	marks := make([]int, len(g.nodes))

	var visit func(id NodeID) NodeID
	visit = func(id NodeID) NodeID {
		switch marks[id] {
		case active:
			return id
		case done:
			return NoNode
		}
		marks[id] = active
		for _, t := range Targets(g.nodes[id]) {
			if t == NoNode {
				continue
			}
			if c := visit(t); c != NoNode {
				return c
			}
		}
		marks[id] = done
		return NoNode
	}
	return visit(g.entry)
}

// Depth is the number of nodes on the longest path from the entry to a terminal node.
// It assumes a validated, acyclic graph.
func (g *Graph) Depth() int {
	memo := make(map[NodeID]int, len(g.nodes))
	var depth func(id NodeID) int
	depth = func(id NodeID) int {
		if id == NoNode {
			return 0
		}
		if d, ok := memo[id]; ok {
			return d
		}
		best := 0
		for _, t := range Targets(g.nodes[id]) {
			if d := depth(t); d > best {
				best = d
			}
		}
		memo[id] = best + 1
		return best + 1
	}
	return depth(g.entry)
}
