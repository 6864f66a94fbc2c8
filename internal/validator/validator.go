// Package validator lints compiled programs beyond the structural checks
// performed when a graph is built.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
)

// Finding is one problem found in a program.
type Finding struct {
	NodeID  domain.NodeID
	Message string
}

func (f Finding) String() string {
	if f.NodeID == domain.NoNode {
		return f.Message
	}
	return fmt.Sprintf("node %d: %s", f.NodeID, f.Message)
}

// Error aggregates the findings of ValidateProgram.
type Error struct {
	Program  string
	Findings []Finding
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Findings))
	for i, f := range e.Findings {
		lines[i] = f.String()
	}
	return fmt.Sprintf("program %s: found %d problem(s):\n- %s", e.Program, len(e.Findings), strings.Join(lines, "\n- "))
}

// ValidateProgram crawls the graph from its entry node and reports nodes that
// can never run, variables read but never assigned, and payload fields the
// input schema does not declare. A nil error means the program is clean.
func ValidateProgram(p *domain.Program) error {
	g := p.Graph
	var findings []Finding

	visited := make(map[domain.NodeID]bool)
	assigned := make(map[string]bool)
	queue := []domain.NodeID{g.Entry()}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == domain.NoNode || visited[current] {
			continue
		}
		visited[current] = true

		node, ok := g.Node(current)
		if !ok {
			findings = append(findings, Finding{NodeID: current, Message: "missing node"})
			continue
		}
		if stmt, ok := g.Statement(node.Parent()); ok && stmt.Kind == domain.StmtAssign {
			assigned[stmt.Target] = true
		}
		for _, target := range domain.Targets(node) {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	for _, n := range g.Nodes() {
		if !visited[n.ID()] {
			findings = append(findings, Finding{NodeID: n.ID(), Message: fmt.Sprintf("unreachable %s node", n.Kind())})
		}
	}

	for _, n := range g.Nodes() {
		if !visited[n.ID()] {
			continue
		}
		stmt, ok := g.Statement(n.Parent())
		if !ok {
			continue
		}
		for _, e := range []domain.Expr{stmt.Value, stmt.Cond} {
			walkExpr(e, func(e domain.Expr) {
				switch e.Op {
				case domain.OpVar:
					if !assigned[e.Name] {
						findings = append(findings, Finding{NodeID: n.ID(), Message: fmt.Sprintf("variable %q is never assigned", e.Name)})
					}
				case domain.OpField:
					if len(p.Input) == 0 {
						return
					}
					root, _, _ := strings.Cut(e.Name, ".")
					_, required := p.Input[root]
					_, optional := p.Input[root+"?"]
					if !required && !optional {
						findings = append(findings, Finding{NodeID: n.ID(), Message: fmt.Sprintf("field %q is not declared in the input schema", root)})
					}
				}
			})
		}
	}

	if len(findings) == 0 {
		return nil
	}
	sort.SliceStable(findings, func(i, j int) bool { return findings[i].NodeID < findings[j].NodeID })
	return &Error{Program: p.Name, Findings: findings}
}

func walkExpr(e domain.Expr, fn func(domain.Expr)) {
	if e.IsZero() {
		return
	}
	fn(e)
	for _, a := range e.Args {
		walkExpr(a, fn)
	}
}
