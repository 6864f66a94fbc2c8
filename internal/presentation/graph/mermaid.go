package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
)

// GraphOverlay contains request data to visualize on the graph.
type GraphOverlay struct {
	Visited []domain.NodeID
	// Failed marks the node a request failed on, if any.
	Failed *domain.NodeID
}

// OverlayFrom builds an overlay from the nodes a request visited and its result.
func OverlayFrom(visited []domain.NodeID, result *domain.Result) *GraphOverlay {
	o := &GraphOverlay{Visited: visited}
	if result != nil && result.Failure != nil && result.Failure.NodeID != domain.NoNode {
		id := result.Failure.NodeID
		o.Failed = &id
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of a program graph.
// It applies semantic styling:
// - Entry/exit: ((Circle))
// - Assign: [Rectangle]
// - Reply: [/Parallelogram/]
// - Branch: {Rhombus}
// It also applies overlay styles (Visited/Failed) if provided.
func GenerateMermaid(g *domain.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    start((\"start\"))\n")
	sb.WriteString("    done((\"end\"))\n")
	sb.WriteString(fmt.Sprintf("    start --> %s\n", target(g.Entry())))

	for _, node := range g.Nodes() {
		id := nodeID(node.ID())

		opener, closer := "[", "]"
		switch node.Kind() {
		case domain.KindReply:
			opener, closer = "[/", "/]"
		case domain.KindBranch:
			opener, closer = "{", "}"
		}

		label := string(node.Kind())
		if stmt, ok := g.Statement(node.Parent()); ok {
			label = stmt.String()
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, escape(label), closer))

		if b, ok := node.(*domain.BranchNode); ok {
			sb.WriteString(fmt.Sprintf("    %s -- \"then\" --> %s\n", id, target(b.Then())))
			sb.WriteString(fmt.Sprintf("    %s -- \"else\" --> %s\n", id, target(b.Else())))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", id, target(node.Successor(nil))))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.NodeID]bool)
		for _, v := range overlay.Visited {
			if _, ok := g.Node(v); !ok || seen[v] {
				continue
			}
			seen[v] = true
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", nodeID(v)))
		}
		if overlay.Failed != nil {
			if _, ok := g.Node(*overlay.Failed); ok {
				sb.WriteString(fmt.Sprintf("    class %s failed;\n", nodeID(*overlay.Failed)))
			}
		}
	}

	return sb.String()
}

func nodeID(id domain.NodeID) string { return fmt.Sprintf("n%d", id) }

func target(id domain.NodeID) string {
	if id == domain.NoNode {
		return "done"
	}
	return nodeID(id)
}

// escape keeps labels inside Mermaid's quoted strings.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
