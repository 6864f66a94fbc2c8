package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
)

// ResultMarkdown renders a result as a markdown report.
func ResultMarkdown(r domain.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", r.Program)
	fmt.Fprintf(&sb, "- **message**: `%s`\n", r.MessageID)
	fmt.Fprintf(&sb, "- **status**: %s\n", r.Status)
	fmt.Fprintf(&sb, "- **steps**: %d\n", r.Steps)
	fmt.Fprintf(&sb, "- **duration**: %s\n", r.Duration)

	if r.Value != nil {
		sb.WriteString("\n## Reply\n\n")
		sb.WriteString("```json\n" + toJSON(r.Value) + "\n```\n")
	}

	if len(r.Bindings) > 0 {
		sb.WriteString("\n## Bindings\n\n")
		sb.WriteString("| name | value |\n|---|---|\n")
		names := make([]string, 0, len(r.Bindings))
		for k := range r.Bindings {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Fprintf(&sb, "| `%s` | `%s` |\n", k, toJSON(r.Bindings[k]))
		}
	}

	if f := r.Failure; f != nil {
		sb.WriteString("\n## Failure\n\n")
		fmt.Fprintf(&sb, "- **kind**: %s\n", f.Kind)
		fmt.Fprintf(&sb, "- **node**: %d (%s)\n", f.NodeID, f.NodeKind)
		if f.Statement != "" {
			fmt.Fprintf(&sb, "- **statement**: `%s`\n", f.Statement)
		}
		fmt.Fprintf(&sb, "\n> %s\n", f.Message)
	}
	return sb.String()
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
