package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/internal/presentation/graph"
	"github.com/aretw0/weft/internal/presentation/tui"
	"github.com/aretw0/weft/pkg/domain"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	ProgramPath string
	MessageID   string
	// Payload is a raw JSON object. PayloadFile wins when both are set; "-" reads stdin.
	Payload     string
	PayloadFile string

	JSON   bool // print the result as JSON
	Trace  bool // append a Mermaid graph of the visited nodes
	Pretty bool // render markdown through glamour
	Width  int
	Debug  bool
}

// Run compiles one program file, sends it a single message and prints the
// result. The returned result reports whether the request succeeded.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, opts RunOptions, stdin io.Reader, out io.Writer) (domain.Result, error) {
	payload, err := readPayload(opts, stdin)
	if err != nil {
		return domain.Result{}, err
	}

	var (
		mu      sync.Mutex
		visited []domain.NodeID
	)
	hooks := createDebugHooks(logger)
	logVisit := hooks.OnNodeVisit
	hooks.OnNodeVisit = func(ctx context.Context, e *domain.NodeEvent) {
		mu.Lock()
		visited = append(visited, e.NodeID)
		mu.Unlock()
		logVisit(ctx, e)
	}

	stack, err := NewStack(cfg, logger, StackOptions{Debug: opts.Debug, Hooks: &hooks})
	if err != nil {
		return domain.Result{}, err
	}
	defer stack.Close(context.WithoutCancel(ctx))

	prog, err := stack.Engine.LoadFile(opts.ProgramPath)
	if err != nil {
		return domain.Result{}, err
	}

	result, err := stack.Engine.Send(ctx, domain.Message{
		ID:      opts.MessageID,
		Program: prog.Name,
		Payload: payload,
	})
	if err != nil {
		return domain.Result{}, err
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return result, enc.Encode(result)
	}

	report := tui.ResultMarkdown(result)
	if opts.Trace {
		mu.Lock()
		overlay := graph.OverlayFrom(visited, &result)
		mu.Unlock()
		report += "\n## Trace\n\n```mermaid\n" + graph.GenerateMermaid(prog.Graph, overlay) + "```\n"
	}
	if opts.Pretty {
		rendered, err := tui.NewRenderer(opts.Width)(report)
		if err != nil {
			logger.Warn("markdown rendering failed, printing raw", "err", err)
		} else {
			report = rendered
		}
	}
	_, err = fmt.Fprint(out, report)
	return result, err
}

func readPayload(opts RunOptions, stdin io.Reader) (map[string]any, error) {
	raw := []byte(opts.Payload)
	switch {
	case opts.PayloadFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		raw = data
	case opts.PayloadFile != "":
		data, err := os.ReadFile(opts.PayloadFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}
		raw = data
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("error parsing payload JSON: %w", err)
	}
	return payload, nil
}
