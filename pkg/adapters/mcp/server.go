package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/internal/presentation/graph"
	"github.com/aretw0/weft/pkg/callback"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	programsURI      = "weft://programs"
	programGraphURI  = "weft://programs/{name}/graph"
	defaultWaitLimit = 30 * time.Second
)

// SendResponse is the structured output of the send_message tool.
type SendResponse struct {
	MessageID string         `json:"message_id" jsonschema_description:"Identifier of the accepted message"`
	Program   string         `json:"program" jsonschema_description:"Program the message was sent to"`
	Completed bool           `json:"completed" jsonschema_description:"Whether the result arrived before the call returned"`
	Result    *domain.Result `json:"result,omitempty" jsonschema_description:"The result, when completed"`
}

// SendArgs are the arguments of the send_message tool.
type SendArgs struct {
	Program string `json:"program"`
	ID      string `json:"id,omitempty"`
	Payload string `json:"payload,omitempty"`
	Wait    *bool  `json:"wait,omitempty"`
}

// Engine defines what the MCP server needs from the weft core.
type Engine interface {
	Receive(ctx context.Context, msg domain.Message, responder ports.Responder) (bool, error)
	Programs() []string
	Program(name string) (*domain.Program, error)
}

// Server wraps the weft Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	store     ports.ResultStore
	logger    *slog.Logger
	waitLimit time.Duration
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithResultStore persists results and enables the get_result tool.
func WithResultStore(store ports.ResultStore) Option {
	return func(s *Server) { s.store = store }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWaitLimit bounds how long send_message waits for a result.
func WithWaitLimit(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.waitLimit = d
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		waitLimit: defaultWaitLimit,
		mcpServer: server.NewMCPServer("weft-mcp", strings.TrimSpace(weft.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send a message to a registered program. By default waits for the result."),
		mcp.WithString("program", mcp.Required(), mcp.Description("Name of the target program")),
		mcp.WithString("payload", mcp.Description("JSON object with the message payload (optional)")),
		mcp.WithString("id", mcp.Description("Message ID; generated when omitted")),
		mcp.WithBoolean("wait", mcp.Description("Wait for the result (default true)")),
		mcp.WithOutputSchema[SendResponse](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSendMessage))

	s.mcpServer.AddTool(mcp.NewTool("list_programs",
		mcp.WithDescription("List the registered program names."),
	), s.handleListPrograms)

	s.mcpServer.AddTool(mcp.NewTool("get_result",
		mcp.WithDescription("Fetch the stored result of a message."),
		mcp.WithString("message_id", mcp.Required(), mcp.Description("Message ID returned by send_message")),
	), s.handleGetResult)
}

func (s *Server) handleSendMessage(ctx context.Context, _ mcp.CallToolRequest, args SendArgs) (SendResponse, error) {
	if args.Program == "" {
		return SendResponse{}, errors.New("program is required")
	}
	msg := domain.Message{ID: args.ID, Program: args.Program}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if args.Payload != "" {
		if err := json.Unmarshal([]byte(args.Payload), &msg.Payload); err != nil {
			return SendResponse{}, fmt.Errorf("payload must be a JSON object: %w", err)
		}
	}
	wait := args.Wait == nil || *args.Wait

	responders := []ports.Responder{}
	if s.store != nil {
		responders = append(responders, callback.ToStore(s.store))
	}
	ch := callback.NewChan()
	if wait {
		responders = append(responders, ch)
	}
	if len(responders) == 0 {
		responders = append(responders, callback.Func(func(context.Context, domain.Result) error { return nil }))
	}

	if _, err := s.engine.Receive(ctx, msg, callback.Multi(responders...)); err != nil {
		s.logger.Warn("MCP send_message: rejected", "message_id", msg.ID, "program", msg.Program, "err", err)
		return SendResponse{}, err
	}

	resp := SendResponse{MessageID: msg.ID, Program: msg.Program}
	if !wait {
		return resp, nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, s.waitLimit)
	defer cancel()
	result, err := ch.Wait(waitCtx)
	if err != nil {
		s.logger.Debug("MCP send_message: result not ready", "message_id", msg.ID, "err", err)
		return resp, nil
	}
	resp.Completed = true
	resp.Result = &result
	return resp, nil
}

func (s *Server) handleListPrograms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := s.engine.Programs()
	if names == nil {
		names = []string{}
	}
	jsonBytes, _ := json.Marshal(names)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetResult(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("no result store configured"), nil
	}
	id, err := request.RequireString("message_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.store.Load(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(programsURI, "Registered programs",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names := s.engine.Programs()
		if names == nil {
			names = []string{}
		}
		jsonBytes, _ := json.Marshal(names)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      programsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(programGraphURI, "Program graph",
		mcp.WithTemplateDescription("Mermaid flowchart of a program graph"),
		mcp.WithTemplateMIMEType("text/plain"),
	), s.readProgramGraph)
}

func (s *Server) readProgramGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	name := strings.TrimSuffix(strings.TrimPrefix(uri, programsURI+"/"), "/graph")
	if name == "" || name == uri {
		return nil, fmt.Errorf("invalid program graph uri %q", uri)
	}
	prog, err := s.engine.Program(name)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     graph.GenerateMermaid(prog.Graph, nil),
		},
	}, nil
}
