package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/internal/presentation/graph"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/pool"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed openapi.yaml
var rawSpec []byte

// Spec returns the embedded OpenAPI document.
func Spec() []byte { return rawSpec }

// DefaultWaitTimeout bounds how long a ?wait=true request blocks.
const DefaultWaitTimeout = 30 * time.Second

// Engine defines what the server needs from the weft core. *weft.Engine
// satisfies it.
type Engine interface {
	Receive(ctx context.Context, msg domain.Message, responder ports.Responder) (bool, error)
	Programs() []string
	Program(name string) (*domain.Program, error)
	PoolStats() pool.Stats
}

// Server serves the message entry point over HTTP.
type Server struct {
	Engine  Engine
	Store   ports.ResultStore
	Streams *StreamManager

	doc         *openapi3.T
	handler     http.Handler
	waitTimeout time.Duration
	logger      *slog.Logger
	metrics     http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithResultStore persists every result and enables the /v1/results routes.
func WithResultStore(store ports.ResultStore) Option {
	return func(s *Server) {
		s.Store = store
	}
}

// WithWaitTimeout bounds ?wait=true requests.
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.waitTimeout = d
		}
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	server, err := NewServer(engine, opts...)
	if err != nil {
		return nil, err
	}
	return server.Handler(), nil
}

// NewServer loads the embedded OpenAPI document and builds the router.
func NewServer(engine Engine, opts ...Option) (*Server, error) {
	server := &Server{
		Engine:      engine,
		Streams:     NewStreamManager(),
		waitTimeout: DefaultWaitTimeout,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams.logger = server.logger

	doc, validate, err := newRequestValidator(rawSpec)
	if err != nil {
		return nil, err
	}
	server.doc = doc

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if server.metrics != nil {
		r.Handle("/metrics", server.metrics)
	}

	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/programs", server.ListPrograms)
		r.Get("/programs/{program}", server.GetProgram)
		r.Get("/programs/{program}/graph", server.GetProgramGraph)
		r.With(validate).Post("/programs/{program}/messages", server.SendMessage)
		r.Get("/results/{id}", server.GetResult)
		r.Delete("/results/{id}", server.DeleteResult)
		r.Get("/results/{id}/events", server.SubscribeResult)
	})

	server.handler = enableCORS(r)
	return server, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.handler }

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Weft API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

type healthResponse struct {
	Status string     `json:"status"`
	Pool   pool.Stats `json:"pool"`
}

// GetHealth handles the GET /healthz request. A draining pool reports 503.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.Engine.PoolStats()
	resp := healthResponse{Status: "ok", Pool: stats}
	status := http.StatusOK
	if stats.State == pool.StateShuttingDown || stats.State == pool.StateTerminated {
		resp.Status = "draining"
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc != nil && s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "weft-http",
		"version":     strings.TrimSpace(weft.Version),
		"api_version": apiVersion,
	})
}

// ListPrograms handles the GET /v1/programs request.
func (s *Server) ListPrograms(w http.ResponseWriter, r *http.Request) {
	names := s.Engine.Programs()
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, names)
}

type programResponse struct {
	Name    string        `json:"name"`
	Version string        `json:"version,omitempty"`
	Input   schema.Schema `json:"input,omitempty"`
	Nodes   int           `json:"nodes"`
	Depth   int           `json:"depth"`
}

// GetProgram handles the GET /v1/programs/{program} request.
func (s *Server) GetProgram(w http.ResponseWriter, r *http.Request) {
	prog, ok := s.lookupProgram(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, programResponse{
		Name:    prog.Name,
		Version: prog.Version,
		Input:   prog.Input,
		Nodes:   prog.Graph.Len(),
		Depth:   prog.Graph.Depth(),
	})
}

// GetProgramGraph handles the GET /v1/programs/{program}/graph request.
func (s *Server) GetProgramGraph(w http.ResponseWriter, r *http.Request) {
	prog, ok := s.lookupProgram(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(graph.GenerateMermaid(prog.Graph, nil)))
}

func (s *Server) lookupProgram(w http.ResponseWriter, r *http.Request) (*domain.Program, bool) {
	prog, err := s.Engine.Program(chi.URLParam(r, "program"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrProgramNotFound) {
			status = http.StatusNotFound
		}
		s.writeError(w, status, "unknown_program", err)
		return nil, false
	}
	return prog, true
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, reason string, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Reason: reason})
}
