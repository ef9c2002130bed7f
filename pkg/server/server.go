package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"railctl/pkg/logging"
	"railctl/pkg/tools"
	"railctl/pkg/trainstatus"
)

// StatusCompiler compiles a structured report. *trainstatus.Resolver satisfies it.
type StatusCompiler interface {
	Compile(ctx context.Context, req trainstatus.Request, now time.Time) (*trainstatus.Report, error)
}

// Options configure the HTTP server.
type Options struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server exposes train status and the agent tools over HTTP
type Server struct {
	resolver StatusCompiler
	tools    *tools.Registry
	logger   *slog.Logger
	origins  []string
	now      func() time.Time
}

func New(resolver StatusCompiler, registry *tools.Registry, opts Options) *Server {
	s := &Server{
		resolver: resolver,
		tools:    registry,
		logger:   logging.OrNop(opts.Logger),
		origins:  opts.AllowedOrigins,
		now:      time.Now,
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	return s
}

// StatusResponse is the JSON response structure for GET /api/status
type StatusResponse struct {
	Title  string              `json:"title"`
	Text   string              `json:"text"`
	Report *trainstatus.Report `json:"report"`
	Mode   string              `json:"mode"`
	Window struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	} `json:"window"`
	PolledAt time.Time `json:"polledAt"`
}

// ToolResponse is the JSON response structure for POST /api/tools/{name}
type ToolResponse struct {
	Tool   string `json:"tool"`
	Result string `json:"result"`
}

// ErrorResponse is the JSON error response structure
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"timestamp": s.now().UTC(),
		})
	})

	r.Get("/api/status", s.getStatus)
	r.Get("/api/tools", s.listTools)
	r.Post("/api/tools/{name}", s.executeTool)

	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("API server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// getStatus handles GET /api/status?mode=&dep=&arr=[&format=json]
func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := trainstatus.Request{
		Mode:        trainstatus.ParseMode(q.Get("mode")),
		Origin:      q.Get("dep"),
		Destination: q.Get("arr"),
	}

	rep, err := s.resolver.Compile(r.Context(), req, s.now())
	status := http.StatusOK
	if err != nil {
		status = http.StatusBadRequest
	}

	if q.Get("format") != "json" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		io.WriteString(w, rep.Render()+"\n")
		return
	}

	if err != nil {
		writeJSON(w, status, ErrorResponse{Error: err.Error()})
		return
	}

	resp := StatusResponse{
		Title:    rep.Query.Title(),
		Text:     rep.Render(),
		Report:   rep,
		Mode:     rep.Query.Mode.String(),
		PolledAt: s.now().UTC(),
	}
	resp.Window.Start = rep.Query.Start
	resp.Window.End = rep.Query.End

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}

// listTools handles GET /api/tools
func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tools.List())
}

// executeTool handles POST /api/tools/{name}; the body holds the JSON arguments.
func (s *Server) executeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if s.tools.Get(name) == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown tool: " + name})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}

	result, err := s.tools.Execute(r.Context(), name, string(body))
	if err != nil {
		s.logger.Warn("tool call failed", "tool", name, "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, ToolResponse{Tool: name, Result: result})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
