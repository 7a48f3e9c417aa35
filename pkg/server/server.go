// Package server exposes the projection engine over HTTP for visualization
// front-ends.
//
// # Routes
//
//	GET /healthz          liveness probe
//	GET /roots            {"roots": ["ref:HEAD", "index", ...]}
//	GET /nodes/{id}       one projected node with its edges
//	GET /index            {"entries": [{"hash", "path", "stage"}]}
//	GET /graph            a walked, laid out and rendered subgraph
//
// Node identifiers use their external encoding ("ref:refs/heads/main",
// "index", "obj:<hash>"), URL-escaped. Reference names may contain slashes,
// so /nodes matches the rest of the path.
//
// /graph accepts repeated start parameters plus depth, max_nodes,
// follow_hidden, seed (default 42; 0 is a valid seed) and format (json, dot,
// or svg; default json).
//
// # Errors
//
// Failures are returned as {"code": ..., "error": ...}. INVALID_IDENTIFIER
// and the other input codes map to 400, REFERENCE_UNRESOLVABLE and
// OBJECT_NOT_FOUND to 404, and everything else to 500.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gitscope/pkg/buildinfo"
	"github.com/matzehuels/gitscope/pkg/errors"
	"github.com/matzehuels/gitscope/pkg/graph"
	"github.com/matzehuels/gitscope/pkg/ident"
	"github.com/matzehuels/gitscope/pkg/pipeline"
	"github.com/matzehuels/gitscope/pkg/store"
)

// RequestIDHeader carries the per-request id on responses.
const RequestIDHeader = "X-Request-Id"

const shutdownTimeout = 5 * time.Second

// Engine is the projection surface served over HTTP.
type Engine interface {
	pipeline.Resolver
	IndexEntries(ctx context.Context) ([]store.IndexEntry, error)
}

// Server routes HTTP requests to an Engine.
type Server struct {
	engine Engine
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a server. If logger is nil, log.Default() is used.
func New(e Engine, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		engine: e,
		runner: pipeline.NewRunner(e, logger),
		logger: logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/roots", s.handleRoots)
	r.Get("/index", s.handleIndex)
	r.Get("/nodes/*", s.handleNode)
	r.Get("/graph", s.handleGraph)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "listen on %s", addr)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type rootsResponse struct {
	Roots []ident.Identifier `json:"roots"`
}

type indexResponse struct {
	Entries []store.IndexEntry `json:"entries"`
}

type errorResponse struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handleRoots(w http.ResponseWriter, r *http.Request) {
	roots, err := s.engine.Roots(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rootsResponse{Roots: roots.Sorted()})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	entries, err := s.engine.IndexEntries(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []store.IndexEntry{}
	}
	writeJSON(w, http.StatusOK, indexResponse{Entries: entries})
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	// r.URL.Path is already decoded; unescape the raw form exactly once so a
	// literal '%' in a reference name survives.
	raw, err := url.PathUnescape(strings.TrimPrefix(r.URL.EscapedPath(), "/nodes/"))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidIdentifier, err, "malformed escape in node id"))
		return
	}
	id, err := ident.Parse(raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	node, err := s.engine.BuildNode(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graph.Document(node))
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts, err := graphOptions(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Logger = loggerFromContext(r.Context(), s.logger)

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func graphOptions(q url.Values) (pipeline.Options, error) {
	opts := pipeline.Options{Seed: pipeline.DefaultSeed}

	for _, raw := range q["start"] {
		id, err := ident.Parse(raw)
		if err != nil {
			return opts, err
		}
		opts.Start = append(opts.Start, id)
	}

	var err error
	if opts.MaxDepth, err = intParam(q, "depth"); err != nil {
		return opts, err
	}
	if opts.MaxNodes, err = intParam(q, "max_nodes"); err != nil {
		return opts, err
	}
	if v := q.Get("seed"); v != "" {
		if opts.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "seed")
		}
	}
	if v := q.Get("follow_hidden"); v != "" {
		if opts.FollowHidden, err = strconv.ParseBool(v); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "follow_hidden")
		}
	}
	if v := q.Get("detailed"); v != "" {
		if opts.Detailed, err = strconv.ParseBool(v); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "detailed")
		}
	}

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, err
	}
	opts.Formats = []string{format}

	return opts, opts.ValidateAndSetDefaults()
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", name)
	}
	return n, nil
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context(), s.logger).Error("request failed", "code", code, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Error: errors.UserMessage(err)})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidIdentifier, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeReferenceUnresolvable, errors.ErrCodeObjectNotFound, errors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
