package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/canvas/internal/logging"
	"github.com/aretw0/canvas/pkg/autosave"
	"github.com/aretw0/canvas/pkg/constraint"
	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/observability"
	"github.com/aretw0/canvas/pkg/ports"
	"github.com/aretw0/canvas/pkg/propsource"
	"github.com/aretw0/canvas/pkg/requirements"
	"github.com/aretw0/canvas/pkg/shape"
	"github.com/aretw0/canvas/pkg/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// PermissionsHeader carries the caller's permissions, comma separated.
const PermissionsHeader = "X-Canvas-Permissions"

// Permissions required by mutating endpoints.
const (
	PermissionEditDrafts = "edit canvas drafts"
	PermissionPublish    = "publish canvas drafts"
)

// Watchable reports changes to the component definitions.
type Watchable interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// Server exposes validation, requirements, resolution and auto-save over HTTP.
type Server struct {
	Definitions ports.ComponentDefinitionProvider
	Hosts       ports.HostProvider
	Drafts      *autosave.Manager
	Streams     *StreamManager

	validator constraint.Validator
	matcher   *shape.Matcher
	resolver  *propsource.Resolver
	cache     *propsource.RequestCache
	watcher   Watchable
	metrics   *observability.Metrics
	gatherer  prometheus.Gatherer
	version   string
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithValidator replaces the tree validator used by POST /validate.
func WithValidator(v constraint.Validator) Option {
	return func(s *Server) { s.validator = v }
}

// WithMatcher sets the shape matcher used for requirement checks.
func WithMatcher(m *shape.Matcher) Option {
	return func(s *Server) { s.matcher = m }
}

// WithResolver sets the prop source resolver. cache, when not nil, must be
// the cache the resolver was built with; it is scoped to each request.
func WithResolver(r *propsource.Resolver, cache *propsource.RequestCache) Option {
	return func(s *Server) {
		s.resolver = r
		s.cache = cache
	}
}

// WithWatcher enables definition reload events on GET /events.
func WithWatcher(w Watchable) Option {
	return func(s *Server) { s.watcher = w }
}

// WithMetrics records requirement failures and serves gatherer on /metrics.
func WithMetrics(m *observability.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer wires a server. drafts may be nil, which disables /autosave.
func NewServer(definitions ports.ComponentDefinitionProvider, hosts ports.HostProvider, drafts *autosave.Manager, opts ...Option) *Server {
	s := &Server{
		Definitions: definitions,
		Hosts:       hosts,
		Drafts:      drafts,
		version:     "dev",
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	if s.validator == nil {
		s.validator = constraint.NewValidComponentTree(definitions, constraint.WithLogger(s.logger))
	}
	if s.matcher == nil {
		s.matcher = shape.NewMatcher()
	}
	if s.resolver == nil {
		s.cache = propsource.NewRequestCache()
		s.resolver = propsource.NewResolver(propsource.WithCache(s.cache), propsource.WithLogger(s.logger))
	}
	return s
}

// NewHandler creates the HTTP handler for s.
func NewHandler(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestScope)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/components", func(r chi.Router) {
		r.Get("/", s.ListComponents)
		r.Get("/{id}", s.GetComponent)
		r.Get("/{id}/requirements", s.GetRequirements)
	})

	r.Post("/validate", s.Validate)
	r.Post("/resolve/{type}/{id}", s.Resolve)

	if s.Drafts != nil {
		r.Route("/autosave/{type}/{id}", func(r chi.Router) {
			r.Get("/", s.GetDraft)
			r.Put("/", s.SaveDraft)
			r.Delete("/", s.DiscardDraft)
			r.Post("/publish", s.PublishDraft)
		})
	}

	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", observability.Handler(s.gatherer))
	}

	return enableCORS(r)
}

// requestScope opens the resolver's request cache for the lifetime of the
// HTTP request.
func (s *Server) requestScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := middleware.GetReqID(r.Context())
		if s.cache == nil || id == "" {
			next.ServeHTTP(w, r)
			return
		}
		s.cache.Begin(id)
		defer s.cache.End(id)
		next.ServeHTTP(w, r.WithContext(propsource.ContextWithRequestID(r.Context(), id)))
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+PermissionsHeader)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "canvas-http",
		"version": strings.TrimSpace(s.version),
	})
}

// requirePermission fails with *domain.AccessDeniedError unless the request
// header grants permission.
func requirePermission(r *http.Request, operation, permission string) error {
	for _, p := range strings.Split(r.Header.Get(PermissionsHeader), ",") {
		if strings.TrimSpace(p) == permission {
			return nil
		}
	}
	return &domain.AccessDeniedError{Operation: operation, Permission: permission}
}

type errorResponse struct {
	Error      string                 `json:"error"`
	Violations []validation.Violation `json:"violations,omitempty"`
	Messages   []string               `json:"messages,omitempty"`
}

func statusFor(err error) int {
	var (
		reqErr *requirements.ComponentDoesNotMeetRequirementsError
		resErr *propsource.ResolutionError
		badReq *badRequestError
	)
	switch {
	case errors.As(err, &badReq):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrComponentNotFound),
		errors.Is(err, domain.ErrVersionNotFound),
		errors.Is(err, domain.ErrHostNotFound),
		errors.Is(err, domain.ErrDraftNotFound):
		return http.StatusNotFound
	case validation.Violations(err) != nil,
		errors.Is(err, domain.ErrMissingInputs),
		errors.As(err, &reqErr),
		errors.As(err, &resErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	resp := errorResponse{Error: err.Error(), Violations: validation.Violations(err)}
	var reqErr *requirements.ComponentDoesNotMeetRequirementsError
	if errors.As(err, &reqErr) {
		resp.Messages = reqErr.Messages
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &badRequestError{err: err}
	}
	return nil
}

type badRequestError struct{ err error }

func (e *badRequestError) Error() string { return "invalid request body: " + e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }
