package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/canvas/internal/logging"
	"github.com/aretw0/canvas/pkg/constraint"
	"github.com/aretw0/canvas/pkg/ports"
	"github.com/aretw0/canvas/pkg/propsource"
	"github.com/aretw0/canvas/pkg/shape"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ComponentsURI is the resource listing every component definition.
const ComponentsURI = "canvas://components"

// Server exposes component tree authoring tools over MCP.
type Server struct {
	definitions ports.ComponentDefinitionProvider
	hosts       ports.HostProvider
	validator   constraint.Validator
	matcher     *shape.Matcher
	resolver    *propsource.Resolver
	newUUID     func() string
	logger      *slog.Logger
	mcpServer   *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithValidator replaces the validator applied to trees.
func WithValidator(v constraint.Validator) Option {
	return func(s *Server) { s.validator = v }
}

// WithMatcher sets the shape matcher used for requirement checks.
func WithMatcher(m *shape.Matcher) Option {
	return func(s *Server) { s.matcher = m }
}

// WithResolver sets the resolver used by resolve_component_inputs.
func WithResolver(r *propsource.Resolver) Option {
	return func(s *Server) { s.resolver = r }
}

// WithUUIDGenerator replaces the generator of new instance UUIDs.
func WithUUIDGenerator(fn func() string) Option {
	return func(s *Server) { s.newUUID = fn }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new MCP Server instance. hosts may be nil, in which
// case resolve_component_inputs is not offered.
func NewServer(definitions ports.ComponentDefinitionProvider, hosts ports.HostProvider, version string, opts ...Option) *Server {
	s := &Server{
		definitions: definitions,
		hosts:       hosts,
		newUUID:     newInstanceUUID,
		logger:      logging.NewNop(),
		mcpServer:   server.NewMCPServer("canvas-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = constraint.NewValidComponentTree(definitions, constraint.WithLogger(s.logger))
	}
	if s.matcher == nil {
		s.matcher = shape.NewMatcher()
	}
	if s.resolver == nil {
		s.resolver = propsource.NewResolver(propsource.WithLogger(s.logger))
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
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

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
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
	s.mcpServer.AddTool(mcp.NewTool("validate_component_tree",
		mcp.WithDescription("Validate a component tree. Returns every violation with its property path."),
		mcp.WithString("tree", mcp.Required(), mcp.Description("The component tree as a YAML or JSON list of items")),
	), s.handleValidate)

	s.mcpServer.AddTool(mcp.NewTool("get_component_requirements",
		mcp.WithDescription("Check whether a component definition meets the requirements to be placed in a tree."),
		mcp.WithString("component_id", mcp.Required(), mcp.Description("The component id, e.g. sdc.canvas.heading")),
	), s.handleRequirements)

	s.mcpServer.AddTool(mcp.NewTool("add_component_instance",
		mcp.WithDescription("Add a new component instance to a tree and return the validated result."),
		mcp.WithString("tree", mcp.Description("The existing component tree as YAML or JSON (optional)")),
		mcp.WithString("component_id", mcp.Required(), mcp.Description("The component to instantiate")),
		mcp.WithString("parent_uuid", mcp.Description("The parent instance UUID (optional, root when omitted)")),
		mcp.WithString("slot", mcp.Description("The parent slot to place the instance in (required with parent_uuid)")),
		mcp.WithString("inputs", mcp.Description("The instance inputs as a YAML or JSON object (optional, defaults to examples)")),
		mcp.WithString("label", mcp.Description("An optional instance label")),
	), s.handleAddInstance)

	if s.hosts != nil {
		s.mcpServer.AddTool(mcp.NewTool("resolve_component_inputs",
			mcp.WithDescription("Evaluate the inputs of every component instance of a host entity."),
			mcp.WithString("host_type", mcp.Required(), mcp.Description("The host entity type, e.g. node")),
			mcp.WithString("host_id", mcp.Required(), mcp.Description("The host entity id")),
		), s.handleResolve)
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ComponentsURI, "Component definitions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.definitions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list components: %w", err)
		}
		defs := make([]any, 0, len(ids))
		for _, id := range ids {
			def, err := s.definitions.Get(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("failed to load component %s: %w", id, err)
			}
			defs = append(defs, def)
		}
		jsonBytes, err := json.Marshal(defs)
		if err != nil {
			return nil, err
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ComponentsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
