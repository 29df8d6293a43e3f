package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/canvas"
	"github.com/aretw0/canvas/internal/config"
	"github.com/aretw0/canvas/pkg/adapters/mcp"
	"github.com/aretw0/canvas/pkg/ports"
	"github.com/aretw0/canvas/pkg/propsource"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// MCPOptions configure "canvas mcp".
type MCPOptions struct {
	Transport string
	Port      int
	HostsPath string
}

// BuildMCPServer wires the MCP tool server for cfg.
func BuildMCPServer(cfg *config.Config, opts MCPOptions, logger *slog.Logger) (*mcp.Server, error) {
	c, err := openCanvas(cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	serverOpts := []mcp.Option{
		mcp.WithValidator(c.Validator()),
		mcp.WithMatcher(c.Matcher()),
		mcp.WithLogger(logger),
	}

	// Without hosts the resolve tool is not registered.
	var hosts ports.HostProvider
	if opts.HostsPath != "" {
		store, err := loadHostStore(opts.HostsPath)
		if err != nil {
			return nil, err
		}
		hosts = store
		serverOpts = append(serverOpts, mcp.WithResolver(propsource.NewResolver(
			propsource.WithBaseURL(cfg.BaseURL()),
			propsource.WithLogger(logger),
		)))
	}
	return mcp.NewServer(c.Definitions(), hosts, canvas.Version, serverOpts...), nil
}

// RunMCP serves the MCP tools on the selected transport until ctx is done.
func RunMCP(ctx context.Context, cfg *config.Config, opts MCPOptions, logger *slog.Logger) error {
	srv, err := BuildMCPServer(cfg, opts, logger)
	if err != nil {
		return err
	}
	switch opts.Transport {
	case TransportStdio, "":
		logger.Info("Starting Canvas MCP server (stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		logger.Info("Starting Canvas MCP server (SSE)", "port", opts.Port)
		return srv.ServeSSE(ctx, opts.Port)
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
	}
}
