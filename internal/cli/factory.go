package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/canvas"
	"github.com/aretw0/canvas/internal/config"
	"github.com/aretw0/canvas/internal/logging"
	"github.com/aretw0/canvas/pkg/observability"
)

// NewLogger builds the application logger from cfg. Logs always go to
// stderr so stdout stays clean for reports and the MCP stdio transport.
func NewLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewFormat(cfg.Log.Format, level)
}

// openCanvas opens the component library configured in cfg.
func openCanvas(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*canvas.Canvas, error) {
	opts := []canvas.Option{canvas.WithLogger(logger)}
	if metrics != nil {
		opts = append(opts, canvas.WithMetrics(metrics))
	}
	c, err := canvas.New(cfg.ComponentsDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("error opening component library: %w", err)
	}
	return c, nil
}
