package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/canvas"
)

// watchDefinitions logs definition changes until ctx is done. Reading the
// events is what keeps the loader index fresh.
func watchDefinitions(ctx context.Context, c *canvas.Canvas, logger *slog.Logger) error {
	events, err := c.Watch(ctx)
	if err != nil {
		return err
	}
	logger.Info("Watching component definitions")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case id, ok := <-events:
				if !ok {
					return
				}
				logger.Info("Component definition changed, reloading", "component_id", id)
			}
		}
	}()
	return nil
}
