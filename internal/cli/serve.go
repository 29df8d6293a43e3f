package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/canvas"
	"github.com/aretw0/canvas/internal/config"
	httpAdapter "github.com/aretw0/canvas/pkg/adapters/http"
	"github.com/aretw0/canvas/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/canvas/pkg/adapters/redis"
	"github.com/aretw0/canvas/pkg/autosave"
	"github.com/aretw0/canvas/pkg/observability"
	"github.com/aretw0/canvas/pkg/ports"
	"github.com/aretw0/canvas/pkg/propsource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions configure "canvas serve".
type ServeOptions struct {
	HostsPath string
}

// BuildHandler wires the HTTP API for cfg. The returned cleanup closes the
// draft store.
func BuildHandler(ctx context.Context, cfg *config.Config, opts ServeOptions, logger *slog.Logger) (http.Handler, func() error, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, nil, err
	}

	c, err := openCanvas(cfg, logger, metrics)
	if err != nil {
		return nil, nil, err
	}
	hosts, err := loadHostStore(opts.HostsPath)
	if err != nil {
		return nil, nil, err
	}

	drafts, managerOpts, cleanup := draftStore(cfg, logger)
	managerOpts = append(managerOpts,
		autosave.WithValidator(c.Validator()),
		autosave.WithLogger(logger),
	)
	manager := autosave.NewManager(drafts, hosts, c.Definitions(), managerOpts...)

	cache := propsource.NewRequestCache()
	resolver := propsource.NewResolver(
		propsource.WithBaseURL(cfg.BaseURL()),
		propsource.WithCache(cache),
		propsource.WithRecorder(metrics),
		propsource.WithLogger(logger),
	)

	serverOpts := []httpAdapter.Option{
		httpAdapter.WithValidator(c.Validator()),
		httpAdapter.WithMatcher(c.Matcher()),
		httpAdapter.WithResolver(resolver, cache),
		httpAdapter.WithMetrics(metrics, reg),
		httpAdapter.WithVersion(canvas.Version),
		httpAdapter.WithLogger(logger),
	}
	if cfg.Watch {
		if err := watchDefinitions(ctx, c, logger); err != nil {
			logger.Warn("Definition watching unavailable", "err", err)
		} else {
			serverOpts = append(serverOpts, httpAdapter.WithWatcher(c))
		}
	}

	srv := httpAdapter.NewServer(c.Definitions(), hosts, manager, serverOpts...)
	return httpAdapter.NewHandler(srv), cleanup, nil
}

// draftStore picks Redis when an address is configured, memory otherwise.
func draftStore(cfg *config.Config, logger *slog.Logger) (ports.DraftStore, []autosave.Option, func() error) {
	if cfg.Redis.Addr == "" {
		logger.Info("Drafts are kept in memory")
		return memory.NewDraftStore(), nil, func() error { return nil }
	}
	store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		redisAdapter.WithPrefix(cfg.Redis.Prefix),
		redisAdapter.WithTTL(cfg.Redis.TTL),
	)
	locker := redisAdapter.NewLocker(store.Client(), cfg.Redis.Prefix)
	logger.Info("Drafts are stored in Redis", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
	return store, []autosave.Option{autosave.WithLocker(locker)}, store.Close
}

// Serve runs the HTTP API until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, opts ServeOptions, logger *slog.Logger) error {
	handler, cleanup, err := BuildHandler(ctx, cfg, opts, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("Error closing draft store", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting Canvas server", "addr", srv.Addr, "components", cfg.ComponentsDir)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("Canvas server stopped gracefully")
		return nil
	}
}
