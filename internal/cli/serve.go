package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowgrid-dev/flowgrid/internal/server"
	"github.com/flowgrid-dev/flowgrid/pkg/cache"
)

// serveCommand creates the serve command for running the HTTP layout
// service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout service",
		Long: `Run the HTTP layout service.

The service exposes POST /v1/layout, which accepts a graph document plus
optional spacing options and responds with the computed layout. Responses
are cached by graph content and options.

The cache backend is configured in flowgrid.toml ([server] cache_backend:
file, redis, or none).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8723", "listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ./flowgrid.toml)")

	return cmd
}

// runServe builds the configured cache backend and serves HTTP until the
// context is cancelled, then shuts down gracefully.
func (c *CLI) runServe(ctx context.Context, cfg Config) error {
	store, err := c.newServerCache(ctx, cfg.Server)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	srv := server.New(c.Logger, store, cfg.Layout)
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Server.Addr)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newServerCache builds the cache backend named by the server config.
func (c *CLI) newServerCache(ctx context.Context, cfg ServerConfig) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case "", "file":
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	case "redis":
		return cache.NewRedisCache(ctx, cfg.RedisAddr)
	case "none":
		return cache.NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
