package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/gateways/httpapi"
	"github.com/haukened/bindmgr/internal/dns/repos/zonecache"
)

const defaultShutdownTimeout = 10 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	log.Info(map[string]any{
		"version":   version,
		"env":       c.cfg.Env,
		"log_level": c.cfg.Log.Level,
		"listen":    c.cfg.API.Listen,
		"zones":     c.cfg.Named.Zones,
	}, "Starting bindmgr")

	app, err := buildApplication(c.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn(map[string]any{"error": err}, "Error closing blocklist")
		}
	}()

	if app.zoneCache != nil && c.cfg.Cache.Watch {
		w, err := zonecache.NewWatcher(c.cfg.Named.Zones, app.zoneCache, log.With(app.logger, map[string]any{"component": "zonewatch"}))
		if err != nil {
			log.Warn(map[string]any{"error": err, "dir": c.cfg.Named.Zones}, "Zone watcher disabled")
		} else {
			defer w.Close()
			go w.Run(ctx)
		}
	}

	if c.cfg.API.Key == "" {
		log.Warn(nil, "API key not set; the API is unauthenticated")
	}
	srv := httpapi.New(httpapi.Options{
		Addr:    c.cfg.API.Listen,
		APIKey:  c.cfg.API.Key,
		Service: app.manager,
		Logger:  app.logger,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(nil, "Shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn(map[string]any{"error": err, "timeout": defaultShutdownTimeout}, "Shutdown timeout exceeded")
		return err
	}
	log.Info(nil, "bindmgr stopped gracefully")
	return nil
}
