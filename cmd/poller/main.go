package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webcorp/telemetry-bridge/internal/client"
	"webcorp/telemetry-bridge/internal/config"
	"webcorp/telemetry-bridge/internal/cursor"
	"webcorp/telemetry-bridge/internal/forwarder"
	"webcorp/telemetry-bridge/internal/handler"
	"webcorp/telemetry-bridge/internal/logger"
	"webcorp/telemetry-bridge/internal/observability"
	"webcorp/telemetry-bridge/internal/poller"
	"webcorp/telemetry-bridge/internal/registry"
	"webcorp/telemetry-bridge/internal/router"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/poller.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadPoller(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting position poller",
		zap.String("env", cfg.Env),
		zap.String("config_path", *configPath),
		zap.String("source_url", cfg.Source.BaseURL),
	)

	// Restore persisted cursors so a restart does not re-forward
	cursors := cursor.NewStore(cfg.CursorFile, log.Logger)
	cursors.Load()

	sourceClient := client.NewSourceClient(
		cfg.Source.BaseURL,
		cfg.Source.Username,
		cfg.Source.Password,
		time.Duration(cfg.Source.Timeout)*time.Second,
		log.Logger,
	)

	deviceRegistry := registry.NewRegistry(sourceClient, log.Logger)
	refreshCtx, cancelRefresh := context.WithTimeout(context.Background(), time.Duration(cfg.Source.Timeout)*time.Second)
	if err := deviceRegistry.Refresh(refreshCtx); err != nil {
		// Stale-but-available: the pipeline runs with an empty cache
		// and device lookups return placeholders until a refresh works
		observability.RegistryRefreshErrors.Inc()
		log.Warn("Initial device refresh failed, continuing with empty registry", zap.Error(err))
	}
	cancelRefresh()

	eventForwarder := forwarder.NewForwarder(
		deviceRegistry,
		cfg.Forward.URL,
		time.Duration(cfg.Forward.Timeout)*time.Second,
		log.Logger,
	)

	positionPoller := poller.NewPoller(
		sourceClient,
		cursors,
		eventForwarder,
		time.Duration(cfg.Poll.Interval)*time.Second,
		time.Duration(cfg.Source.Timeout)*time.Second,
		log.Logger,
	)

	adminHandler := handler.NewPollerHandler(deviceRegistry, cursors, positionPoller, log.Logger)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router.NewPoller(adminHandler, log.Logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting admin server", zap.String("address", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Admin server error", zap.Error(err))
		}
	}()

	positionPoller.Start()

	log.Info("Position poller started successfully",
		zap.Int("poll_interval_seconds", cfg.Poll.Interval),
		zap.String("forward_url", cfg.Forward.URL),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Received shutdown signal", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warn("Admin server shutdown error", zap.Error(err))
	}

	positionPoller.Stop()

	if err := cursors.Persist(); err != nil {
		log.Error("Failed to persist cursors on shutdown", zap.Error(err))
	}

	log.Info("Position poller stopped")
}
