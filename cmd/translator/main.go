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

	"webcorp/telemetry-bridge/internal/config"
	"webcorp/telemetry-bridge/internal/database"
	"webcorp/telemetry-bridge/internal/delivery"
	"webcorp/telemetry-bridge/internal/handler"
	"webcorp/telemetry-bridge/internal/journal"
	"webcorp/telemetry-bridge/internal/logger"
	"webcorp/telemetry-bridge/internal/payload"
	"webcorp/telemetry-bridge/internal/router"
	"webcorp/telemetry-bridge/internal/sequencer"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/translator.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadTranslator(*configPath)
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

	log.Info("Starting event translator",
		zap.String("env", cfg.Env),
		zap.String("config_path", *configPath),
		zap.String("downstream_url", cfg.Downstream.URL),
	)

	db, err := database.New(cfg.StoragePath, log.Logger)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	deliveryJournal := journal.NewJournal(db.DB, log.Logger)
	messageSequencer := sequencer.NewSequencer(log.Logger)
	payloadBuilder := payload.NewBuilder()

	deliveryClient := delivery.NewClient(
		cfg.Downstream.URL,
		cfg.Downstream.Token,
		time.Duration(cfg.Downstream.Timeout)*time.Second,
		log.Logger,
	)

	translatorHandler := handler.NewTranslatorHandler(
		messageSequencer,
		payloadBuilder,
		deliveryClient,
		deliveryJournal,
		log.Logger,
	)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router.NewTranslator(translatorHandler, log.Logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // downstream delivery can be slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting translation server", zap.String("address", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Translation server error", zap.Error(err))
		}
	}()

	log.Info("Event translator started successfully",
		zap.Int("port", cfg.Server.Port),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Received shutdown signal", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warn("Translation server shutdown error", zap.Error(err))
	}

	log.Info("Event translator stopped")
}
