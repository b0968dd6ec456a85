// cmd/api/main.go

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/app"
	"github.com/stelios-avg/locom/internal/config"
	"github.com/stelios-avg/locom/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	// Start the in-process municipality schedule, if configured
	if err := a.Syncer.Start(ctx); err != nil {
		logger.Warn("Municipality schedule not started", zap.Error(err))
	}

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, logger, server.Dependencies{
		Posts:      a.Posts,
		Admin:      a.Posts,
		Profiles:   a.Profiles,
		Checker:    a.Filter,
		Selector:   a.Selector,
		Syncer:     a.Syncer,
		Subscriber: a.Subscriber,
	})

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", zap.String("host", cfg.Server.Host), zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	logger.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	logger.Info("Shutting down services...")

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Stop the municipality schedule
	if err := a.Syncer.Stop(shutdownCtx); err != nil {
		logger.Error("Municipality schedule shutdown error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
