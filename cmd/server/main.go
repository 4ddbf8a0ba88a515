package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tendant/simple-share/pkg/simpleshare/config"
)

// tempCleaner is implemented by backends that stage uploads in temp files
type tempCleaner interface {
	CleanupTemp() (int, error)
}

func main() {
	// Load configuration from .env and the environment
	serverConfig, err := config.Load(config.WithDotEnv(".env"), config.WithEnv())
	if err != nil {
		slog.Error("Failed to load server configuration", "error", err)
		os.Exit(1)
	}

	logger := serverConfig.NewLogger()
	slog.SetDefault(logger)

	store, err := serverConfig.BuildBlobStore()
	if err != nil {
		logger.Error("Failed to build storage backend", "type", serverConfig.Storage.Type, "error", err)
		os.Exit(1)
	}

	// Remove uploads interrupted by a previous crash
	if cleaner, ok := store.(tempCleaner); ok {
		if removed, err := cleaner.CleanupTemp(); err != nil {
			logger.Warn("Failed to clean up temporary uploads", "error", err)
		} else if removed > 0 {
			logger.Info("Removed stale temporary uploads", "count", removed)
		}
	}

	svc, err := serverConfig.BuildService(store, logger)
	if err != nil {
		logger.Error("Failed to build service", "error", err)
		os.Exit(1)
	}

	server := NewHTTPServer(svc, serverConfig, logger)

	httpServer := &http.Server{
		Addr:              serverConfig.Addr(),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Simple Share Server starting",
			"addr", serverConfig.Addr(),
			"environment", serverConfig.Environment,
			"public_url", serverConfig.PublicURL,
			"storage", serverConfig.Storage.Type,
			"max_upload_size", serverConfig.MaxUploadSize,
		)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exiting")
}
