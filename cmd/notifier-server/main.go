// Package main is the entry point for the Pub/Sub push server.
//
// It loads configuration, builds the Notifier, mounts the push endpoint on a
// chi router and serves HTTP until SIGINT or SIGTERM, then shuts down
// gracefully.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pushnotify/internal/app"
	"pushnotify/internal/config"
	"pushnotify/internal/logging"
	"pushnotify/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.Service)
	logger.Info("push server starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	srv, err := buildServer(cfg, logger)
	if err != nil {
		return err
	}

	return serve(srv, cfg, logger)
}

// buildServer wires the Notifier and metrics backend into a mounted Server.
func buildServer(cfg *config.Config, logger *slog.Logger) (*server.Server, error) {
	typedLogger := logging.NewAdapter(logger)

	telemetry, err := app.NewTelemetry(context.Background(), cfg, typedLogger, true)
	if err != nil {
		return nil, fmt.Errorf("initializing metrics: %w", err)
	}

	n, err := app.NewNotifier(cfg, typedLogger, telemetry.Recorder)
	if err != nil {
		return nil, fmt.Errorf("creating notifier: %w", err)
	}

	srv, err := server.NewServer(n, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}
	srv.Gatherer = telemetry.Gatherer
	srv.RequestTimeout = cfg.Webhook.Timeout + 5*time.Second
	srv.MountRoutes()
	return srv, nil
}

// serve runs the HTTP server with graceful shutdown.
func serve(srv *server.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      srv.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}
