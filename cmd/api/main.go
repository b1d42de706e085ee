// Package main is the entry point for the earthkit-time API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ecmwf/earthkit-time/internal/api"
	"github.com/ecmwf/earthkit-time/internal/config"
	"github.com/ecmwf/earthkit-time/internal/logger"
	"github.com/ecmwf/earthkit-time/internal/presetstore"
	"github.com/ecmwf/earthkit-time/preset"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	log.Info("starting earthkit-time API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := presetstore.Open(presetstore.DefaultConfig(cfg.StorePath), log)
	if err != nil {
		return err
	}
	defer store.Close()

	applied, err := store.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrate preset store: %w", err)
	}
	log.Info("preset store ready", slog.Int("migrations_applied", applied))

	var presetDirs []string
	for _, dir := range filepath.SplitList(cfg.PresetPath) {
		if dir != "" {
			presetDirs = append(presetDirs, dir)
		}
	}
	loader := preset.NewLoader(presetDirs...)

	handlers := api.NewHandlers(store, loader, cfg, log)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	log.Info("earthkit-time API stopped")
	return nil
}
