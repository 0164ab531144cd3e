package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"dev/bravebird/trial-resetter/pkg/api"
	"dev/bravebird/trial-resetter/pkg/config"
	"dev/bravebird/trial-resetter/pkg/database"
	"dev/bravebird/trial-resetter/pkg/logging"
)

// Serves the check history recorded by the worker.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid logging configuration")
	}

	addr := cfg.StatusAddr
	if addr == "" {
		addr = ":8080"
	}
	if cfg.MySQLDSN == "" {
		logger.Fatal().Msg("MYSQL_DSN is required")
	}

	// Initialize database
	db, err := database.New(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(api.NewHandlers(db, api.NewStatus())),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Str("addr", addr).Msg("API server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
