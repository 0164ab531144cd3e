package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dev/bravebird/trial-resetter/pkg/api"
	"dev/bravebird/trial-resetter/pkg/browser"
	"dev/bravebird/trial-resetter/pkg/config"
	"dev/bravebird/trial-resetter/pkg/database"
	"dev/bravebird/trial-resetter/pkg/logging"
	"dev/bravebird/trial-resetter/pkg/runner"
	"dev/bravebird/trial-resetter/pkg/trial"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid logging configuration")
	}
	logger.Info().
		Str("target", cfg.TargetURL()).
		Str("browser_mode", cfg.BrowserMode).
		Str("browser_url", cfg.BrowserURL).
		Str("username", cfg.Username).
		Dur("interval", cfg.ResetInterval).
		Msg("Starting trial resetter")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	status := api.NewStatus()
	recorders := []runner.Recorder{status}

	// Initialize database
	var store api.Store
	if cfg.MySQLDSN != "" {
		db, err := database.New(cfg.MySQLDSN)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to database, running without persistence")
		} else {
			defer db.Close()
			if err := db.EnsureSchema(ctx); err != nil {
				logger.Warn().Err(err).Msg("Failed to prepare database, running without persistence")
			} else {
				store = db
				recorders = append(recorders, db)
			}
		}
	}

	if cfg.StatusAddr != "" {
		server := &http.Server{
			Addr:         cfg.StatusAddr,
			Handler:      api.NewRouter(api.NewHandlers(store, status)),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go serve(server, logger)
		defer shutdown(server, logger)
	}

	checker := trial.NewChecker(browser.NewRodFactory(cfg), cfg, logger)
	runner.New(checker, cfg.ResetInterval, logger, recorders...).Run(ctx)
}

func serve(server *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", server.Addr).Msg("Status API listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("Status API failed")
	}
}

func shutdown(server *http.Server, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Status API shutdown failed")
	}
}
