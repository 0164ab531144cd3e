package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"dev/bravebird/trial-resetter/pkg/browser"
	"dev/bravebird/trial-resetter/pkg/config"
	"dev/bravebird/trial-resetter/pkg/database"
	"dev/bravebird/trial-resetter/pkg/logging"
	"dev/bravebird/trial-resetter/pkg/models"
	"dev/bravebird/trial-resetter/pkg/runner"
	"dev/bravebird/trial-resetter/pkg/temporal/activities"
	"dev/bravebird/trial-resetter/pkg/temporal/workflows"
	"dev/bravebird/trial-resetter/pkg/trial"
)

const WorkflowID = "trial-reset-loop"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid logging configuration")
	}

	// Create Temporal client
	c, err := client.Dial(client.Options{
		HostPort: cfg.TemporalHost,
		Logger:   logging.NewTemporalLogger(logger),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Temporal client")
	}
	defer c.Close()

	var recorders []runner.Recorder
	if cfg.MySQLDSN != "" {
		db, err := database.New(cfg.MySQLDSN)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to database, running without persistence")
		} else {
			defer db.Close()
			if err := db.EnsureSchema(context.Background()); err != nil {
				logger.Warn().Err(err).Msg("Failed to prepare database, running without persistence")
			} else {
				recorders = append(recorders, db)
			}
		}
	}

	// Create activities
	checker := trial.NewChecker(browser.NewRodFactory(cfg), cfg, logger)
	acts := activities.NewActivities(checker, recorders...)

	// One browser at a time
	w := worker.New(c, cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     1,
		MaxConcurrentWorkflowTaskExecutionSize: 2,
	})

	w.RegisterWorkflow(workflows.TrialResetWorkflow)
	w.RegisterActivity(acts.CheckTrialActivity)

	// Start the loop, or attach to the one already running
	run, err := c.ExecuteWorkflow(context.Background(), client.StartWorkflowOptions{
		ID:        WorkflowID,
		TaskQueue: cfg.TaskQueue,
	}, workflows.TrialResetWorkflow, models.ResetWorkflowInput{
		IntervalSeconds: int(cfg.ResetInterval.Seconds()),
		TimeoutSeconds:  int(cfg.CommandTimeout.Seconds()) * 4,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start trial reset workflow")
	}

	logger.Info().
		Str("task_queue", cfg.TaskQueue).
		Str("temporal_host", cfg.TemporalHost).
		Str("workflow_id", run.GetID()).
		Str("run_id", run.GetRunID()).
		Msg("Starting Temporal worker")

	// Start worker
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal().Err(err).Msg("Worker failed")
	}
}
