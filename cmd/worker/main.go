package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/banking-etl/internal/config"
	"github.com/dvloznov/banking-etl/internal/etl"
	"github.com/dvloznov/banking-etl/internal/jobs"
	"github.com/dvloznov/banking-etl/internal/jobs/inmemory"
	"github.com/dvloznov/banking-etl/internal/loader"
	"github.com/dvloznov/banking-etl/internal/logger"
)

func main() {
	// Initialize logger
	log := logger.New()

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize job store and queue
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueBuffer, cfg.WorkerCount, jobStore)

	pipeline := etl.NewPipeline(
		loader.New(log),
		etl.NewValidator(log, cfg.AnomalyThreshold),
		etl.NewCleaner(log),
		etl.NewTransformer(log, cfg.LargeTransactionThreshold, cfg.BaseCurrency),
		log,
	)

	log.Info().Msg("Starting worker service")

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create job handler that runs one file through the pipeline
	handler := func(ctx context.Context, job jobs.Job) error {
		fileJob, ok := job.(*jobs.ProcessFileJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", fileJob.JobID).
			Str("source", fileJob.Source).
			Msg("Processing file job")

		report, err := pipeline.ProcessFile(ctx, fileJob.Source)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", fileJob.JobID).
				Str("source", fileJob.Source).
				Msg("Pipeline execution failed")
			return err
		}

		fileJob.RunID = report.RunID
		fileJob.Processed = report.Processed
		fileJob.Failed = report.Failed

		log.Info().
			Str("job_id", fileJob.JobID).
			Str("run_id", report.RunID).
			Int("processed", report.Processed).
			Int("failed", report.Failed).
			Msg("Pipeline execution completed")

		return nil
	}

	// Start consuming jobs
	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	// Enqueue any files given on the command line
	for _, source := range flag.Args() {
		job := &jobs.ProcessFileJob{Source: source}
		if err := jobQueue.PublishProcessFile(ctx, job); err != nil {
			log.Error().Err(err).Str("source", source).Msg("Failed to enqueue file")
		}
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}
