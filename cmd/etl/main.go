package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/banking-etl/internal/config"
	"github.com/dvloznov/banking-etl/internal/etl"
	"github.com/dvloznov/banking-etl/internal/loader"
	"github.com/dvloznov/banking-etl/internal/logger"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	input := flag.String("input", "", "transaction CSV to process (local path or gs://bucket/file.csv)")
	flag.Parse()

	if *input == "" {
		log.Fatal().Msg("Error: -input is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Create context with timeout so the CLI doesn't hang on GCS reads
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	pipeline := etl.NewPipeline(
		loader.New(log),
		etl.NewValidator(log, cfg.AnomalyThreshold),
		etl.NewCleaner(log),
		etl.NewTransformer(log, cfg.LargeTransactionThreshold, cfg.BaseCurrency),
		log,
	)

	log.Info().Str("input", *input).Msg("Starting ETL run")

	report, err := pipeline.ProcessFile(ctx, *input)
	if err != nil {
		log.Fatal().Err(err).Msg("ETL run failed")
	}

	for kind, count := range report.FailuresByKind {
		log.Warn().Str("kind", kind).Int("count", count).Msg("records rejected")
	}

	fmt.Printf("Run %s: %d processed, %d failed (%s)\n",
		report.RunID, report.Processed, report.Failed, report.Duration.Round(time.Millisecond))
}
