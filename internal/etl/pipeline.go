package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RecordSource produces the raw records for one input, failing fast on
// structural problems (missing file, missing mandatory columns, bad row
// shape). The CSV loader is the production implementation.
type RecordSource interface {
	Load(ctx context.Context, source string) ([]Record, error)
}

// Report summarizes one pipeline run.
type Report struct {
	RunID     string
	Source    string
	Processed int
	Failed    int
	// FailuresByKind tallies validation failures per error kind.
	FailuresByKind map[string]int
	StartedAt      time.Time
	Duration       time.Duration
	// Records holds the transformed records in input order.
	Records []Record
}

// Pipeline sequences validate, clean and transform per record. One
// record's validation failure never affects its siblings: the failure is
// counted and processing continues with the next record.
type Pipeline struct {
	source      RecordSource
	validator   *Validator
	cleaner     *Cleaner
	transformer *Transformer
	log         zerolog.Logger
}

// NewPipeline wires the three stages behind a single entry point.
// source may be nil when only Run is used.
func NewPipeline(source RecordSource, v *Validator, c *Cleaner, t *Transformer, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		source:      source,
		validator:   v,
		cleaner:     c,
		transformer: t,
		log:         log,
	}
}

// ProcessFile loads records from a local path or gs:// URI and runs them
// through the pipeline.
func (p *Pipeline) ProcessFile(ctx context.Context, source string) (*Report, error) {
	if p.source == nil {
		return nil, fmt.Errorf("pipeline has no record source configured")
	}

	records, err := p.source.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}

	report := p.Run(records)
	report.Source = source
	return report, nil
}

// Run processes the records sequentially and returns the run report.
func (p *Pipeline) Run(records []Record) *Report {
	report := &Report{
		RunID:          uuid.NewString(),
		FailuresByKind: make(map[string]int),
		StartedAt:      time.Now(),
	}

	log := p.log.With().Str("run_id", report.RunID).Logger()
	log.Info().Int("records", len(records)).Msg("starting pipeline run")

	for i, rec := range records {
		validated, err := p.validator.Validate(rec)
		if err != nil {
			report.Failed++
			report.FailuresByKind[errorKind(err)]++
			log.Warn().Err(err).Int("row", i).Msg("record rejected")
			continue
		}

		cleaned := p.cleaner.Clean(validated)
		transformed := p.transformer.Transform(cleaned)

		report.Records = append(report.Records, transformed)
		report.Processed++
	}

	report.Duration = time.Since(report.StartedAt)
	log.Info().
		Int("processed", report.Processed).
		Int("failed", report.Failed).
		Dur("duration", report.Duration).
		Msg("pipeline run complete")

	return report
}

// errorKind maps a validation error to its report tally key.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidTransactionID):
		return "invalid_transaction_id"
	case errors.Is(err, ErrInvalidDateFormat):
		return "invalid_date_format"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInvalidCurrency):
		return "invalid_currency"
	default:
		return "other"
	}
}
