// Package config loads runtime configuration from the environment.
// Every setting has a default, so a bare process works out of the box.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all tunables, read from ETL_-prefixed environment
// variables. The anomaly and large-transaction thresholds overlap in
// purpose but are deliberately independent knobs.
type Config struct {
	// AnomalyThreshold: amounts above it get the amount_anomaly flag.
	AnomalyThreshold float64 `envconfig:"ANOMALY_THRESHOLD" default:"10000000"`

	// LargeTransactionThreshold: amounts above it get is_large_transaction.
	LargeTransactionThreshold float64 `envconfig:"LARGE_TRANSACTION_THRESHOLD" default:"5000000"`

	// BaseCurrency is the domestic currency for the cross-border flag.
	BaseCurrency string `envconfig:"BASE_CURRENCY" default:"IDR"`

	// QuoteEndpoint is the market-quote API used by the quotes client.
	QuoteEndpoint string `envconfig:"QUOTE_ENDPOINT" default:"https://dummyjson.com/quotes/random"`

	// HTTPTimeout bounds each quote request attempt.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	// MaxRetries bounds quote request attempts.
	MaxRetries int `envconfig:"MAX_RETRIES" default:"3"`

	// QueueBuffer is the in-memory job queue capacity.
	QueueBuffer int `envconfig:"QUEUE_BUFFER" default:"100"`

	// WorkerCount is the number of concurrent file-processing workers.
	WorkerCount int `envconfig:"WORKER_COUNT" default:"5"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("etl", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
