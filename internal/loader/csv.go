// Package loader turns a delimited transaction file into raw records for
// the pipeline. It owns all structural concerns: file existence, header
// presence, mandatory columns, per-row column counts and empty rows.
// Business rules on field content belong to the etl package.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-etl/internal/etl"
)

// Structural errors. Any of them aborts the whole load; there is no
// partial record sequence.
var (
	ErrFileNotFound   = errors.New("csv file not found")
	ErrNoHeader       = errors.New("csv file has no header")
	ErrMissingColumns = errors.New("missing mandatory columns")
	ErrColumnMismatch = errors.New("row has wrong column count")
	ErrEmptyRow       = errors.New("empty row")
)

// mandatoryColumns must all appear in the header row.
var mandatoryColumns = []string{
	"transaction_id",
	"transaction_date",
	"customer_id",
	"account_id",
	"amount",
	"currency",
}

// Loader reads transaction CSV files from the local file system or from
// GCS (gs:// URIs).
type Loader struct {
	log zerolog.Logger
}

// New creates a Loader.
func New(log zerolog.Logger) *Loader {
	return &Loader{log: log}
}

// Load reads all records from source, which is either a local file path
// or a gs://bucket/object URI.
func (l *Loader) Load(ctx context.Context, source string) ([]etl.Record, error) {
	if strings.HasPrefix(source, "gs://") {
		data, err := l.fetchFromGCS(ctx, source)
		if err != nil {
			return nil, err
		}
		return l.parse(bytes.NewReader(data))
	}

	f, err := os.Open(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.Error().Str("path", source).Msg("csv file not found")
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, source)
		}
		return nil, fmt.Errorf("open %s: %w", source, err)
	}
	defer f.Close()

	return l.parse(f)
}

// parse reads the header, verifies the mandatory columns and converts
// every data row into a record keyed by column name.
func (l *Loader) parse(r io.Reader) ([]etl.Record, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		l.log.Error().Msg("csv file has no header")
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	if missing := missingColumns(header); len(missing) > 0 {
		l.log.Error().Strs("missing", missing).Msg("missing mandatory columns")
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	l.log.Info().Strs("columns", header).Msg("csv header verified")

	var records []etl.Record
	line := 1 // header was line 1
	for {
		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				l.log.Error().Int("line", line).Msg("row has wrong column count")
				return nil, fmt.Errorf("%w: line %d", ErrColumnMismatch, line)
			}
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		if isEmptyRow(row) {
			l.log.Warn().Int("line", line).Msg("empty row detected")
			return nil, fmt.Errorf("%w: line %d", ErrEmptyRow, line)
		}

		rec := make(etl.Record, len(header))
		for i, name := range header {
			rec[name] = row[i]
		}
		records = append(records, rec)
	}

	l.log.Info().Int("rows", len(records)).Msg("csv loaded")
	return records, nil
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range mandatoryColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
