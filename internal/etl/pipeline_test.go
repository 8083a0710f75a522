package etl

import (
	"context"
	"errors"
	"math"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
)

func newTestPipeline(source RecordSource) *Pipeline {
	log := zerolog.Nop()
	return NewPipeline(
		source,
		NewValidator(log, DefaultAnomalyThreshold),
		NewCleaner(log),
		NewTransformer(log, DefaultLargeTransactionThreshold, DefaultBaseCurrency),
		log,
	)
}

// stubSource is a RecordSource serving canned records.
type stubSource struct {
	records []Record
	err     error
}

func (s *stubSource) Load(ctx context.Context, source string) ([]Record, error) {
	return s.records, s.err
}

func TestPipeline_Run_EndToEnd(t *testing.T) {
	p := newTestPipeline(nil)

	report := p.Run([]Record{{
		"transaction_id":    "TXN0000001",
		"transaction_date":  "21/02/2024",
		"amount":            "5000.50",
		"currency":          "idr",
		"merchant_category": "",
	}})

	if report.Processed != 1 || report.Failed != 0 {
		t.Fatalf("report = %d processed / %d failed, want 1/0", report.Processed, report.Failed)
	}
	if report.RunID == "" {
		t.Error("report has no run id")
	}

	rec := report.Records[0]
	wantDate := civil.Date{Year: 2024, Month: 2, Day: 21}
	if rec["transaction_date"] != wantDate {
		t.Errorf("transaction_date = %v, want %v", rec["transaction_date"], wantDate)
	}
	if rec["currency"] != "IDR" {
		t.Errorf("currency = %v, want IDR", rec["currency"])
	}
	if rec["amount"] != 5000.50 {
		t.Errorf("amount = %v, want 5000.50", rec["amount"])
	}
	if rec["amount_anomaly"] != false {
		t.Errorf("amount_anomaly = %v, want false", rec["amount_anomaly"])
	}
	if rec["is_large_transaction"] != false {
		t.Errorf("is_large_transaction = %v, want false", rec["is_large_transaction"])
	}
	if rec["is_crossborder"] != false {
		t.Errorf("is_crossborder = %v, want false", rec["is_crossborder"])
	}
	if rec["transaction_day"] != "Wednesday" {
		t.Errorf("transaction_day = %v, want Wednesday", rec["transaction_day"])
	}
	if rec["merchant_category"] != UnknownMerchantCategory {
		t.Errorf("merchant_category = %v, want %s", rec["merchant_category"], UnknownMerchantCategory)
	}
	gotLog, _ := rec["amount_log"].(float64)
	if math.Abs(gotLog-8.517293) > 1e-4 {
		t.Errorf("amount_log = %v, want ~8.5173", gotLog)
	}
}

func TestPipeline_Run_AnomalousLargeTransaction(t *testing.T) {
	p := newTestPipeline(nil)

	report := p.Run([]Record{{
		"transaction_id":   "TXN0000002",
		"transaction_date": "2024-02-21",
		"amount":           "15000000.00",
		"currency":         "IDR",
	}})

	if report.Processed != 1 {
		t.Fatalf("processed = %d, want 1", report.Processed)
	}
	rec := report.Records[0]
	if rec["amount_anomaly"] != true {
		t.Errorf("amount_anomaly = %v, want true", rec["amount_anomaly"])
	}
	if rec["is_large_transaction"] != true {
		t.Errorf("is_large_transaction = %v, want true", rec["is_large_transaction"])
	}
}

func TestPipeline_Run_RecordIsolation(t *testing.T) {
	// A rejected record must not affect its siblings.
	p := newTestPipeline(nil)

	report := p.Run([]Record{
		{
			"transaction_id":   "TXN0000001",
			"transaction_date": "2024-02-21",
			"amount":           "100",
			"currency":         "IDR",
		},
		{
			"transaction_id":   "INVALID123",
			"transaction_date": "2024-02-21",
			"amount":           "100",
			"currency":         "IDR",
		},
		{
			"transaction_id":   "TXN0000003",
			"transaction_date": "2024-02-22",
			"amount":           "200",
			"currency":         "usd",
		},
	})

	if report.Processed != 2 || report.Failed != 1 {
		t.Fatalf("report = %d processed / %d failed, want 2/1", report.Processed, report.Failed)
	}
	if report.FailuresByKind["invalid_transaction_id"] != 1 {
		t.Errorf("FailuresByKind = %v, want one invalid_transaction_id", report.FailuresByKind)
	}
	if len(report.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(report.Records))
	}
	if report.Records[1]["is_crossborder"] != true {
		t.Errorf("second surviving record should be cross-border")
	}
}

func TestPipeline_Run_FailureTally(t *testing.T) {
	p := newTestPipeline(nil)

	report := p.Run([]Record{
		{"transaction_id": "nope"},
		{"transaction_id": "TXN0000001", "transaction_date": "nope"},
		{"transaction_id": "TXN0000001", "transaction_date": "2024-02-21", "amount": "-1", "currency": "IDR"},
		{"transaction_id": "TXN0000001", "transaction_date": "2024-02-21", "amount": "1", "currency": "EUR"},
	})

	if report.Failed != 4 || report.Processed != 0 {
		t.Fatalf("report = %d processed / %d failed, want 0/4", report.Processed, report.Failed)
	}
	want := map[string]int{
		"invalid_transaction_id": 1,
		"invalid_date_format":    1,
		"invalid_amount":         1,
		"invalid_currency":       1,
	}
	for kind, count := range want {
		if report.FailuresByKind[kind] != count {
			t.Errorf("FailuresByKind[%s] = %d, want %d", kind, report.FailuresByKind[kind], count)
		}
	}
}

func TestPipeline_ProcessFile(t *testing.T) {
	source := &stubSource{records: []Record{{
		"transaction_id":   "TXN0000001",
		"transaction_date": "2024-02-21",
		"amount":           "100",
		"currency":         "IDR",
	}}}
	p := newTestPipeline(source)

	report, err := p.ProcessFile(context.Background(), "transactions.csv")
	if err != nil {
		t.Fatalf("ProcessFile() unexpected error: %v", err)
	}
	if report.Source != "transactions.csv" {
		t.Errorf("Source = %q, want transactions.csv", report.Source)
	}
	if report.Processed != 1 {
		t.Errorf("Processed = %d, want 1", report.Processed)
	}
}

func TestPipeline_ProcessFile_SourceError(t *testing.T) {
	wantErr := errors.New("boom")
	p := newTestPipeline(&stubSource{err: wantErr})

	_, err := p.ProcessFile(context.Background(), "transactions.csv")
	if !errors.Is(err, wantErr) {
		t.Errorf("ProcessFile() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestPipeline_ProcessFile_NoSource(t *testing.T) {
	p := newTestPipeline(nil)

	if _, err := p.ProcessFile(context.Background(), "transactions.csv"); err == nil {
		t.Error("ProcessFile() with nil source should fail")
	}
}
