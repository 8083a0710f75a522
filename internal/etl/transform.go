package etl

import (
	"math"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
)

// Transformer performs the final type coercions and derives the analytic
// features. Like the cleaner it never fails: values that cannot be
// coerced become nil, and derived features fall back to their zero
// answer.
type Transformer struct {
	log            zerolog.Logger
	largeThreshold float64
	baseCurrency   string
}

// NewTransformer creates a transformer. Amounts strictly above
// largeThreshold are flagged as large; currencies other than
// baseCurrency are flagged as cross-border.
func NewTransformer(log zerolog.Logger, largeThreshold float64, baseCurrency string) *Transformer {
	return &Transformer{
		log:            log,
		largeThreshold: largeThreshold,
		baseCurrency:   strings.ToUpper(strings.TrimSpace(baseCurrency)),
	}
}

// Transform returns a copy of rec with transaction_date as a civil.Date,
// amount and risk_score as float64, and the four derived features
// attached: is_large_transaction, is_crossborder, transaction_day and
// amount_log.
func (t *Transformer) Transform(rec Record) Record {
	out := rec.Clone()

	date, hasDate := t.toDate(out["transaction_date"])
	if hasDate {
		out["transaction_date"] = date
	} else {
		out["transaction_date"] = nil
	}

	amount, hasAmount := t.toFloat(out["amount"], "amount")
	if hasAmount {
		out["amount"] = amount
	} else {
		out["amount"] = nil
	}

	risk, hasRisk := t.toFloat(out["risk_score"], "risk_score")
	if hasRisk {
		out["risk_score"] = risk
	} else {
		out["risk_score"] = nil
	}

	out["is_large_transaction"] = hasAmount && amount > t.largeThreshold
	out["is_crossborder"] = t.isCrossborder(out["currency"])

	if hasDate {
		out["transaction_day"] = date.In(time.UTC).Weekday().String()
	} else {
		out["transaction_day"] = nil
	}

	if hasAmount && amount > 0 {
		out["amount_log"] = math.Log(amount)
	} else {
		out["amount_log"] = nil
	}

	return out
}

// toDate converts a cleaned date value to a civil.Date.
func (t *Transformer) toDate(v any) (civil.Date, bool) {
	switch val := v.(type) {
	case civil.Date:
		return val, true
	case string:
		if strings.TrimSpace(val) == "" {
			return civil.Date{}, false
		}
		parsed, err := civil.ParseDate(strings.TrimSpace(val))
		if err != nil {
			t.log.Warn().Str("date", val).Msg("could not convert to date")
			return civil.Date{}, false
		}
		return parsed, true
	default:
		return civil.Date{}, false
	}
}

// toFloat converts a cleaned numeric value to float64.
func (t *Transformer) toFloat(v any, field string) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return 0, false
	}
	f, ok := numericValue(v)
	if !ok {
		t.log.Warn().Str("field", field).Interface("value", v).Msg("could not convert to float")
		return 0, false
	}
	return f, true
}

// isCrossborder reports whether the currency differs from the base
// currency. Missing or nil currencies count as domestic.
func (t *Transformer) isCrossborder(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	code := strings.ToUpper(strings.TrimSpace(s))
	return code != "" && code != t.baseCurrency
}
