package etl

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record represents one transaction row keyed by field name.
// The loader produces string values; cleaning and transformation replace
// values with float64, civil.Date or bool as fields are normalized. An
// untyped nil value means the field was present but could not be
// interpreted.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// stringValue returns the value for key as a string. The second result is
// false when the key is absent or holds a non-string value.
func stringValue(r Record, key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// numericValue converts a raw field value to float64. It accepts numbers
// as-is and parses string values through shopspring/decimal, so that
// thousand-free money strings like "5000.50" or "1.2e6" round-trip the
// same way on every pass. The second result is false for empty strings,
// unparseable strings and unsupported types.
func numericValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, false
		}
		f, _ := d.Float64()
		return f, true
	default:
		return 0, false
	}
}

// Accepted input date layouts, tried in order.
const (
	dateLayoutISO = "2006-01-02"
	dateLayoutDMY = "02/01/2006"
)

// parseFlexibleDate parses a date string as YYYY-MM-DD or, failing that,
// DD/MM/YYYY.
func parseFlexibleDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayoutISO, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(dateLayoutDMY, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
