package etl

import (
	"strings"

	"github.com/rs/zerolog"
)

// cleanFunc normalizes a single field value. It must be total: malformed
// input degrades to nil instead of failing.
type cleanFunc func(v any) any

// Cleaner normalizes inconsistent field encodings. Cleaning never fails;
// values that cannot be interpreted become nil and are logged as
// warnings. Cleaning is idempotent: applying it to its own output is a
// no-op.
type Cleaner struct {
	log   zerolog.Logger
	rules map[string]cleanFunc
}

// NewCleaner builds a cleaner with the per-field rule table. Fields not
// named in the table are passed through with only a string trim.
func NewCleaner(log zerolog.Logger) *Cleaner {
	c := &Cleaner{log: log}
	c.rules = map[string]cleanFunc{
		"transaction_id":    trimString,
		"customer_id":       trimString,
		"account_id":        trimString,
		"channel":           trimString,
		"region":            trimString,
		"txn_type":          trimString,
		"transaction_date":  c.normalizeDate,
		"value_date":        c.normalizeDate,
		"currency":          c.normalizeCurrency,
		"amount":            c.cleanNumeric,
		"risk_score":        c.cleanNumeric,
		"merchant_category": cleanMerchantCategory,
		"account_type":      upperTrimString,
		"direction":         upperTrimString,
	}
	return c
}

// Clean returns a normalized copy of rec. Every field present in the
// input appears in the output; unknown fields get a string trim only.
func (c *Cleaner) Clean(rec Record) Record {
	out := make(Record, len(rec))
	for key, val := range rec {
		if rule, ok := c.rules[key]; ok {
			out[key] = rule(val)
		} else {
			out[key] = trimString(val)
		}
	}
	return out
}

// trimString trims surrounding whitespace from string values and passes
// everything else through unchanged.
func trimString(v any) any {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return v
}

// upperTrimString trims and uppercases non-empty string values; empty
// strings and non-strings pass through.
func upperTrimString(v any) any {
	s, ok := v.(string)
	if !ok || s == "" {
		return v
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

// normalizeDate canonicalizes a date to a YYYY-MM-DD string, or nil when
// the value is missing or unparseable.
func (c *Cleaner) normalizeDate(v any) any {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	t, ok := parseFlexibleDate(s)
	if !ok {
		c.log.Warn().Str("date", s).Msg("could not normalize date")
		return nil
	}
	return t.Format(dateLayoutISO)
}

// normalizeCurrency trims and uppercases the currency code, or degrades
// to nil when the code is not supported.
func (c *Cleaner) normalizeCurrency(v any) any {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	code := strings.ToUpper(strings.TrimSpace(s))
	if !validCurrencies[code] {
		c.log.Warn().Str("currency", s).Msg("invalid currency, setting to nil")
		return nil
	}
	return code
}

// cleanNumeric coerces a value to float64, or nil when it is empty or
// unparseable.
func (c *Cleaner) cleanNumeric(v any) any {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	f, ok := numericValue(v)
	if !ok {
		c.log.Warn().Interface("value", v).Msg("could not convert to numeric")
		return nil
	}
	return f
}

// cleanMerchantCategory trims the category and imputes "Unknown" for
// blank or missing values.
func cleanMerchantCategory(v any) any {
	s, ok := v.(string)
	if !ok {
		if v == nil {
			return UnknownMerchantCategory
		}
		return v
	}
	if strings.TrimSpace(s) == "" {
		return UnknownMerchantCategory
	}
	return strings.TrimSpace(s)
}
