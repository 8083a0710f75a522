package etl

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Validator enforces the mandatory business rules on a raw record.
// Checks run in a fixed order (transaction_id, transaction_date, amount,
// currency) and the first violation fails the whole record. Direction and
// account_type are checked too, but violations there are only logged.
type Validator struct {
	log              zerolog.Logger
	anomalyThreshold float64
}

// NewValidator creates a validator flagging amounts above
// anomalyThreshold as anomalous.
func NewValidator(log zerolog.Logger, anomalyThreshold float64) *Validator {
	return &Validator{
		log:              log,
		anomalyThreshold: anomalyThreshold,
	}
}

// Validate checks the mandatory fields of rec and returns a copy with the
// amount_anomaly flag attached. On the first mandatory-rule violation it
// returns one of the Err* sentinel errors and no record; the input is
// never modified.
func (v *Validator) Validate(rec Record) (Record, error) {
	if err := v.validateTransactionID(rec); err != nil {
		return nil, err
	}
	if err := v.validateDate(rec); err != nil {
		return nil, err
	}
	if err := v.validateAmount(rec); err != nil {
		return nil, err
	}
	if err := v.validateCurrency(rec); err != nil {
		return nil, err
	}

	// Optional fields: log a warning, keep the record as-is.
	v.checkDirection(rec)
	v.checkAccountType(rec)

	out := rec.Clone()
	amount, _ := numericValue(rec["amount"])
	out["amount_anomaly"] = amount > v.anomalyThreshold

	return out, nil
}

func (v *Validator) validateTransactionID(rec Record) error {
	id, ok := stringValue(rec, "transaction_id")
	if !ok || id == "" {
		v.log.Error().Interface("transaction_id", rec["transaction_id"]).Msg("transaction id missing or not a string")
		return fmt.Errorf("%w: transaction id must be a non-empty string", ErrInvalidTransactionID)
	}
	if !transactionIDPattern.MatchString(strings.TrimSpace(id)) {
		v.log.Error().Str("transaction_id", id).Msg("transaction id does not match pattern")
		return fmt.Errorf("%w: must match pattern TXNxxxxxxx, got %q", ErrInvalidTransactionID, id)
	}
	return nil
}

func (v *Validator) validateDate(rec Record) error {
	dateStr, ok := stringValue(rec, "transaction_date")
	if !ok || dateStr == "" {
		v.log.Error().Interface("transaction_date", rec["transaction_date"]).Msg("transaction date missing or not a string")
		return fmt.Errorf("%w: transaction date must be a non-empty string", ErrInvalidDateFormat)
	}
	if _, ok := parseFlexibleDate(dateStr); !ok {
		v.log.Error().Str("transaction_date", dateStr).Msg("invalid date format")
		return fmt.Errorf("%w: date must be YYYY-MM-DD or DD/MM/YYYY, got %q", ErrInvalidDateFormat, dateStr)
	}
	return nil
}

func (v *Validator) validateAmount(rec Record) error {
	raw, present := rec["amount"]
	if !present || raw == nil {
		v.log.Error().Msg("amount cannot be empty")
		return fmt.Errorf("%w: amount cannot be empty", ErrInvalidAmount)
	}
	if s, isString := raw.(string); isString && strings.TrimSpace(s) == "" {
		v.log.Error().Msg("amount cannot be empty")
		return fmt.Errorf("%w: amount cannot be empty", ErrInvalidAmount)
	}

	amount, ok := numericValue(raw)
	if !ok {
		v.log.Error().Interface("amount", raw).Msg("amount is not numeric")
		return fmt.Errorf("%w: amount must be numeric, got %v", ErrInvalidAmount, raw)
	}
	if amount < 0 {
		v.log.Error().Float64("amount", amount).Msg("amount cannot be negative")
		return fmt.Errorf("%w: amount cannot be negative: %v", ErrInvalidAmount, amount)
	}
	return nil
}

func (v *Validator) validateCurrency(rec Record) error {
	currency, ok := stringValue(rec, "currency")
	if !ok || currency == "" {
		v.log.Error().Interface("currency", rec["currency"]).Msg("currency missing or not a string")
		return fmt.Errorf("%w: currency must be a non-empty string", ErrInvalidCurrency)
	}
	if !validCurrencies[strings.ToUpper(strings.TrimSpace(currency))] {
		v.log.Error().Str("currency", currency).Msg("invalid currency code")
		return fmt.Errorf("%w: currency must be one of IDR, USD, SGD, got %q", ErrInvalidCurrency, currency)
	}
	return nil
}

func (v *Validator) checkDirection(rec Record) {
	direction, ok := stringValue(rec, "direction")
	if !ok || direction == "" {
		return
	}
	if !validDirections[strings.ToUpper(strings.TrimSpace(direction))] {
		v.log.Warn().Str("direction", direction).Msg("invalid direction")
	}
}

func (v *Validator) checkAccountType(rec Record) {
	accountType, ok := stringValue(rec, "account_type")
	if !ok || accountType == "" {
		return
	}
	if !validAccountTypes[strings.ToUpper(strings.TrimSpace(accountType))] {
		v.log.Warn().Str("account_type", accountType).Msg("invalid account type")
	}
}
