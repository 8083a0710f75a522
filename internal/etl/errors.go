package etl

import "errors"

// Domain errors raised by the validator. Each one is fatal to the single
// record it was raised for, never to the batch; the orchestrator counts
// the failure and moves on to the next record. Callers match the kind
// with errors.Is; per-case detail is attached via fmt.Errorf("%w: ...").
var (
	// ErrInvalidTransactionID means the transaction id is missing or does
	// not match the TXN+7-digits format.
	ErrInvalidTransactionID = errors.New("invalid transaction id")

	// ErrInvalidDateFormat means the transaction date is missing or is
	// neither YYYY-MM-DD nor DD/MM/YYYY.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrInvalidAmount means the amount is empty, non-numeric or negative.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidCurrency means the currency is not one of the supported
	// codes.
	ErrInvalidCurrency = errors.New("invalid currency")
)
