package etl

import "regexp"

// Default thresholds and reference values. The anomaly and
// large-transaction thresholds overlap in purpose but are kept as
// independent constants; both can be overridden via configuration.
const (
	// DefaultAnomalyThreshold is the amount above which the validator
	// flags a record with amount_anomaly.
	DefaultAnomalyThreshold = 10_000_000

	// DefaultLargeTransactionThreshold is the amount above which the
	// transformer sets is_large_transaction.
	DefaultLargeTransactionThreshold = 5_000_000

	// DefaultBaseCurrency is the domestic currency; anything else marks a
	// transaction as cross-border.
	DefaultBaseCurrency = "IDR"

	// UnknownMerchantCategory is imputed for blank merchant categories.
	UnknownMerchantCategory = "Unknown"
)

var (
	transactionIDPattern = regexp.MustCompile(`^TXN\d{7}$`)

	validCurrencies = map[string]bool{
		"IDR": true,
		"USD": true,
		"SGD": true,
	}

	validDirections = map[string]bool{
		"DEBIT":  true,
		"CREDIT": true,
	}

	validAccountTypes = map[string]bool{
		"SAVINGS":     true,
		"CURRENT":     true,
		"CREDIT_CARD": true,
		"LOAN":        true,
	}
)
