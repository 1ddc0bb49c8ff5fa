package quote

import (
	"renodevis/internal/core/numerator"
	"renodevis/internal/core/types"
)

const (
	// NumeratorStrategy is strict: quotes are sent to clients and their
	// numbers must not skip.
	NumeratorStrategy = numerator.StrategyStrict

	DefaultValidityDays = 30
)

// Config holds the defaults applied to new quotes.
type Config struct {
	ValidityDays int
	VATRate      types.Money
}

// DefaultConfig returns 30 days validity and 20% VAT.
func DefaultConfig() Config {
	return Config{
		ValidityDays: DefaultValidityDays,
		VATRate:      types.MustMoney("20"),
	}
}
