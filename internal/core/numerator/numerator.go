// Package numerator declares how quotes and invoices get their numbers.
// The Postgres implementation lives in infrastructure/numerator.
package numerator

import (
	"context"
	"time"
)

// Document prefixes.
const (
	PrefixQuote   = "DEV"
	PrefixInvoice = "FAC"
)

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict takes every number from the sequence row inside the
	// caller's transaction, so a rolled back document leaves no gap.
	StrategyStrict Strategy = iota

	// StrategyCached reserves RangeSize numbers at once and hands them out
	// from memory. Numbers lost on restart leave gaps.
	StrategyCached
)

// Options configuration for number generation.
type Options struct {
	Strategy Strategy
	// RangeSize is used by StrategyCached. Default is 50.
	RangeSize int64
}

// DefaultOptions returns strict numbering, the only mode allowed for
// documents sent to clients.
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Config holds numbering configuration.
type Config struct {
	Prefix string

	// IncludeYear adds the period year and restarts the sequence every year.
	IncludeYear bool

	// PadWidth is the minimum sequence width.
	PadWidth int
}

// DefaultConfig returns PREFIX-YEAR-00001 numbering.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
	}
}

// Generator hands out document numbers.
type Generator interface {
	// GetNextNumber returns the next number for cfg in the period's year,
	// e.g. DEV-2026-00001.
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber moves the sequence so that the next number is value.
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
