package pricing

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"renodevis/internal/core/types"
)

// Input is a raw, user-typed number. It decodes from a JSON string or number
// and is only interpreted when a quote is assembled, leniently.
type Input string

// UnmarshalJSON accepts "12,5", "12.5", 12.5 and null.
func (in *Input) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*in = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*in = Input(s)
		return nil
	}
	*in = Input(data)
	return nil
}

// IsSet reports whether anything was typed.
func (in Input) IsSet() bool {
	_, ok := types.ParseLenient(string(in))
	return ok
}

// Quantity parses the input as a billable quantity. Invalid or negative
// input yields zero.
func (in Input) Quantity() types.Quantity {
	d, ok := types.ParseLenient(string(in))
	if !ok || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Count parses the input as a whole count. Invalid or non-positive input
// yields 1.
func (in Input) Count() int64 {
	d, ok := types.ParseLenient(string(in))
	if !ok {
		return 1
	}
	n := d.IntPart()
	if n <= 0 {
		return 1
	}
	return n
}

// Money parses the input as an amount; ok is false when nothing valid was
// typed or the amount is negative.
func (in Input) Money() (types.Money, bool) {
	d, ok := types.ParseLenient(string(in))
	if !ok || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// ParseQuantity leniently parses a typed quantity; invalid input is zero.
func ParseQuantity(raw string) types.Quantity { return Input(raw).Quantity() }

// ParseCount leniently parses a typed count; invalid input is one.
func ParseCount(raw string) int64 { return Input(raw).Count() }
