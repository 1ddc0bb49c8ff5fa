package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"renodevis/internal/core/types"
)

// PriceRange is a vendor-supplied [Min, Max] price pair.
type PriceRange struct {
	Min types.Money `json:"min" msgpack:"min"`
	Max types.Money `json:"max" msgpack:"max"`
}

// NewPriceRange builds a range from two float bounds.
func NewPriceRange(lo, hi float64) PriceRange {
	return PriceRange{Min: types.NewMoney(lo), Max: types.NewMoney(hi)}
}

// Validate checks 0 <= Min <= Max.
func (r PriceRange) Validate() error {
	if r.Min.IsNegative() {
		return fmt.Errorf("negative minimum %s", r.Min)
	}
	if r.Min.GreaterThan(r.Max) {
		return fmt.Errorf("minimum %s exceeds maximum %s", r.Min, r.Max)
	}
	return nil
}

// Midpoint is the default price: exactly (Min+Max)/2.
func (r PriceRange) Midpoint() types.Money {
	return types.Midpoint(r.Min, r.Max)
}

// Add sums two ranges bound by bound.
func (r PriceRange) Add(o PriceRange) PriceRange {
	return PriceRange{Min: r.Min.Add(o.Min), Max: r.Max.Add(o.Max)}
}

// Div divides both bounds by n.
func (r PriceRange) Div(n int64) PriceRange {
	d := decimal.NewFromInt(n)
	return PriceRange{Min: r.Min.Div(d), Max: r.Max.Div(d)}
}

// IsZero reports whether both bounds are zero.
func (r PriceRange) IsZero() bool {
	return r.Min.IsZero() && r.Max.IsZero()
}
