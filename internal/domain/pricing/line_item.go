// Package pricing turns catalog selections into priced quote lines and
// computes quote totals.
//
// Everything here is pure and synchronous: functions take values and return
// fresh values, with no I/O and no shared state.
package pricing

import (
	"renodevis/internal/core/id"
	"renodevis/internal/core/types"
	"renodevis/internal/domain/catalog"
)

// LineItem is one priced row (poste) of a quote.
type LineItem struct {
	Category      catalog.Category `json:"categorie"`
	ReferenceID   id.ID            `json:"reference_id"`
	ReferenceName string           `json:"reference_nom"`
	Quantity      types.Quantity   `json:"quantite"`
	Unit          string           `json:"unite"`
	PriceMin      types.Money      `json:"prix_min"`
	PriceMax      types.Money      `json:"prix_max"`
	PriceDefault  types.Money      `json:"prix_default"`
	// PriceAdjusted is nil until set; EffectivePrice falls back to
	// PriceDefault.
	PriceAdjusted *types.Money `json:"prix_ajuste,omitempty"`
	Offered       bool         `json:"offert"`
}

func newLineItem(category catalog.Category, ref id.ID, name string, qty types.Quantity, unit string, r catalog.PriceRange, offered bool) LineItem {
	def := r.Midpoint()
	adjusted := def
	return LineItem{
		Category:      category,
		ReferenceID:   ref,
		ReferenceName: name,
		Quantity:      qty,
		Unit:          unit,
		PriceMin:      r.Min,
		PriceMax:      r.Max,
		PriceDefault:  def,
		PriceAdjusted: &adjusted,
		Offered:       offered,
	}
}

// Range returns the item's [PriceMin, PriceMax] bounds.
func (li LineItem) Range() catalog.PriceRange {
	return catalog.PriceRange{Min: li.PriceMin, Max: li.PriceMax}
}

// AdjustPrice moves the price point, clamped into [PriceMin, PriceMax].
func (li *LineItem) AdjustPrice(p types.Money) {
	v := types.Clamp(p, li.PriceMin, li.PriceMax)
	li.PriceAdjusted = &v
}

// ToggleOffered flips the offered flag.
func (li *LineItem) ToggleOffered() {
	li.Offered = !li.Offered
}

// EffectivePrice is the adjusted price, or the default when unadjusted.
func (li LineItem) EffectivePrice() types.Money {
	if li.PriceAdjusted != nil {
		return *li.PriceAdjusted
	}
	return li.PriceDefault
}

// SubTotal is Quantity × EffectivePrice, whether or not the item is offered.
func (li LineItem) SubTotal() types.Money {
	return li.Quantity.Mul(li.EffectivePrice())
}

// Contribution is the item's share of the quote total: zero when offered.
func (li LineItem) Contribution() types.Money {
	if li.Offered {
		return types.Zero()
	}
	return li.SubTotal()
}

// Normalize recomputes the default as the range midpoint and brings an
// adjusted price that is missing or out of range back to the default.
func (li LineItem) Normalize() LineItem {
	li.PriceDefault = types.Midpoint(li.PriceMin, li.PriceMax)
	p := li.PriceDefault
	if li.PriceAdjusted != nil &&
		!li.PriceAdjusted.LessThan(li.PriceMin) &&
		!li.PriceAdjusted.GreaterThan(li.PriceMax) {
		p = *li.PriceAdjusted
	}
	li.PriceAdjusted = &p
	return li
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, it := range items {
		if it.PriceAdjusted != nil {
			p := *it.PriceAdjusted
			it.PriceAdjusted = &p
		}
		out[i] = it
	}
	return out
}
