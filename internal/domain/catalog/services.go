package catalog

import (
	"fmt"

	"renodevis/internal/core/types"
)

// WasteKind is a waste disposal tariff class.
type WasteKind string

const (
	WasteDepot       WasteKind = "depot"
	WasteRubble      WasteKind = "gravats"
	WasteBulkyObject WasteKind = "encombrants"
)

// ServiceRates are the default rates of the non-catalog services. Users may
// override them per quote.
type ServiceRates struct {
	DeliveryPerKm types.Money
	TravelPerKm   types.Money
	DisposalPerM3 map[WasteKind]types.Money
}

// DefaultServiceRates returns the rates used when the tariff file has none.
func DefaultServiceRates() ServiceRates {
	return ServiceRates{
		DeliveryPerKm: types.MustMoney("0.55"),
		TravelPerKm:   types.MustMoney("0.55"),
		DisposalPerM3: map[WasteKind]types.Money{
			WasteDepot:       types.MustMoney("30"),
			WasteRubble:      types.MustMoney("75"),
			WasteBulkyObject: types.MustMoney("60"),
		},
	}
}

// DisposalRate returns the €/m³ rate for kind.
func (r ServiceRates) DisposalRate(kind WasteKind) (types.Money, bool) {
	rate, ok := r.DisposalPerM3[kind]
	return rate, ok
}

// Validate rejects negative rates.
func (r ServiceRates) Validate() error {
	if r.DeliveryPerKm.IsNegative() {
		return fmt.Errorf("negative delivery rate")
	}
	if r.TravelPerKm.IsNegative() {
		return fmt.Errorf("negative travel rate")
	}
	for kind, rate := range r.DisposalPerM3 {
		if rate.IsNegative() {
			return fmt.Errorf("negative disposal rate for %s", kind)
		}
	}
	return nil
}
