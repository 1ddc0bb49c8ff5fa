package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"renodevis/internal/core/id"
	"renodevis/internal/core/types"
	"renodevis/internal/domain/catalog"
)

const unitFlatFee = "forfait"

// Service reference ids are stable so persisted lines of the same service
// can be grouped.
var (
	DeliveryServiceID = id.FromName("service", "livraison")
	TravelServiceID   = id.FromName("service", "deplacement")
)

// DisposalServiceID returns the reference id of a disposal service.
func DisposalServiceID(kind catalog.WasteKind) id.ID {
	return id.FromName("service", "debarras:"+string(kind))
}

var disposalNames = map[catalog.WasteKind]string{
	catalog.WasteDepot:       "Débarras (dépôt en déchetterie)",
	catalog.WasteRubble:      "Débarras (gravats)",
	catalog.WasteBulkyObject: "Débarras (encombrants)",
}

// serviceLine builds a flat-fee service line whose range collapses to amount.
func serviceLine(ref id.ID, name string, amount types.Money, offered bool) LineItem {
	amount = types.RoundMoney(amount)
	return newLineItem(
		catalog.CategoryServices, ref, name, one, unitFlatFee,
		catalog.PriceRange{Min: amount, Max: amount}, offered,
	)
}

// rateOr returns the typed rate override, or def.
func rateOr(in Input, def types.Money) types.Money {
	if v, ok := in.Money(); ok {
		return v
	}
	return def
}

func priceDelivery(s *DistanceService, rates catalog.ServiceRates) priced {
	const name = "Livraison"
	if fee, ok := s.CustomFee.Money(); ok {
		return priced{items: []LineItem{serviceLine(DeliveryServiceID, name, fee, s.Offered)}}
	}
	km := s.Km.Quantity()
	if !km.IsPositive() {
		return failed(name + ": Veuillez renseigner la distance")
	}
	amount := km.Mul(rateOr(s.RatePerKm, rates.DeliveryPerKm))
	return priced{items: []LineItem{serviceLine(DeliveryServiceID, fmt.Sprintf("%s (%s km)", name, km), amount, s.Offered)}}
}

func priceTravel(s *TravelService, rates catalog.ServiceRates) priced {
	const name = "Déplacement"
	if fee, ok := s.CustomFee.Money(); ok {
		return priced{items: []LineItem{serviceLine(TravelServiceID, name, fee, s.Offered)}}
	}
	km := s.Km.Quantity()
	if !km.IsPositive() {
		return failed(name + ": Veuillez renseigner la distance")
	}
	trips := s.Trips.Count()
	amount := km.Mul(rateOr(s.RatePerKm, rates.TravelPerKm)).Mul(decimal.NewFromInt(trips))
	label := fmt.Sprintf("%s (%s km × %d)", name, km, trips)
	return priced{items: []LineItem{serviceLine(TravelServiceID, label, amount, s.Offered)}}
}

func priceDisposal(s *DisposalService, rates catalog.ServiceRates) priced {
	kind := s.Kind
	if kind == "" {
		kind = catalog.WasteDepot
	}
	name, known := disposalNames[kind]
	if !known {
		return failed("Débarras: type de déchets inconnu")
	}
	if fee, ok := s.CustomFee.Money(); ok {
		return priced{items: []LineItem{serviceLine(DisposalServiceID(kind), name, fee, s.Offered)}}
	}
	volume := s.Volume.Quantity()
	if !volume.IsPositive() {
		return failed("Débarras: Veuillez renseigner le volume")
	}
	def, _ := rates.DisposalRate(kind)
	amount := volume.Mul(rateOr(s.RatePerM3, def))
	label := fmt.Sprintf("%s (%s m³)", name, volume)
	return priced{items: []LineItem{serviceLine(DisposalServiceID(kind), label, amount, s.Offered)}}
}

func priceServices(sel ServiceSelections, rates catalog.ServiceRates) []priced {
	var out []priced
	if sel.Delivery != nil {
		out = append(out, priceDelivery(sel.Delivery, rates))
	}
	if sel.Travel != nil {
		out = append(out, priceTravel(sel.Travel, rates))
	}
	if sel.Disposal != nil {
		out = append(out, priceDisposal(sel.Disposal, rates))
	}
	return out
}
