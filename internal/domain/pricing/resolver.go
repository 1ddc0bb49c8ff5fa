package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"renodevis/internal/core/types"
	"renodevis/internal/domain/catalog"
)

// QuantityContext carries the quantities an extra's billable quantity can
// be derived from.
type QuantityContext struct {
	// Primary is the category's main quantity: kitchen length, partition
	// area, wall+ceiling area or floor surface.
	Primary types.Quantity
	// Appliances is the declared appliance count.
	Appliances int64
	// Perimeter is the estimated room perimeter (flooring only).
	Perimeter types.Quantity
}

// NewQuantityContext builds the context for category. Non-positive primary
// quantities become zero and appliance counts below one become one.
func NewQuantityContext(category catalog.Category, primary types.Quantity, appliances int64) QuantityContext {
	if !primary.IsPositive() {
		primary = decimal.Zero
	}
	if appliances < 1 {
		appliances = 1
	}
	qc := QuantityContext{Primary: primary, Appliances: appliances}
	if category == catalog.CategoryFlooring {
		qc.Perimeter = Perimeter(primary)
	}
	return qc
}

// Perimeter approximates a square room's perimeter from its surface:
// round(sqrt(surface) * 4). Surfaces beyond float64 range resolve to zero.
func Perimeter(surface types.Quantity) types.Quantity {
	if !surface.IsPositive() {
		return decimal.Zero
	}
	f, _ := surface.Float64()
	p := math.Round(math.Sqrt(f) * 4)
	if math.IsInf(p, 0) || math.IsNaN(p) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(p)
}

var one = decimal.NewFromInt(1)

// ResolveQuantity returns the billable quantity of an extra with the given
// unit, attached to category.
func ResolveQuantity(category catalog.Category, unit catalog.BillingUnit, qc QuantityContext) types.Quantity {
	switch category {
	case catalog.CategoryKitchen:
		switch unit.Kind {
		case catalog.UnitLinearMeter, catalog.UnitArea:
			// a splashback's area is approximated by the kitchen length
			return qc.Primary
		case catalog.UnitPerAppliance:
			return decimal.NewFromInt(qc.Appliances)
		}
	case catalog.CategoryPartition, catalog.CategoryPaint:
		if unit.Kind == catalog.UnitArea {
			return qc.Primary
		}
	case catalog.CategoryFlooring:
		switch unit.Kind {
		case catalog.UnitLinearMeter:
			return qc.Perimeter
		case catalog.UnitArea:
			return qc.Primary
		}
	}
	return one
}
