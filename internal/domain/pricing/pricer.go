package pricing

import (
	"fmt"

	"renodevis/internal/core/id"
	"renodevis/internal/core/types"
	"renodevis/internal/domain/catalog"
)

const (
	unitLinearMeter = "m linéaire"
	unitSquareMeter = "m²"
)

// Validation messages, one per failing category.
const (
	msgKitchenMissing   = "Cuisine: Veuillez remplir le type et la longueur"
	msgPartitionMissing = "Cloison: Veuillez remplir le type et la surface"
	msgPaintMissing     = "Peinture: Veuillez remplir au moins mur OU plafond"
	msgFlooringMissing  = "Parquet: Veuillez remplir le type et la surface"
	msgFlooringMethod   = "Parquet: Veuillez sélectionner un type de pose"
)

func msgUnknownReference(c catalog.Category) string {
	return fmt.Sprintf("%s: référence introuvable", c.Label())
}

func modeLabel(supplyInstall bool) string {
	if supplyInstall {
		return "Pose + Fourniture"
	}
	return "Pose seule"
}

// baseRange is the per-unit price range an entry is billed at.
func baseRange(e catalog.Entry, supplyInstall bool) catalog.PriceRange {
	switch v := e.(type) {
	case catalog.Kitchen:
		if supplyInstall {
			return v.Cost.Add(v.Labor).Div(catalog.KitchenReferenceRun)
		}
		return v.Labor.Div(catalog.KitchenReferenceRun)
	case catalog.Worktop:
		if supplyInstall {
			return v.SupplyInstall
		}
		return v.InstallOnly
	case catalog.Partition:
		if supplyInstall {
			return v.InstallIncluded
		}
		return v.InstallOnly
	case catalog.PartitionOption:
		return v.Supplement
	case catalog.Paint:
		return v.Price
	case catalog.Flooring:
		return v.Supply
	case catalog.FlooringMethod:
		return v.Price
	case catalog.Extra:
		return v.Cost
	}
	return catalog.PriceRange{}
}

// priced is the outcome of pricing one category.
type priced struct {
	items []LineItem
	err   string
}

func failed(msg string) priced { return priced{err: msg} }

func priceKitchen(sel *KitchenSelection, snap *catalog.Snapshot) priced {
	length := sel.Length.Quantity()
	if id.IsNil(sel.TypeID) || !length.IsPositive() {
		return failed(msgKitchenMissing)
	}
	kitchen, ok := snap.Kitchen(sel.TypeID)
	if !ok {
		return failed(msgUnknownReference(catalog.CategoryKitchen))
	}

	items := []LineItem{newLineItem(
		catalog.CategoryKitchen,
		kitchen.ID,
		fmt.Sprintf("%s (%s)", kitchen.Name, modeLabel(sel.SupplyInstall)),
		length,
		unitLinearMeter,
		baseRange(kitchen, sel.SupplyInstall),
		sel.Offered,
	)}

	qc := NewQuantityContext(catalog.CategoryKitchen, length, sel.Appliances.Count())
	items = append(items, priceExtras(catalog.CategoryKitchen, sel.Extras, qc, snap)...)

	if w := sel.Worktop; w != nil && !id.IsNil(w.TypeID) && w.Quantity.Quantity().IsPositive() {
		worktop, ok := snap.Worktop(w.TypeID)
		if !ok {
			return failed(msgUnknownReference(catalog.CategoryKitchen))
		}
		items = append(items, newLineItem(
			catalog.CategoryKitchen,
			worktop.ID,
			fmt.Sprintf("Plan de travail %s (%s)", worktop.Name, modeLabel(w.SupplyInstall)),
			w.Quantity.Quantity(),
			worktop.Unit,
			baseRange(worktop, w.SupplyInstall),
			w.Offered,
		))
	}
	return priced{items: items}
}

func pricePartition(sel *PartitionSelection, snap *catalog.Snapshot) priced {
	area := sel.Area.Quantity()
	if id.IsNil(sel.TypeID) || !area.IsPositive() {
		return failed(msgPartitionMissing)
	}
	partition, ok := snap.Partition(sel.TypeID)
	if !ok {
		return failed(msgUnknownReference(catalog.CategoryPartition))
	}

	items := []LineItem{newLineItem(
		catalog.CategoryPartition,
		partition.ID,
		fmt.Sprintf("%s (%s)", partition.Name, modeLabel(sel.SupplyInstall)),
		area,
		unitSquareMeter,
		baseRange(partition, sel.SupplyInstall),
		sel.Offered,
	)}

	// supplements only exist for supply+install
	if sel.SupplyInstall {
		for _, pick := range sel.Options {
			opt, ok := snap.PartitionOption(pick.ID)
			if !ok || opt.Supplement.IsZero() {
				continue
			}
			optArea := pick.Area.Quantity()
			if !optArea.IsPositive() {
				optArea = area
			}
			items = append(items, newLineItem(
				catalog.CategoryPartition, opt.ID, opt.Name, optArea, opt.Unit, baseRange(opt, true), pick.Offered,
			))
		}
	}

	qc := NewQuantityContext(catalog.CategoryPartition, area, 1)
	items = append(items, priceExtras(catalog.CategoryPartition, sel.Extras, qc, snap)...)
	return priced{items: items}
}

func pricePaint(sel *PaintSelection, snap *catalog.Snapshot) priced {
	var items []LineItem
	for _, s := range []*SurfacePick{sel.Wall, sel.Ceiling} {
		if !s.filled() {
			continue
		}
		paint, ok := snap.Paint(s.TypeID)
		if !ok {
			return failed(msgUnknownReference(catalog.CategoryPaint))
		}
		items = append(items, newLineItem(
			catalog.CategoryPaint, paint.ID, paint.Name, s.Area.Quantity(), paint.Unit, baseRange(paint, true), s.Offered,
		))
	}
	if len(items) == 0 {
		return failed(msgPaintMissing)
	}

	total := types.Zero()
	if sel.Wall != nil {
		total = total.Add(sel.Wall.Area.Quantity())
	}
	if sel.Ceiling != nil {
		total = total.Add(sel.Ceiling.Area.Quantity())
	}
	qc := NewQuantityContext(catalog.CategoryPaint, total, 1)
	items = append(items, priceExtras(catalog.CategoryPaint, sel.Extras, qc, snap)...)
	return priced{items: items}
}

func priceFlooring(sel *FlooringSelection, snap *catalog.Snapshot) priced {
	area := sel.Area.Quantity()
	if id.IsNil(sel.TypeID) || !area.IsPositive() {
		return failed(msgFlooringMissing)
	}
	if id.IsNil(sel.MethodID) {
		return failed(msgFlooringMethod)
	}
	flooring, ok := snap.Flooring(sel.TypeID)
	if !ok {
		return failed(msgUnknownReference(catalog.CategoryFlooring))
	}
	method, ok := snap.FlooringMethod(sel.MethodID)
	if !ok {
		return failed(msgFlooringMethod)
	}

	r := baseRange(method, sel.SupplyInstall)
	if sel.SupplyInstall {
		r = baseRange(flooring, true).Add(r)
	}
	items := []LineItem{newLineItem(
		catalog.CategoryFlooring,
		flooring.ID,
		fmt.Sprintf("%s - %s (%s)", flooring.Name, method.Name, modeLabel(sel.SupplyInstall)),
		area,
		flooring.Unit,
		r,
		sel.Offered,
	)}

	qc := NewQuantityContext(catalog.CategoryFlooring, area, 1)
	items = append(items, priceExtras(catalog.CategoryFlooring, sel.Extras, qc, snap)...)
	return priced{items: items}
}

// priceExtras prices the picked extras of category. Ids that are unknown or
// belong to another category are skipped.
func priceExtras(category catalog.Category, picks []ExtraPick, qc QuantityContext, snap *catalog.Snapshot) []LineItem {
	var items []LineItem
	for _, pick := range picks {
		extra, ok := snap.Extra(pick.ID)
		if !ok || extra.Category != category {
			continue
		}
		items = append(items, newLineItem(
			category,
			extra.ID,
			extra.Name,
			ResolveQuantity(category, extra.Unit, qc),
			extra.Unit.Label,
			baseRange(extra, true),
			pick.Offered,
		))
	}
	return items
}
