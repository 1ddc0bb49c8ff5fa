package catalog_repo

import (
	"fmt"
	"strings"

	"renodevis/internal/core/id"
	"renodevis/internal/core/types"
	"renodevis/internal/domain/catalog"
)

// Catalog tables.
const (
	TableKitchens         = "cat_kitchens"
	TableWorktops         = "cat_worktops"
	TablePartitions       = "cat_partitions"
	TablePartitionOptions = "cat_partition_options"
	TablePaints           = "cat_paints"
	TableFloorings        = "cat_floorings"
	TableFlooringMethods  = "cat_flooring_methods"
	TableExtras           = "cat_extras"
	TableServiceRates     = "cat_service_rates"
)

// entryRow is a catalog table row.
type entryRow interface {
	entry() catalog.Entry
}

type kitchenRow struct {
	ID       id.ID       `db:"id"`
	Position int         `db:"position"`
	Name     string      `db:"nom"`
	CostMin  types.Money `db:"cout_min"`
	CostMax  types.Money `db:"cout_max"`
	PoseMin  types.Money `db:"pose_min"`
	PoseMax  types.Money `db:"pose_max"`
}

func (r kitchenRow) entry() catalog.Entry {
	return catalog.Kitchen{
		ID:    r.ID,
		Name:  r.Name,
		Cost:  catalog.PriceRange{Min: r.CostMin, Max: r.CostMax},
		Labor: catalog.PriceRange{Min: r.PoseMin, Max: r.PoseMax},
	}
}

type worktopRow struct {
	ID               id.ID       `db:"id"`
	Position         int         `db:"position"`
	Name             string      `db:"nom"`
	SupplyInstallMin types.Money `db:"fourniture_pose_min"`
	SupplyInstallMax types.Money `db:"fourniture_pose_max"`
	InstallOnlyMin   types.Money `db:"pose_seule_min"`
	InstallOnlyMax   types.Money `db:"pose_seule_max"`
	Unit             string      `db:"unite"`
}

func (r worktopRow) entry() catalog.Entry {
	return catalog.Worktop{
		ID:            r.ID,
		Name:          r.Name,
		SupplyInstall: catalog.PriceRange{Min: r.SupplyInstallMin, Max: r.SupplyInstallMax},
		InstallOnly:   catalog.PriceRange{Min: r.InstallOnlyMin, Max: r.InstallOnlyMax},
		Unit:          r.Unit,
	}
}

type partitionRow struct {
	ID                 id.ID       `db:"id"`
	Position           int         `db:"position"`
	Name               string      `db:"nom"`
	SupplyMin          types.Money `db:"fourniture_min"`
	SupplyMax          types.Money `db:"fourniture_max"`
	InstallIncludedMin types.Money `db:"pose_incluse_min"`
	InstallIncludedMax types.Money `db:"pose_incluse_max"`
	InstallOnlyMin     types.Money `db:"pose_seule_min"`
	InstallOnlyMax     types.Money `db:"pose_seule_max"`
	Unit               string      `db:"unite"`
}

func (r partitionRow) entry() catalog.Entry {
	return catalog.Partition{
		ID:              r.ID,
		Name:            r.Name,
		Supply:          catalog.PriceRange{Min: r.SupplyMin, Max: r.SupplyMax},
		InstallIncluded: catalog.PriceRange{Min: r.InstallIncludedMin, Max: r.InstallIncludedMax},
		InstallOnly:     catalog.PriceRange{Min: r.InstallOnlyMin, Max: r.InstallOnlyMax},
		Unit:            r.Unit,
	}
}

type partitionOptionRow struct {
	ID            id.ID       `db:"id"`
	Position      int         `db:"position"`
	Name          string      `db:"nom"`
	Description   string      `db:"description"`
	SupplementMin types.Money `db:"supplement_min"`
	SupplementMax types.Money `db:"supplement_max"`
	Unit          string      `db:"unite"`
}

func (r partitionOptionRow) entry() catalog.Entry {
	return catalog.PartitionOption{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Supplement:  catalog.PriceRange{Min: r.SupplementMin, Max: r.SupplementMax},
		Unit:        r.Unit,
	}
}

type paintRow struct {
	ID       id.ID       `db:"id"`
	Position int         `db:"position"`
	Name     string      `db:"nom"`
	Kind     string      `db:"type"`
	Surface  string      `db:"surface"`
	PriceMin types.Money `db:"prix_min"`
	PriceMax types.Money `db:"prix_max"`
	Unit     string      `db:"unite"`
}

func (r paintRow) entry() catalog.Entry {
	return catalog.Paint{
		ID:      r.ID,
		Name:    r.Name,
		Kind:    r.Kind,
		Surface: catalog.PaintSurface(r.Surface),
		Price:   catalog.PriceRange{Min: r.PriceMin, Max: r.PriceMax},
		Unit:    r.Unit,
	}
}

type flooringRow struct {
	ID        id.ID       `db:"id"`
	Position  int         `db:"position"`
	Name      string      `db:"nom"`
	Kind      string      `db:"type"`
	WearClass string      `db:"classe_ac"`
	SupplyMin types.Money `db:"fourniture_min"`
	SupplyMax types.Money `db:"fourniture_max"`
	Unit      string      `db:"unite"`
}

func (r flooringRow) entry() catalog.Entry {
	return catalog.Flooring{
		ID:        r.ID,
		Name:      r.Name,
		Kind:      r.Kind,
		WearClass: r.WearClass,
		Supply:    catalog.PriceRange{Min: r.SupplyMin, Max: r.SupplyMax},
		Unit:      r.Unit,
	}
}

type flooringMethodRow struct {
	ID       id.ID       `db:"id"`
	Position int         `db:"position"`
	Name     string      `db:"nom"`
	PriceMin types.Money `db:"prix_min"`
	PriceMax types.Money `db:"prix_max"`
	Unit     string      `db:"unite"`
}

func (r flooringMethodRow) entry() catalog.Entry {
	return catalog.FlooringMethod{
		ID:    r.ID,
		Name:  r.Name,
		Price: catalog.PriceRange{Min: r.PriceMin, Max: r.PriceMax},
		Unit:  r.Unit,
	}
}

type extraRow struct {
	ID          id.ID       `db:"id"`
	Position    int         `db:"position"`
	Category    string      `db:"categorie"`
	Name        string      `db:"nom"`
	Description string      `db:"description"`
	CostMin     types.Money `db:"cout_min"`
	CostMax     types.Money `db:"cout_max"`
	Unit        string      `db:"unite"`
}

func (r extraRow) entry() catalog.Entry {
	return catalog.Extra{
		ID:          r.ID,
		Category:    catalog.Category(r.Category),
		Name:        r.Name,
		Description: r.Description,
		Cost:        catalog.PriceRange{Min: r.CostMin, Max: r.CostMax},
		Unit:        catalog.ParseBillingUnit(r.Unit),
	}
}

// rowOf returns the table and row storing e at position.
func rowOf(e catalog.Entry, position int) (string, entryRow) {
	switch v := e.(type) {
	case catalog.Kitchen:
		return TableKitchens, kitchenRow{
			ID: v.ID, Position: position, Name: v.Name,
			CostMin: v.Cost.Min, CostMax: v.Cost.Max,
			PoseMin: v.Labor.Min, PoseMax: v.Labor.Max,
		}
	case catalog.Worktop:
		return TableWorktops, worktopRow{
			ID: v.ID, Position: position, Name: v.Name,
			SupplyInstallMin: v.SupplyInstall.Min, SupplyInstallMax: v.SupplyInstall.Max,
			InstallOnlyMin: v.InstallOnly.Min, InstallOnlyMax: v.InstallOnly.Max,
			Unit: v.Unit,
		}
	case catalog.Partition:
		return TablePartitions, partitionRow{
			ID: v.ID, Position: position, Name: v.Name,
			SupplyMin: v.Supply.Min, SupplyMax: v.Supply.Max,
			InstallIncludedMin: v.InstallIncluded.Min, InstallIncludedMax: v.InstallIncluded.Max,
			InstallOnlyMin: v.InstallOnly.Min, InstallOnlyMax: v.InstallOnly.Max,
			Unit: v.Unit,
		}
	case catalog.PartitionOption:
		return TablePartitionOptions, partitionOptionRow{
			ID: v.ID, Position: position, Name: v.Name, Description: v.Description,
			SupplementMin: v.Supplement.Min, SupplementMax: v.Supplement.Max,
			Unit: v.Unit,
		}
	case catalog.Paint:
		return TablePaints, paintRow{
			ID: v.ID, Position: position, Name: v.Name,
			Kind: v.Kind, Surface: string(v.Surface),
			PriceMin: v.Price.Min, PriceMax: v.Price.Max,
			Unit: v.Unit,
		}
	case catalog.Flooring:
		return TableFloorings, flooringRow{
			ID: v.ID, Position: position, Name: v.Name,
			Kind: v.Kind, WearClass: v.WearClass,
			SupplyMin: v.Supply.Min, SupplyMax: v.Supply.Max,
			Unit: v.Unit,
		}
	case catalog.FlooringMethod:
		return TableFlooringMethods, flooringMethodRow{
			ID: v.ID, Position: position, Name: v.Name,
			PriceMin: v.Price.Min, PriceMax: v.Price.Max,
			Unit: v.Unit,
		}
	case catalog.Extra:
		return TableExtras, extraRow{
			ID: v.ID, Position: position, Category: string(v.Category),
			Name: v.Name, Description: v.Description,
			CostMin: v.Cost.Min, CostMax: v.Cost.Max,
			Unit: v.Unit.Label,
		}
	}
	panic(fmt.Sprintf("catalog_repo: unknown entry type %T", e))
}

// Service rate codes of cat_service_rates.
const (
	rateDelivery       = "livraison"
	rateTravel         = "deplacement"
	rateDisposalPrefix = "debarras/"
)

type serviceRateRow struct {
	Code string      `db:"code"`
	Rate types.Money `db:"tarif"`
}

func serviceRateRows(r catalog.ServiceRates) []serviceRateRow {
	rows := []serviceRateRow{
		{Code: rateDelivery, Rate: r.DeliveryPerKm},
		{Code: rateTravel, Rate: r.TravelPerKm},
	}
	for kind, rate := range r.DisposalPerM3 {
		rows = append(rows, serviceRateRow{Code: rateDisposalPrefix + string(kind), Rate: rate})
	}
	return rows
}

// serviceRatesOf overlays stored rates on the defaults.
func serviceRatesOf(rows []serviceRateRow) catalog.ServiceRates {
	rates := catalog.DefaultServiceRates()
	for _, row := range rows {
		switch {
		case row.Code == rateDelivery:
			rates.DeliveryPerKm = row.Rate
		case row.Code == rateTravel:
			rates.TravelPerKm = row.Rate
		case strings.HasPrefix(row.Code, rateDisposalPrefix):
			kind := catalog.WasteKind(strings.TrimPrefix(row.Code, rateDisposalPrefix))
			rates.DisposalPerM3[kind] = row.Rate
		}
	}
	return rates
}
