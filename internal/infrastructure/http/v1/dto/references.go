package dto

import (
	"renodevis/internal/core/types"
	"renodevis/internal/domain/catalog"
)

// Catalog entries as listed by the reference endpoints. Price ranges render
// as {"min","max"}.

type KitchenResponse struct {
	ID       string             `json:"id"`
	Nom      string             `json:"nom"`
	Cout     catalog.PriceRange `json:"cout"`
	MainOeuv catalog.PriceRange `json:"main_oeuvre"`
}

type WorktopResponse struct {
	ID             string             `json:"id"`
	Nom            string             `json:"nom"`
	FourniturePose catalog.PriceRange `json:"fourniture_pose"`
	PoseSeule      catalog.PriceRange `json:"pose_seule"`
	Unite          string             `json:"unite"`
}

type PartitionResponse struct {
	ID           string             `json:"id"`
	Nom          string             `json:"nom"`
	Fourniture   catalog.PriceRange `json:"fourniture"`
	PoseComprise catalog.PriceRange `json:"pose_comprise"`
	PoseSeule    catalog.PriceRange `json:"pose_seule"`
	Unite        string             `json:"unite"`
}

type PartitionOptionResponse struct {
	ID          string             `json:"id"`
	Nom         string             `json:"nom"`
	Description string             `json:"description,omitempty"`
	Supplement  catalog.PriceRange `json:"supplement"`
	Unite       string             `json:"unite"`
}

type PaintResponse struct {
	ID      string               `json:"id"`
	Nom     string               `json:"nom"`
	Surface catalog.PaintSurface `json:"surface,omitempty"`
	Prix    catalog.PriceRange   `json:"prix"`
	Unite   string               `json:"unite"`
}

type FlooringResponse struct {
	ID          string             `json:"id"`
	Nom         string             `json:"nom"`
	Type        string             `json:"type,omitempty"`
	ClasseUsure string             `json:"classe_usure,omitempty"`
	Fourniture  catalog.PriceRange `json:"fourniture"`
	Unite       string             `json:"unite"`
}

type FlooringMethodResponse struct {
	ID    string             `json:"id"`
	Nom   string             `json:"nom"`
	Prix  catalog.PriceRange `json:"prix"`
	Unite string             `json:"unite"`
}

type ExtraResponse struct {
	ID          string              `json:"id"`
	Categorie   catalog.Category    `json:"categorie"`
	Nom         string              `json:"nom"`
	Description string              `json:"description,omitempty"`
	Cout        catalog.PriceRange  `json:"cout"`
	Unite       catalog.BillingUnit `json:"unite"`
}

// ServicesResponse lists the default service rates.
type ServicesResponse struct {
	LivraisonParKm   types.Money            `json:"livraison_par_km"`
	DeplacementParKm types.Money            `json:"deplacement_par_km"`
	DebarrasParM3    map[string]types.Money `json:"debarras_par_m3"`
}

func FromKitchen(e catalog.Kitchen) KitchenResponse {
	return KitchenResponse{ID: e.ID.String(), Nom: e.Name, Cout: e.Cost, MainOeuv: e.Labor}
}

func FromWorktop(e catalog.Worktop) WorktopResponse {
	return WorktopResponse{
		ID:             e.ID.String(),
		Nom:            e.Name,
		FourniturePose: e.SupplyInstall,
		PoseSeule:      e.InstallOnly,
		Unite:          e.Unit,
	}
}

func FromPartition(e catalog.Partition) PartitionResponse {
	return PartitionResponse{
		ID:           e.ID.String(),
		Nom:          e.Name,
		Fourniture:   e.Supply,
		PoseComprise: e.InstallIncluded,
		PoseSeule:    e.InstallOnly,
		Unite:        e.Unit,
	}
}

func FromPartitionOption(e catalog.PartitionOption) PartitionOptionResponse {
	return PartitionOptionResponse{
		ID:          e.ID.String(),
		Nom:         e.Name,
		Description: e.Description,
		Supplement:  e.Supplement,
		Unite:       e.Unit,
	}
}

func FromPaint(e catalog.Paint) PaintResponse {
	return PaintResponse{ID: e.ID.String(), Nom: e.Name, Surface: e.Surface, Prix: e.Price, Unite: e.Unit}
}

func FromFlooring(e catalog.Flooring) FlooringResponse {
	return FlooringResponse{
		ID:          e.ID.String(),
		Nom:         e.Name,
		Type:        e.Kind,
		ClasseUsure: e.WearClass,
		Fourniture:  e.Supply,
		Unite:       e.Unit,
	}
}

func FromFlooringMethod(e catalog.FlooringMethod) FlooringMethodResponse {
	return FlooringMethodResponse{ID: e.ID.String(), Nom: e.Name, Prix: e.Price, Unite: e.Unit}
}

func FromExtra(e catalog.Extra) ExtraResponse {
	return ExtraResponse{
		ID:          e.ID.String(),
		Categorie:   e.Category,
		Nom:         e.Name,
		Description: e.Description,
		Cout:        e.Cost,
		Unite:       e.Unit,
	}
}

func FromServiceRates(r catalog.ServiceRates) ServicesResponse {
	disposal := make(map[string]types.Money, len(r.DisposalPerM3))
	for k, v := range r.DisposalPerM3 {
		disposal[string(k)] = v
	}
	return ServicesResponse{
		LivraisonParKm:   r.DeliveryPerKm,
		DeplacementParKm: r.TravelPerKm,
		DebarrasParM3:    disposal,
	}
}

// MapList converts a catalog slice, never returning nil.
func MapList[S, T any](in []S, conv func(S) T) []T {
	return mapSlice(in, conv)
}

// ExtrasQuery filters extras by category.
type ExtrasQuery struct {
	Categorie string `form:"categorie" binding:"omitempty,oneof=cuisine cloison peinture parquet services"`
}
