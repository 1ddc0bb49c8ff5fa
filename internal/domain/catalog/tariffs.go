package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"renodevis/internal/core/id"
	"renodevis/internal/core/types"
)

// Tariffs is the tariff file editors maintain (configs/tarifs.yaml).
type Tariffs struct {
	KitchenTypes     []kitchenTariff            `yaml:"cuisine_types"`
	Worktops         []worktopTariff            `yaml:"plans_travail"`
	Partitions       []partitionTariff          `yaml:"cloisons"`
	PartitionOptions []partitionOptionTariff    `yaml:"cloison_options"`
	Paints           []paintTariff              `yaml:"peintures"`
	Floorings        []flooringTariff           `yaml:"parquets"`
	FlooringMethods  []flooringMethodTariff     `yaml:"parquet_poses"`
	Extras           map[Category][]extraTariff `yaml:"extras"`
	Services         *servicesTariff            `yaml:"services"`
}

type kitchenTariff struct {
	Name    string  `yaml:"nom"`
	CostMin float64 `yaml:"cout_min"`
	CostMax float64 `yaml:"cout_max"`
	PoseMin float64 `yaml:"pose_min"`
	PoseMax float64 `yaml:"pose_max"`
}

type worktopTariff struct {
	Name             string  `yaml:"nom"`
	InstallOnlyMin   float64 `yaml:"pose_seule_min"`
	InstallOnlyMax   float64 `yaml:"pose_seule_max"`
	SupplyInstallMin float64 `yaml:"fourniture_pose_min"`
	SupplyInstallMax float64 `yaml:"fourniture_pose_max"`
	Unit             string  `yaml:"unite"`
}

type partitionTariff struct {
	Name               string  `yaml:"nom"`
	SupplyMin          float64 `yaml:"fourniture_min"`
	SupplyMax          float64 `yaml:"fourniture_max"`
	InstallIncludedMin float64 `yaml:"pose_incluse_min"`
	InstallIncludedMax float64 `yaml:"pose_incluse_max"`
	InstallOnlyMin     float64 `yaml:"pose_seule_min"`
	InstallOnlyMax     float64 `yaml:"pose_seule_max"`
	Unit               string  `yaml:"unite"`
}

type partitionOptionTariff struct {
	Name          string  `yaml:"nom"`
	SupplementMin float64 `yaml:"supplement_min"`
	SupplementMax float64 `yaml:"supplement_max"`
	Description   string  `yaml:"description"`
	Unit          string  `yaml:"unite"`
}

type paintTariff struct {
	Name     string  `yaml:"nom"`
	Kind     string  `yaml:"type"`
	PriceMin float64 `yaml:"prix_min"`
	PriceMax float64 `yaml:"prix_max"`
	Unit     string  `yaml:"unite"`
}

type flooringTariff struct {
	Name      string  `yaml:"nom"`
	Kind      string  `yaml:"type"`
	WearClass string  `yaml:"classe_ac"`
	SupplyMin float64 `yaml:"fourniture_min"`
	SupplyMax float64 `yaml:"fourniture_max"`
	Unit      string  `yaml:"unite"`
}

type flooringMethodTariff struct {
	Name     string  `yaml:"nom"`
	PriceMin float64 `yaml:"prix_min"`
	PriceMax float64 `yaml:"prix_max"`
	Unit     string  `yaml:"unite"`
}

type extraTariff struct {
	Name        string  `yaml:"nom"`
	Description string  `yaml:"description"`
	CostMin     float64 `yaml:"cout_min"`
	CostMax     float64 `yaml:"cout_max"`
	Unit        string  `yaml:"unite"`
}

type servicesTariff struct {
	Delivery struct {
		PerKm *float64 `yaml:"tarif_km"`
	} `yaml:"livraison"`
	Travel struct {
		PerKm *float64 `yaml:"tarif_km"`
	} `yaml:"deplacement"`
	Disposal map[WasteKind]struct {
		PerM3 float64 `yaml:"tarif_m3"`
	} `yaml:"debarras"`
}

// LoadTariffs reads and decodes a tariff file.
func LoadTariffs(path string) (*Tariffs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tariffs: %w", err)
	}
	return ParseTariffs(data)
}

// ParseTariffs decodes a YAML tariff document. Unknown keys are rejected.
func ParseTariffs(data []byte) (*Tariffs, error) {
	var t Tariffs
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode tariffs: %w", err)
	}
	return &t, nil
}

// Entries converts the tariffs into catalog entries with stable ids.
func (t *Tariffs) Entries() []Entry {
	var out []Entry

	for _, k := range t.KitchenTypes {
		out = append(out, Kitchen{
			ID:    id.FromName("cuisine", k.Name),
			Name:  k.Name,
			Cost:  NewPriceRange(k.CostMin, k.CostMax),
			Labor: NewPriceRange(k.PoseMin, k.PoseMax),
		})
	}
	for _, w := range t.Worktops {
		out = append(out, Worktop{
			ID:            id.FromName("plan_travail", w.Name),
			Name:          w.Name,
			SupplyInstall: NewPriceRange(w.SupplyInstallMin, w.SupplyInstallMax),
			InstallOnly:   NewPriceRange(w.InstallOnlyMin, w.InstallOnlyMax),
			Unit:          unitOr(w.Unit, "m²"),
		})
	}
	for _, p := range t.Partitions {
		out = append(out, Partition{
			ID:              id.FromName("cloison", p.Name),
			Name:            p.Name,
			Supply:          NewPriceRange(p.SupplyMin, p.SupplyMax),
			InstallIncluded: NewPriceRange(p.InstallIncludedMin, p.InstallIncludedMax),
			InstallOnly:     NewPriceRange(p.InstallOnlyMin, p.InstallOnlyMax),
			Unit:            unitOr(p.Unit, "m²"),
		})
	}
	for _, o := range t.PartitionOptions {
		out = append(out, PartitionOption{
			ID:          id.FromName("cloison_option", o.Name),
			Name:        o.Name,
			Description: o.Description,
			Supplement:  NewPriceRange(o.SupplementMin, o.SupplementMax),
			Unit:        unitOr(o.Unit, "m²"),
		})
	}
	for _, p := range t.Paints {
		out = append(out, Paint{
			ID:      id.FromName("peinture", p.Name),
			Name:    p.Name,
			Kind:    unitOr(p.Kind, PaintKindSupport),
			Surface: SurfaceFromName(p.Name),
			Price:   NewPriceRange(p.PriceMin, p.PriceMax),
			Unit:    unitOr(p.Unit, "m²"),
		})
	}
	for _, f := range t.Floorings {
		out = append(out, Flooring{
			ID:        id.FromName("parquet", f.Name),
			Name:      f.Name,
			Kind:      f.Kind,
			WearClass: f.WearClass,
			Supply:    NewPriceRange(f.SupplyMin, f.SupplyMax),
			Unit:      unitOr(f.Unit, "m²"),
		})
	}
	for _, m := range t.FlooringMethods {
		out = append(out, FlooringMethod{
			ID:    id.FromName("parquet_pose", m.Name),
			Name:  m.Name,
			Price: NewPriceRange(m.PriceMin, m.PriceMax),
			Unit:  unitOr(m.Unit, "m²"),
		})
	}
	for _, category := range WorkCategories() {
		for _, x := range t.Extras[category] {
			out = append(out, Extra{
				ID:          id.FromName("extra/"+string(category), x.Name),
				Category:    category,
				Name:        x.Name,
				Description: x.Description,
				Cost:        NewPriceRange(x.CostMin, x.CostMax),
				Unit:        ParseBillingUnit(unitOr(x.Unit, "unité")),
			})
		}
	}
	return out
}

// ServiceRates returns the configured rates, falling back to the defaults
// for anything the file leaves out.
func (t *Tariffs) ServiceRates() ServiceRates {
	rates := DefaultServiceRates()
	if t.Services == nil {
		return rates
	}
	if t.Services.Delivery.PerKm != nil {
		rates.DeliveryPerKm = types.NewMoney(*t.Services.Delivery.PerKm)
	}
	if t.Services.Travel.PerKm != nil {
		rates.TravelPerKm = types.NewMoney(*t.Services.Travel.PerKm)
	}
	for kind, r := range t.Services.Disposal {
		rates.DisposalPerM3[kind] = types.NewMoney(r.PerM3)
	}
	return rates
}

// Snapshot builds a validated snapshot from the tariffs.
func (t *Tariffs) Snapshot() (*Snapshot, error) {
	return NewSnapshot(t.Entries(), t.ServiceRates())
}

func unitOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
