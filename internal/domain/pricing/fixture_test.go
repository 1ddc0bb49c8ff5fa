package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"renodevis/internal/core/id"
	"renodevis/internal/core/types"
	"renodevis/internal/domain/catalog"
	"renodevis/internal/domain/client"
)

type fixture struct {
	snap *catalog.Snapshot

	kitchen      catalog.Kitchen
	worktop      catalog.Worktop
	partition    catalog.Partition
	waterproof   catalog.PartitionOption
	freeOption   catalog.PartitionOption
	wallPaint    catalog.Paint
	ceilingPaint catalog.Paint
	laminate     catalog.Flooring
	floating     catalog.FlooringMethod

	removal     catalog.Extra // kitchen, prestation
	appliance   catalog.Extra // kitchen, appareil
	splash      catalog.Extra // kitchen, m²
	door        catalog.Extra // cloison, unité
	wallpaper   catalog.Extra // peinture, m²
	skirting    catalog.Extra // parquet, m linéaire
	levelling   catalog.Extra // parquet, m²
	cleaningFee catalog.Extra // parquet, prestation
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	f := fixture{
		kitchen:      catalog.Kitchen{ID: id.New(), Name: "Équipée", Cost: catalog.NewPriceRange(500, 700), Labor: catalog.NewPriceRange(300, 400)},
		worktop:      catalog.Worktop{ID: id.New(), Name: "Quartz", SupplyInstall: catalog.NewPriceRange(400, 650), InstallOnly: catalog.NewPriceRange(150, 200), Unit: "m²"},
		partition:    catalog.Partition{ID: id.New(), Name: "Plaque de plâtre", Supply: catalog.NewPriceRange(10, 25), InstallIncluded: catalog.NewPriceRange(30, 80), InstallOnly: catalog.NewPriceRange(15, 25), Unit: "m²"},
		waterproof:   catalog.PartitionOption{ID: id.New(), Name: "Supplément hydrofuge", Supplement: catalog.NewPriceRange(5, 5), Unit: "m²"},
		freeOption:   catalog.PartitionOption{ID: id.New(), Name: "Sans supplément", Supplement: catalog.NewPriceRange(0, 0), Unit: "m²"},
		wallPaint:    catalog.Paint{ID: id.New(), Name: "Peinture mur", Kind: catalog.PaintKindSupport, Surface: catalog.SurfaceWall, Price: catalog.NewPriceRange(20, 30), Unit: "m²"},
		ceilingPaint: catalog.Paint{ID: id.New(), Name: "Peinture plafond", Kind: catalog.PaintKindSupport, Surface: catalog.SurfaceCeiling, Price: catalog.NewPriceRange(25, 50), Unit: "m²"},
		laminate:     catalog.Flooring{ID: id.New(), Name: "Stratifié AC3", Kind: "stratifie", WearClass: "AC3", Supply: catalog.NewPriceRange(10, 20), Unit: "m²"},
		floating:     catalog.FlooringMethod{ID: id.New(), Name: "Pose flottante", Price: catalog.NewPriceRange(20, 40), Unit: "m²"},

		removal:     extra(catalog.CategoryKitchen, "Dépose ancienne cuisine", 200, 500, "prestation"),
		appliance:   extra(catalog.CategoryKitchen, "Électroménager (installation)", 40, 40, "appareil"),
		splash:      extra(catalog.CategoryKitchen, "Pose crédence", 16, 115, "m²"),
		door:        extra(catalog.CategoryPartition, "Bloc-porte intérieur", 80, 300, "unité"),
		wallpaper:   extra(catalog.CategoryPaint, "Pose de papier peint", 6, 6, "m²"),
		skirting:    extra(catalog.CategoryFlooring, "Plinthes / Quarts-de-rond", 3, 4, "m linéaire"),
		levelling:   extra(catalog.CategoryFlooring, "Ragréage", 15, 25, "m²"),
		cleaningFee: extra(catalog.CategoryFlooring, "Forfait nettoyage", 50, 50, "prestation"),
	}

	snap, err := catalog.NewSnapshot([]catalog.Entry{
		f.kitchen, f.worktop, f.partition, f.waterproof, f.freeOption,
		f.wallPaint, f.ceilingPaint, f.laminate, f.floating,
		f.removal, f.appliance, f.splash, f.door, f.wallpaper,
		f.skirting, f.levelling, f.cleaningFee,
	}, catalog.DefaultServiceRates())
	require.NoError(t, err)
	f.snap = snap
	return f
}

func extra(c catalog.Category, name string, lo, hi float64, unit string) catalog.Extra {
	return catalog.Extra{
		ID:       id.New(),
		Category: c,
		Name:     name,
		Cost:     catalog.NewPriceRange(lo, hi),
		Unit:     catalog.ParseBillingUnit(unit),
	}
}

func (f fixture) builder() *QuoteDraftBuilder {
	return NewQuoteDraftBuilder().Client(client.Info{Nom: "Dupont"})
}

func money(s string) types.Money { return types.MustMoney(s) }
