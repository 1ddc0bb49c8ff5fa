package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renodevis/internal/core/apperror"
	"renodevis/internal/core/id"
	"renodevis/internal/domain/catalog"
)

func TestKitchen_SupplyInstall(t *testing.T) {
	f := newFixture(t)
	b := f.builder()
	b.Kitchen().Type(f.kitchen.ID).Length("5").SupplyInstall(true)

	items, err := Assemble(b.Build(), f.snap)
	require.NoError(t, err)
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, "Équipée (Pose + Fourniture)", it.ReferenceName)
	assert.Equal(t, "m linéaire", it.Unit)
	assert.True(t, it.PriceMin.Equal(money("160")), "min %s", it.PriceMin)
	assert.True(t, it.PriceMax.Equal(money("220")), "max %s", it.PriceMax)
	assert.True(t, it.PriceDefault.Equal(money("190")))
	assert.True(t, it.EffectivePrice().Equal(money("190")))
	assert.True(t, it.SubTotal().Equal(money("950")))
}

func TestKitchen_InstallOnly(t *testing.T) {
	f := newFixture(t)
	b := f.builder()
	b.Kitchen().Type(f.kitchen.ID).Length("5").SupplyInstall(false)

	items, err := Assemble(b.Build(), f.snap)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Équipée (Pose seule)", items[0].ReferenceName)
	assert.True(t, items[0].PriceMin.Equal(money("60")))
	assert.True(t, items[0].PriceMax.Equal(money("80")))
}

func TestKitchen_ExtrasThenWorktop(t *testing.T) {
	f := newFixture(t)
	b := f.builder()
	b.Kitchen().
		Type(f.kitchen.ID).Length("4,5").Appliances("3").
		Extra(f.removal.ID, false).
		Extra(f.appliance.ID, true).
		Extra(f.splash.ID, false).
		Extra(id.New(), false).
		Worktop(f.worktop.ID, "2", false, false)

	items, err := Assemble(b.Build(), f.snap)
	require.NoError(t, err)
	require.Len(t, items, 5, "unknown extra ids are skipped")

	assert.Equal(t, f.kitchen.ID, items[0].ReferenceID)

	assert.Equal(t, f.removal.ID, items[1].ReferenceID)
	assert.True(t, items[1].Quantity.Equal(money("1")))

	assert.Equal(t, f.appliance.ID, items[2].ReferenceID)
	assert.True(t, items[2].Quantity.Equal(money("3")))
	assert.True(t, items[2].Offered)

	assert.Equal(t, f.splash.ID, items[3].ReferenceID)
	assert.True(t, items[3].Quantity.Equal(money("4.5")), "area extras use the kitchen length")

	wt := items[4]
	assert.Equal(t, "Plan de travail Quartz (Pose seule)", wt.ReferenceName)
	assert.True(t, wt.PriceMin.Equal(money("150")), "worktop prices are not divided")
	assert.True(t, wt.PriceMax.Equal(money("200")))
	assert.Equal(t, "m²", wt.Unit)
}

func TestKitchen_WorktopNeedsQuantity(t *testing.T) {
	f := newFixture(t)
	b := f.builder()
	b.Kitchen().Type(f.kitchen.ID).Length("5").Worktop(f.worktop.ID, "", true, false)

	items, err := Assemble(b.Build(), f.snap)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestPartition_Modes(t *testing.T) {
	f := newFixture(t)

	t.Run("install only ignores options", func(t *testing.T) {
		b := f.builder()
		b.Partition().Type(f.partition.ID).Area("20").SupplyInstall(false).Option(f.waterproof.ID, "", false)

		items, err := Assemble(b.Build(), f.snap)
		require.NoError(t, err)
		require.Len(t, items, 1)

		it := items[0]
		assert.Equal(t, "Plaque de plâtre (Pose seule)", it.ReferenceName)
		assert.True(t, it.PriceDefault.Equal(money("20")))
		assert.True(t, it.SubTotal().Equal(money("400")))
	})

	t.Run("supply install uses pose incluse and options", func(t *testing.T) {
		b := f.builder()
		b.Partition().Type(f.partition.ID).Area("20").SupplyInstall(true).
			Option(f.waterproof.ID, "", false).
			Option(f.freeOption.ID, "", false).
			Extra(f.door.ID, false)

		items, err := Assemble(b.Build(), f.snap)
		require.NoError(t, err)
		require.Len(t, items, 3, "zero supplements are skipped")

		main := items[0]
		assert.True(t, main.PriceMin.Equal(money("30")))
		assert.True(t, main.PriceMax.Equal(money("80")))

		assert.Equal(t, f.waterproof.ID, items[1].ReferenceID)
		assert.True(t, items[1].Quantity.Equal(money("20")), "option area defaults to partition area")

		assert.Equal(t, f.door.ID, items[2].ReferenceID)
		assert.True(t, items[2].Quantity.Equal(money("1")))
	})

	t.Run("option area override", func(t *testing.T) {
		b := f.builder()
		b.Partition().Type(f.partition.ID).Area("20").SupplyInstall(true).Option(f.waterproof.ID, "7.5", false)

		items, err := Assemble(b.Build(), f.snap)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.True(t, items[1].Quantity.Equal(money("7.5")))
	})
}

func TestPaint(t *testing.T) {
	f := newFixture(t)

	t.Run("wall only", func(t *testing.T) {
		b := f.builder()
		b.Paint().Wall(f.wallPaint.ID, "30").Extra(f.wallpaper.ID, false)

		items, err := Assemble(b.Build(), f.snap)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Peinture mur", items[0].ReferenceName)
		assert.True(t, items[1].Quantity.Equal(money("30")))
	})

	t.Run("extras use wall plus ceiling", func(t *testing.T) {
		b := f.builder()
		b.Paint().Wall(f.wallPaint.ID, "30").Ceiling(f.ceilingPaint.ID, "12").Extra(f.wallpaper.ID, false)

		items, err := Assemble(b.Build(), f.snap)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, f.ceilingPaint.ID, items[1].ReferenceID)
		assert.True(t, items[2].Quantity.Equal(money("42")))
	})

	t.Run("nothing filled", func(t *testing.T) {
		b := f.builder()
		b.Paint().Wall(f.wallPaint.ID, "").Extra(f.wallpaper.ID, false)

		_, err := Assemble(b.Build(), f.snap)
		require.Error(t, err)
		assert.Contains(t, apperror.Messages(err), "Peinture: Veuillez remplir au moins mur OU plafond")
	})

	t.Run("unknown type is a reference error", func(t *testing.T) {
		b := f.builder()
		b.Paint().Ceiling(id.New(), "10")

		_, err := Assemble(b.Build(), f.snap)
		require.Error(t, err)
		assert.Equal(t, []string{"Peinture: référence introuvable"}, apperror.Messages(err))
	})

	t.Run("unknown wall beside a valid ceiling", func(t *testing.T) {
		b := f.builder()
		b.Paint().Wall(id.New(), "30").Ceiling(f.ceilingPaint.ID, "12")

		_, err := Assemble(b.Build(), f.snap)
		require.Error(t, err)
		assert.Equal(t, []string{"Peinture: référence introuvable"}, apperror.Messages(err))
	})
}

func TestFlooring(t *testing.T) {
	f := newFixture(t)

	t.Run("supply install adds material and method", func(t *testing.T) {
		b := f.builder()
		b.Flooring().Type(f.laminate.ID).Area("16").Method(f.floating.ID).SupplyInstall(true)

		items, err := Assemble(b.Build(), f.snap)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Stratifié AC3 - Pose flottante (Pose + Fourniture)", items[0].ReferenceName)
		assert.True(t, items[0].PriceMin.Equal(money("30")))
		assert.True(t, items[0].PriceMax.Equal(money("60")))
	})

	t.Run("install only is the method alone", func(t *testing.T) {
		b := f.builder()
		b.Flooring().Type(f.laminate.ID).Area("16").Method(f.floating.ID).SupplyInstall(false)

		items, err := Assemble(b.Build(), f.snap)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Stratifié AC3 - Pose flottante (Pose seule)", items[0].ReferenceName)
		assert.True(t, items[0].PriceMin.Equal(money("20")))
		assert.True(t, items[0].PriceMax.Equal(money("40")))
	})

	t.Run("install only without method", func(t *testing.T) {
		b := f.builder()
		b.Flooring().Type(f.laminate.ID).Area("16").SupplyInstall(false)

		items, err := Assemble(b.Build(), f.snap)
		require.Error(t, err)
		assert.Empty(t, items)
		assert.Equal(t, []string{"Parquet: Veuillez sélectionner un type de pose"}, apperror.Messages(err))
	})

	t.Run("perimeter and area extras", func(t *testing.T) {
		b := f.builder()
		b.Flooring().Type(f.laminate.ID).Area("16").Method(f.floating.ID).
			Extra(f.skirting.ID, false).
			Extra(f.levelling.ID, false).
			Extra(f.cleaningFee.ID, false).
			Extra(f.removal.ID, false)

		items, err := Assemble(b.Build(), f.snap)
		require.NoError(t, err)
		require.Len(t, items, 4, "extras of another category are skipped")
		assert.True(t, items[1].Quantity.Equal(money("16")), "round(sqrt(16)*4)")
		assert.True(t, items[2].Quantity.Equal(money("16")))
		assert.True(t, items[3].Quantity.Equal(money("1")))
	})
}

func TestUnknownReference(t *testing.T) {
	f := newFixture(t)
	b := f.builder()
	b.Kitchen().Type(id.New()).Length("3")

	_, err := Assemble(b.Build(), f.snap)
	require.Error(t, err)
	assert.Equal(t, []string{"Cuisine: référence introuvable"}, apperror.Messages(err))
}

func TestBaseRange_CoversEveryVariant(t *testing.T) {
	f := newFixture(t)
	for _, e := range f.snap.Entries() {
		r := baseRange(e, true)
		assert.False(t, r.IsZero() && e.EntryID() != f.freeOption.ID, "%s priced at zero", e.DisplayName())
		assert.NoError(t, r.Validate())
	}
	assert.True(t, baseRange(catalog.Extra{}, true).IsZero())
}
