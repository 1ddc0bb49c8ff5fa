package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renodevis/internal/core/id"
)

func TestNewSnapshot_IndexesByVariant(t *testing.T) {
	kitchen := Kitchen{ID: id.New(), Name: "Équipée", Cost: NewPriceRange(500, 700), Labor: NewPriceRange(300, 400)}
	method := FlooringMethod{ID: id.New(), Name: "Pose flottante", Price: NewPriceRange(20, 40), Unit: "m²"}
	extra := Extra{ID: id.New(), Category: CategoryFlooring, Name: "Plinthes", Cost: NewPriceRange(3, 4), Unit: ParseBillingUnit("m linéaire")}

	snap, err := NewSnapshot([]Entry{kitchen, method, extra}, DefaultServiceRates())
	require.NoError(t, err)

	got, ok := snap.Kitchen(kitchen.ID)
	require.True(t, ok)
	assert.Equal(t, "Équipée", got.Name)

	_, ok = snap.Kitchen(method.ID)
	assert.False(t, ok, "lookup must not cross variants")

	assert.Len(t, snap.ExtrasFor(CategoryFlooring), 1)
	assert.Empty(t, snap.ExtrasFor(CategoryKitchen))
	assert.Equal(t, 3, snap.Len())
	assert.Len(t, snap.Entries(), 3)
}

func TestNewSnapshot_RejectsInvertedRange(t *testing.T) {
	bad := Paint{ID: id.New(), Name: "Peinture mur", Price: NewPriceRange(30, 20)}

	_, err := NewSnapshot([]Entry{bad}, DefaultServiceRates())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestNewSnapshot_RejectsDuplicateID(t *testing.T) {
	shared := id.New()
	a := FlooringMethod{ID: shared, Name: "A", Price: NewPriceRange(1, 2)}
	b := FlooringMethod{ID: shared, Name: "B", Price: NewPriceRange(1, 2)}

	_, err := NewSnapshot([]Entry{a, b}, DefaultServiceRates())
	assert.Error(t, err)
}

func TestNewSnapshot_RejectsExtraWithoutCategory(t *testing.T) {
	x := Extra{ID: id.New(), Name: "Orphan", Cost: NewPriceRange(1, 2)}

	_, err := NewSnapshot([]Entry{x}, DefaultServiceRates())
	assert.Error(t, err)
}

func TestPriceRange_Midpoint(t *testing.T) {
	r := NewPriceRange(15, 25)
	assert.Equal(t, "20", r.Midpoint().String())
	assert.Equal(t, "2", NewPriceRange(10, 10).Div(5).Min.String())
}

func TestSurfaceFromName(t *testing.T) {
	assert.Equal(t, SurfaceWall, SurfaceFromName("Peinture mur"))
	assert.Equal(t, SurfaceCeiling, SurfaceFromName("Peinture plafond"))
	assert.Equal(t, SurfaceAny, SurfaceFromName("Lasure"))
}
