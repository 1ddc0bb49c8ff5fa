package catalog

import (
	"fmt"
	"strings"

	"renodevis/internal/core/id"
)

// KitchenReferenceRun is the run length, in linear meters, kitchen catalog
// costs are quoted for.
const KitchenReferenceRun = 5

// Entry is one reference record. The set of variants is closed: Kitchen,
// Worktop, Partition, PartitionOption, Paint, Flooring, FlooringMethod and
// Extra.
type Entry interface {
	EntryID() id.ID
	DisplayName() string
	// PriceRanges lists every range the entry carries, for validation.
	PriceRanges() map[string]PriceRange

	isEntry()
}

// Kitchen is a kitchen type. Cost and Labor are global amounts for a
// KitchenReferenceRun-meter kitchen.
type Kitchen struct {
	ID    id.ID
	Name  string
	Cost  PriceRange
	Labor PriceRange
}

// Worktop is a worktop material priced per unit (usually m²).
type Worktop struct {
	ID            id.ID
	Name          string
	SupplyInstall PriceRange
	InstallOnly   PriceRange
	Unit          string
}

// Partition is a partition wall type priced per m².
type Partition struct {
	ID              id.ID
	Name            string
	Supply          PriceRange
	InstallIncluded PriceRange
	InstallOnly     PriceRange
	Unit            string
}

// PartitionOption is a per-m² supplement only offered with supply+install.
type PartitionOption struct {
	ID          id.ID
	Name        string
	Description string
	Supplement  PriceRange
	Unit        string
}

// PaintSurface tells which surface a paint entry is meant for.
type PaintSurface string

const (
	SurfaceWall    PaintSurface = "mur"
	SurfaceCeiling PaintSurface = "plafond"
	SurfaceAny     PaintSurface = ""
)

// Paint is a paint job priced per m².
type Paint struct {
	ID      id.ID
	Name    string
	Kind    string
	Surface PaintSurface
	Price   PriceRange
	Unit    string
}

// PaintKindSupport marks paint entries offered for selection.
const PaintKindSupport = "support"

// SurfaceFromName tags a paint entry from its display name.
func SurfaceFromName(name string) PaintSurface {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "plafond"):
		return SurfaceCeiling
	case strings.Contains(n, "mur"):
		return SurfaceWall
	}
	return SurfaceAny
}

// Flooring is a flooring material; Supply excludes installation.
type Flooring struct {
	ID        id.ID
	Name      string
	Kind      string
	WearClass string
	Supply    PriceRange
	Unit      string
}

// FlooringMethod is an installation method priced per m².
type FlooringMethod struct {
	ID    id.ID
	Name  string
	Price PriceRange
	Unit  string
}

// Extra is a cross-category add-on.
type Extra struct {
	ID          id.ID
	Category    Category
	Name        string
	Description string
	Cost        PriceRange
	Unit        BillingUnit
}

func (e Kitchen) EntryID() id.ID         { return e.ID }
func (e Worktop) EntryID() id.ID         { return e.ID }
func (e Partition) EntryID() id.ID       { return e.ID }
func (e PartitionOption) EntryID() id.ID { return e.ID }
func (e Paint) EntryID() id.ID           { return e.ID }
func (e Flooring) EntryID() id.ID        { return e.ID }
func (e FlooringMethod) EntryID() id.ID  { return e.ID }
func (e Extra) EntryID() id.ID           { return e.ID }

func (e Kitchen) DisplayName() string         { return e.Name }
func (e Worktop) DisplayName() string         { return e.Name }
func (e Partition) DisplayName() string       { return e.Name }
func (e PartitionOption) DisplayName() string { return e.Name }
func (e Paint) DisplayName() string           { return e.Name }
func (e Flooring) DisplayName() string        { return e.Name }
func (e FlooringMethod) DisplayName() string  { return e.Name }
func (e Extra) DisplayName() string           { return e.Name }

func (e Kitchen) PriceRanges() map[string]PriceRange {
	return map[string]PriceRange{"cout": e.Cost, "pose": e.Labor}
}

func (e Worktop) PriceRanges() map[string]PriceRange {
	return map[string]PriceRange{"fourniture_pose": e.SupplyInstall, "pose_seule": e.InstallOnly}
}

func (e Partition) PriceRanges() map[string]PriceRange {
	return map[string]PriceRange{
		"fourniture":   e.Supply,
		"pose_incluse": e.InstallIncluded,
		"pose_seule":   e.InstallOnly,
	}
}

func (e PartitionOption) PriceRanges() map[string]PriceRange {
	return map[string]PriceRange{"supplement": e.Supplement}
}

func (e Paint) PriceRanges() map[string]PriceRange {
	return map[string]PriceRange{"prix": e.Price}
}

func (e Flooring) PriceRanges() map[string]PriceRange {
	return map[string]PriceRange{"fourniture": e.Supply}
}

func (e FlooringMethod) PriceRanges() map[string]PriceRange {
	return map[string]PriceRange{"prix": e.Price}
}

func (e Extra) PriceRanges() map[string]PriceRange {
	return map[string]PriceRange{"cout": e.Cost}
}

func (Kitchen) isEntry()         {}
func (Worktop) isEntry()         {}
func (Partition) isEntry()       {}
func (PartitionOption) isEntry() {}
func (Paint) isEntry()           {}
func (Flooring) isEntry()        {}
func (FlooringMethod) isEntry()  {}
func (Extra) isEntry()           {}

// ValidateEntry checks the entry has an id, a name and well-formed ranges.
func ValidateEntry(e Entry) error {
	if id.IsNil(e.EntryID()) {
		return fmt.Errorf("%q: missing id", e.DisplayName())
	}
	if strings.TrimSpace(e.DisplayName()) == "" {
		return fmt.Errorf("entry %s: missing name", e.EntryID())
	}
	if x, ok := e.(Extra); ok && !x.Category.IsValid() {
		return fmt.Errorf("extra %q: unknown category %q", x.Name, x.Category)
	}
	for field, r := range e.PriceRanges() {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%q %s: %w", e.DisplayName(), field, err)
		}
	}
	return nil
}
