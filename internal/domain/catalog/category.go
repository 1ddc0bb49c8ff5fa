// Package catalog holds the reference price records quotes are priced from.
//
// Entries are immutable once a Snapshot is built. Every variant owns its own
// price ranges; billing units are resolved to a closed kind at ingestion.
package catalog

// Category is a work category a quote line belongs to.
type Category string

const (
	CategoryKitchen   Category = "cuisine"
	CategoryPartition Category = "cloison"
	CategoryPaint     Category = "peinture"
	CategoryFlooring  Category = "parquet"

	// CategoryServices groups delivery, travel and waste disposal lines.
	CategoryServices Category = "services"
)

// WorkCategories returns the catalog-driven categories in assembly order.
func WorkCategories() []Category {
	return []Category{CategoryKitchen, CategoryPartition, CategoryPaint, CategoryFlooring}
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryKitchen, CategoryPartition, CategoryPaint, CategoryFlooring, CategoryServices:
		return true
	}
	return false
}

// Label is the capitalised French name used in user-facing messages.
func (c Category) Label() string {
	switch c {
	case CategoryKitchen:
		return "Cuisine"
	case CategoryPartition:
		return "Cloison"
	case CategoryPaint:
		return "Peinture"
	case CategoryFlooring:
		return "Parquet"
	case CategoryServices:
		return "Services"
	}
	return string(c)
}
