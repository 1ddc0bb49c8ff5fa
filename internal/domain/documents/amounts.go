package documents

import (
	"renodevis/internal/core/types"
	"renodevis/internal/domain/pricing"
)

// Amounts are the stored, cent-rounded totals of a document.
type Amounts struct {
	TotalHT  types.Money `db:"total_ht" json:"total_ht"`
	TotalTVA types.Money `db:"total_tva" json:"total_tva"`
	TotalTTC types.Money `db:"total_ttc" json:"total_ttc"`
}

// NewAmounts rounds t for storage.
func NewAmounts(t pricing.Totals) Amounts {
	r := t.Rounded()
	return Amounts{TotalHT: r.HT, TotalTVA: r.TVA, TotalTTC: r.TTC}
}
