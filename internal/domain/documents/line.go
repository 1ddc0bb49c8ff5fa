// Package documents holds what quotes and invoices share: persisted lines,
// server-side totals and status transition tables.
package documents

import (
	"fmt"

	"renodevis/internal/core/apperror"
	"renodevis/internal/core/id"
	"renodevis/internal/core/types"
	"renodevis/internal/domain/catalog"
	"renodevis/internal/domain/pricing"
)

// Line is a persisted poste of a quote or invoice.
type Line struct {
	ID         id.ID `db:"line_id" json:"id"`
	DocumentID id.ID `db:"document_id" json:"-"`
	LineNo     int   `db:"line_no" json:"ligne"`

	Category      catalog.Category `db:"categorie" json:"categorie"`
	ReferenceID   id.ID            `db:"reference_id" json:"reference_id"`
	ReferenceName string           `db:"reference_nom" json:"reference_nom"`
	Quantity      types.Quantity   `db:"quantite" json:"quantite"`
	Unit          string           `db:"unite" json:"unite"`
	PriceMin      types.Money      `db:"prix_min" json:"prix_min"`
	PriceMax      types.Money      `db:"prix_max" json:"prix_max"`
	PriceDefault  types.Money      `db:"prix_default" json:"prix_default"`
	PriceAdjusted *types.Money     `db:"prix_ajuste" json:"prix_ajuste,omitempty"`
	Offered       bool             `db:"offert" json:"offert"`
	SubTotal      types.Money      `db:"sous_total" json:"sous_total"`
}

// Item converts the line back to a pricing line item.
func (l Line) Item() pricing.LineItem {
	it := pricing.LineItem{
		Category:      l.Category,
		ReferenceID:   l.ReferenceID,
		ReferenceName: l.ReferenceName,
		Quantity:      l.Quantity,
		Unit:          l.Unit,
		PriceMin:      l.PriceMin,
		PriceMax:      l.PriceMax,
		PriceDefault:  l.PriceDefault,
		Offered:       l.Offered,
	}
	if l.PriceAdjusted != nil {
		p := *l.PriceAdjusted
		it.PriceAdjusted = &p
	}
	return it
}

// LineFromItem builds an unsaved line from a pricing line item.
func LineFromItem(it pricing.LineItem) Line {
	l := Line{
		Category:      it.Category,
		ReferenceID:   it.ReferenceID,
		ReferenceName: it.ReferenceName,
		Quantity:      it.Quantity,
		Unit:          it.Unit,
		PriceMin:      it.PriceMin,
		PriceMax:      it.PriceMax,
		PriceDefault:  it.PriceDefault,
		Offered:       it.Offered,
		SubTotal:      it.SubTotal(),
	}
	if it.PriceAdjusted != nil {
		p := *it.PriceAdjusted
		l.PriceAdjusted = &p
	}
	return l
}

// LinesFromItems converts assembled items into unsaved lines.
func LinesFromItems(items []pricing.LineItem) []Line {
	out := make([]Line, len(items))
	for i, it := range items {
		out[i] = LineFromItem(it)
	}
	return out
}

// Items converts lines to pricing line items.
func Items(lines []Line) []pricing.LineItem {
	out := make([]pricing.LineItem, len(lines))
	for i, l := range lines {
		out[i] = l.Item()
	}
	return out
}

// ValidateLines checks what the client cannot be trusted with: a known
// category, a coherent price range and a non-negative quantity.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return apperror.NewValidation("Veuillez remplir au moins un poste de travaux").
			WithDetail("field", "postes")
	}
	for i, l := range lines {
		field := fmt.Sprintf("postes[%d]", i)
		switch {
		case !l.Category.IsValid():
			return apperror.NewValidation("catégorie inconnue").WithDetail("field", field+".categorie")
		case l.ReferenceName == "":
			return apperror.NewValidation("désignation requise").WithDetail("field", field+".reference_nom")
		case l.Quantity.IsNegative():
			return apperror.NewValidation("quantité négative").WithDetail("field", field+".quantite")
		case l.PriceMin.IsNegative() || l.PriceMin.GreaterThan(l.PriceMax):
			return apperror.NewValidation("fourchette de prix invalide").WithDetail("field", field+".prix_min")
		}
	}
	return nil
}

// ValidateVATRate rejects a rate outside [0, 100]. It must pass before
// Recalculate, which divides by 1 + rate/100.
func ValidateVATRate(rate types.Money) error {
	if err := pricing.ValidateVATRate(rate); err != nil {
		return apperror.NewValidation("Taux de TVA invalide").
			WithDetail("field", "tva_taux").
			WithCause(err)
	}
	return nil
}

// Recalculate is the authoritative server-side pass applied before every
// save: default prices are recomputed as range midpoints, missing or out of
// range adjusted prices fall back to the default, sub-totals are recomputed
// and lines are renumbered. The input slice is not modified.
func Recalculate(lines []Line, vatRate types.Money) ([]Line, Amounts) {
	out := make([]Line, len(lines))
	items := make([]pricing.LineItem, len(lines))
	for i, l := range lines {
		it := l.Item().Normalize()
		items[i] = it

		n := LineFromItem(it)
		n.ID = l.ID
		if id.IsNil(n.ID) {
			n.ID = id.New()
		}
		n.DocumentID = l.DocumentID
		n.LineNo = i + 1
		n.SubTotal = types.RoundMoney(n.SubTotal)
		out[i] = n
	}
	return out, NewAmounts(pricing.ComputeTotals(items, vatRate))
}

// AttachLines points every line at documentID.
func AttachLines(lines []Line, documentID id.ID) {
	for i := range lines {
		lines[i].DocumentID = documentID
	}
}
