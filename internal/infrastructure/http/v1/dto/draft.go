package dto

import (
	"renodevis/internal/core/types"
	"renodevis/internal/domain/documents"
	"renodevis/internal/domain/pricing"
)

// DraftRequest is the selection form. An absent tva_taux takes the
// configured default.
type DraftRequest struct {
	pricing.QuoteDraft
	TVATaux *types.Money `json:"tva_taux" binding:"omitempty,vat"`
}

// ToDraft returns the draft with its VAT rate resolved.
func (r DraftRequest) ToDraft(defaultVAT types.Money) pricing.QuoteDraft {
	d := r.QuoteDraft.Clone()
	d.VATRate = defaultVAT
	if r.TVATaux != nil {
		d.VATRate = *r.TVATaux
	}
	return d
}

// TotalsRequest recomputes totals for an edited list of lines.
type TotalsRequest struct {
	TVATaux *types.Money  `json:"tva_taux" binding:"omitempty,vat"`
	Postes  []LineRequest `json:"postes" binding:"dive"`
}

// Lines converts the request lines.
func (r TotalsRequest) Lines() []documents.Line {
	return toLines(r.Postes)
}

// Review rebuilds the review state: defaults are recomputed from the ranges
// and adjusted prices are clamped into them.
func (r TotalsRequest) Review(defaultVAT types.Money) (pricing.Review, error) {
	vat := defaultVAT
	if r.TVATaux != nil {
		vat = *r.TVATaux
	}
	items := make([]pricing.LineItem, len(r.Postes))
	for i, p := range r.Postes {
		items[i] = p.ToLine().Item()
		items[i].PriceAdjusted = nil
		items[i] = items[i].Normalize()
	}
	review := pricing.NewReview(items, vat)
	for i, p := range r.Postes {
		if p.PrixAjuste == nil {
			continue
		}
		next, err := review.Adjust(i, *p.PrixAjuste)
		if err != nil {
			return review, err
		}
		review = next
	}
	return review, nil
}

// DraftLine is a line item with its sub-total.
type DraftLine struct {
	pricing.LineItem
	SousTotal types.Money `json:"sous_total"`
}

// TotalsResponse carries cent-rounded totals.
type TotalsResponse struct {
	TotalHT  types.Money `json:"total_ht"`
	TotalTVA types.Money `json:"total_tva"`
	TotalTTC types.Money `json:"total_ttc"`
}

func FromTotals(t pricing.Totals) TotalsResponse {
	r := t.Rounded()
	return TotalsResponse{TotalHT: r.HT, TotalTVA: r.TVA, TotalTTC: r.TTC}
}

// DraftResponse is the review state sent back to the client.
type DraftResponse struct {
	TVATaux types.Money    `json:"tva_taux"`
	Postes  []DraftLine    `json:"postes"`
	Totaux  TotalsResponse `json:"totaux"`
}

func FromReview(r pricing.Review) DraftResponse {
	lines := make([]DraftLine, len(r.Items))
	for i, it := range r.Items {
		lines[i] = DraftLine{LineItem: it, SousTotal: it.SubTotal()}
	}
	return DraftResponse{
		TVATaux: r.VATRate,
		Postes:  lines,
		Totaux:  FromTotals(r.Totals()),
	}
}
