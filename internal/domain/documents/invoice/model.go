// Package invoice provides the Invoice document (facture), always issued
// from an accepted quote.
package invoice

import (
	"context"
	"time"

	"renodevis/internal/core/apperror"
	"renodevis/internal/core/entity"
	"renodevis/internal/core/id"
	"renodevis/internal/core/types"
	"renodevis/internal/domain/client"
	"renodevis/internal/domain/documents"
	"renodevis/internal/domain/documents/quote"
	"renodevis/internal/domain/pricing"
)

// Invoice bills the content of an accepted quote.
type Invoice struct {
	entity.Document
	client.Info `json:"client"`

	QuoteID     id.ID       `db:"quote_id" json:"devis_id"`
	QuoteNumber string      `db:"quote_number" json:"numero_devis"`
	VATRate     types.Money `db:"tva_taux" json:"tva_taux"`
	Status      Status      `db:"statut" json:"statut"`
	PaidAt      *time.Time  `db:"paid_at" json:"date_paiement,omitempty"`

	documents.Amounts

	Lines []documents.Line `db:"-" json:"postes"`
}

// FromQuote copies client, VAT rate, notes and lines of q into a new
// pending invoice. Line ids are regenerated; totals are recomputed.
func FromQuote(q *quote.Quote) *Invoice {
	inv := &Invoice{
		Document:    entity.NewDocument(q.OwnerID),
		Info:        q.Info,
		QuoteID:     q.ID,
		QuoteNumber: q.Number,
		VATRate:     q.VATRate,
		Status:      StatusPending,
	}
	inv.Notes = q.Notes

	lines := make([]documents.Line, len(q.Lines))
	for i, l := range q.Lines {
		l.ID = id.Nil()
		lines[i] = l
	}
	inv.SetLines(lines)
	return inv
}

// SetLines replaces the lines and recomputes every amount.
func (inv *Invoice) SetLines(lines []documents.Line) {
	inv.Lines, inv.Amounts = documents.Recalculate(lines, inv.VATRate)
	documents.AttachLines(inv.Lines, inv.ID)
}

// Totals returns the unrounded totals of the current lines.
func (inv *Invoice) Totals() pricing.Totals {
	return pricing.ComputeTotals(documents.Items(inv.Lines), inv.VATRate)
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(inv.QuoteID) {
		return apperror.NewValidation("devis d'origine requis").
			WithDetail("field", "devis_id")
	}
	if err := inv.Info.Validate(); err != nil {
		return err
	}
	if err := documents.ValidateVATRate(inv.VATRate); err != nil {
		return err
	}
	if !inv.Status.IsValid() {
		return apperror.NewValidation("statut inconnu").
			WithDetail("field", "statut")
	}
	return documents.ValidateLines(inv.Lines)
}

// CanDelete allows removing pending and cancelled invoices only.
func (inv *Invoice) CanDelete() error {
	if inv.Status == StatusPaid {
		return apperror.NewDocumentLocked("invoice", string(inv.Status)).
			WithDetail("invoice_id", inv.ID.String())
	}
	return nil
}
