// Package quote provides the Quote document (devis).
package quote

import (
	"context"
	"time"

	"renodevis/internal/core/apperror"
	"renodevis/internal/core/entity"
	"renodevis/internal/core/types"
	"renodevis/internal/domain/client"
	"renodevis/internal/domain/documents"
	"renodevis/internal/domain/pricing"
)

// Quote is a priced renovation proposal sent to a client.
type Quote struct {
	entity.Document
	client.Info `json:"client"`

	ValidUntil time.Time   `db:"valid_until" json:"date_validite"`
	VATRate    types.Money `db:"tva_taux" json:"tva_taux"`
	Status     Status      `db:"statut" json:"statut"`

	documents.Amounts

	Lines []documents.Line `db:"-" json:"postes"`
}

// New creates a draft quote owned by ownerID, valid for validityDays.
func New(ownerID string, c client.Info, vatRate types.Money, validityDays int) *Quote {
	q := &Quote{
		Document: entity.NewDocument(ownerID),
		Info:     c.Normalized(),
		VATRate:  vatRate,
		Status:   StatusDraft,
	}
	q.ValidUntil = q.Date.AddDate(0, 0, validityDays)
	return q
}

// Client returns the customer block.
func (q *Quote) Client() client.Info {
	return q.Info
}

// SetLines replaces the lines and recomputes every amount.
func (q *Quote) SetLines(lines []documents.Line) {
	q.Lines, q.Amounts = documents.Recalculate(lines, q.VATRate)
	documents.AttachLines(q.Lines, q.ID)
}

// Recalculate recomputes lines and totals from the current lines.
func (q *Quote) Recalculate() {
	q.SetLines(q.Lines)
}

// Totals returns the unrounded totals of the current lines.
func (q *Quote) Totals() pricing.Totals {
	return pricing.ComputeTotals(documents.Items(q.Lines), q.VATRate)
}

// Validate implements entity.Validatable.
func (q *Quote) Validate(ctx context.Context) error {
	if err := q.Document.Validate(ctx); err != nil {
		return err
	}
	if err := q.Info.Validate(); err != nil {
		return err
	}
	if err := documents.ValidateVATRate(q.VATRate); err != nil {
		return err
	}
	if !q.Status.IsValid() {
		return apperror.NewValidation("statut inconnu").
			WithDetail("field", "statut")
	}
	if q.ValidUntil.Before(q.Date) {
		return apperror.NewValidation("la date de validité précède la date du devis").
			WithDetail("field", "date_validite")
	}
	return documents.ValidateLines(q.Lines)
}

// CanModify reports whether content (client, lines, VAT) may still change.
func (q *Quote) CanModify() error {
	if !q.Status.Editable() {
		return apperror.NewDocumentLocked("quote", string(q.Status)).
			WithDetail("quote_id", q.ID.String())
	}
	return nil
}

// IsExpired reports whether the validity date is past at now.
func (q *Quote) IsExpired(now time.Time) bool {
	return now.After(q.ValidUntil)
}
