package entity

import (
	"context"
	"time"

	"renodevis/internal/core/apperror"
	"renodevis/internal/core/id"
)

// Document is the base type for numbered business documents (devis, factures).
type Document struct {
	BaseDocument

	// Number is assigned by the numerator on creation, unique per prefix and year.
	Number string `db:"number" json:"numero"`

	// Date is the business date of the document.
	Date time.Time `db:"date" json:"date"`

	// OwnerID is the account the document belongs to. Every query is scoped by it.
	OwnerID string `db:"owner_id" json:"-"`

	Notes string `db:"notes" json:"notes,omitempty"`
}

// NewDocument creates a new Document owned by ownerID.
func NewDocument(ownerID string) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
		OwnerID:      ownerID,
	}
}

// Validate implements Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if d.OwnerID == "" {
		return apperror.NewValidation("owner is required").
			WithDetail("field", "owner_id")
	}
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}

// OwnedBy reports whether the document belongs to userID.
func (d *Document) OwnedBy(userID string) bool {
	return d.OwnerID == userID
}
