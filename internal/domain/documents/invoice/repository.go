package invoice

import (
	"context"

	"renodevis/internal/core/id"
	"renodevis/internal/domain"
	"renodevis/internal/domain/documents"
)

// Repository defines persistence for invoices.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)
	GetByQuote(ctx context.Context, quoteID id.ID) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, invoiceID id.ID) error

	GetLines(ctx context.Context, invoiceID id.ID) ([]documents.Line, error)
	SaveLines(ctx context.Context, invoiceID id.ID, lines []documents.Line) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)

	GetForUpdate(ctx context.Context, invoiceID id.ID) (*Invoice, error)
}

// ListFilter for filtering invoices.
type ListFilter struct {
	domain.ListFilter

	Status  *Status
	QuoteID *id.ID
}
