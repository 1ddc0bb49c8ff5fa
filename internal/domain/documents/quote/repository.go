package quote

import (
	"context"

	"renodevis/internal/core/id"
	"renodevis/internal/domain"
	"renodevis/internal/domain/documents"
)

// Repository defines persistence for quotes.
type Repository interface {
	Create(ctx context.Context, q *Quote) error
	GetByID(ctx context.Context, quoteID id.ID) (*Quote, error)
	GetByNumber(ctx context.Context, number string) (*Quote, error)
	// Update writes q if its stored version is q.Version-1.
	Update(ctx context.Context, q *Quote) error
	Delete(ctx context.Context, quoteID id.ID) error

	GetLines(ctx context.Context, quoteID id.ID) ([]documents.Line, error)
	SaveLines(ctx context.Context, quoteID id.ID, lines []documents.Line) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quote], error)

	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, quoteID id.ID) (*Quote, error)
}

// ListFilter for filtering quotes.
type ListFilter struct {
	domain.ListFilter

	Status *Status
}
