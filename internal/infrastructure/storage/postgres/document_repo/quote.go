package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"renodevis/internal/domain"
	"renodevis/internal/domain/documents/quote"
	"renodevis/internal/infrastructure/storage/postgres"
)

const (
	QuoteTable     = "quotes"
	QuoteLineTable = "quote_lines"
)

// QuoteRepo implements quote.Repository.
type QuoteRepo struct {
	*BaseDocumentRepo[*quote.Quote]
	lineStore
}

// NewQuoteRepo creates a new quote repository.
func NewQuoteRepo(txm *postgres.TxManager) *QuoteRepo {
	return &QuoteRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			"Quote",
			QuoteTable,
			postgres.ExtractDBColumns[quote.Quote](),
			func() *quote.Quote { return &quote.Quote{} },
		),
		lineStore: lineStore{txm: txm, table: QuoteLineTable},
	}
}

// List retrieves quotes with filtering.
func (r *QuoteRepo) List(ctx context.Context, filter quote.ListFilter) (domain.ListResult[*quote.Quote], error) {
	return r.list(ctx, filter.ListFilter, quoteConditions(filter)...)
}

func quoteConditions(filter quote.ListFilter) []squirrel.Sqlizer {
	var conds []squirrel.Sqlizer
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"statut": string(*filter.Status)})
	}
	return conds
}

var _ quote.Repository = (*QuoteRepo)(nil)
