package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"renodevis/internal/core/id"
	"renodevis/internal/domain"
	"renodevis/internal/domain/documents/invoice"
	"renodevis/internal/infrastructure/storage/postgres"
)

const (
	InvoiceTable     = "invoices"
	InvoiceLineTable = "invoice_lines"
)

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	*BaseDocumentRepo[*invoice.Invoice]
	lineStore
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			"Invoice",
			InvoiceTable,
			postgres.ExtractDBColumns[invoice.Invoice](),
			func() *invoice.Invoice { return &invoice.Invoice{} },
		),
		lineStore: lineStore{txm: txm, table: InvoiceLineTable},
	}
}

// GetByQuote returns the most recent invoice issued from quoteID.
func (r *InvoiceRepo) GetByQuote(ctx context.Context, quoteID id.ID) (*invoice.Invoice, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"quote_id": quoteID}).
		OrderBy("created_at DESC").
		Limit(1)
	return r.getOne(ctx, q, quoteID.String())
}

// List retrieves invoices with filtering.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	return r.list(ctx, filter.ListFilter, invoiceConditions(filter)...)
}

func invoiceConditions(filter invoice.ListFilter) []squirrel.Sqlizer {
	var conds []squirrel.Sqlizer
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"statut": string(*filter.Status)})
	}
	if filter.QuoteID != nil {
		conds = append(conds, squirrel.Eq{"quote_id": *filter.QuoteID})
	}
	return conds
}

var _ invoice.Repository = (*InvoiceRepo)(nil)
