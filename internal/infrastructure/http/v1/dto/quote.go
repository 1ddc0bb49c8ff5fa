package dto

import (
	"time"

	"renodevis/internal/core/types"
	"renodevis/internal/domain/client"
	"renodevis/internal/domain/documents"
	"renodevis/internal/domain/documents/quote"
)

// CreateQuoteRequest saves a quote whose lines were reviewed on the client.
type CreateQuoteRequest struct {
	Client       ClientRequest `json:"client" binding:"required"`
	TVATaux      *types.Money  `json:"tva_taux" binding:"omitempty,vat"`
	ValiditeJour *int          `json:"validite_jours" binding:"omitempty,min=1,max=365"`
	Notes        string        `json:"notes" binding:"max=5000"`
	Postes       []LineRequest `json:"postes" binding:"required,min=1,dive"`
}

// ApplyTo fills a quote prepared with the service defaults.
func (r CreateQuoteRequest) ApplyTo(q *quote.Quote) {
	q.Info = r.Client.ToInfo()
	if r.TVATaux != nil {
		q.VATRate = *r.TVATaux
	}
	if r.ValiditeJour != nil {
		q.ValidUntil = q.Date.AddDate(0, 0, *r.ValiditeJour)
	}
	q.Notes = r.Notes
	q.Lines = toLines(r.Postes)
}

// UpdateQuoteRequest replaces the content of an editable quote.
type UpdateQuoteRequest struct {
	Client       ClientRequest `json:"client" binding:"required"`
	TVATaux      *types.Money  `json:"tva_taux" binding:"omitempty,vat"`
	DateValidite *time.Time    `json:"date_validite"`
	Notes        string        `json:"notes" binding:"max=5000"`
	Postes       []LineRequest `json:"postes" binding:"required,min=1,dive"`
	Version      int           `json:"version" binding:"omitempty,min=1"`
}

// ApplyTo overwrites the editable fields of q.
func (r UpdateQuoteRequest) ApplyTo(q *quote.Quote) {
	q.Info = r.Client.ToInfo()
	if r.TVATaux != nil {
		q.VATRate = *r.TVATaux
	}
	if r.DateValidite != nil {
		q.ValidUntil = *r.DateValidite
	}
	q.Notes = r.Notes
	q.Lines = toLines(r.Postes)
	q.Version = r.Version
}

// QuoteStatusRequest moves a quote along its lifecycle.
type QuoteStatusRequest struct {
	Statut string `json:"statut" binding:"required,oneof=brouillon valide envoye accepte refuse facture"`
}

// QuoteListQuery adds the status filter.
type QuoteListQuery struct {
	ListQuery
	Statut string `form:"statut" binding:"omitempty,oneof=brouillon valide envoye accepte refuse facture"`
}

func (q QuoteListQuery) ToFilter() quote.ListFilter {
	f := quote.ListFilter{ListFilter: q.ListQuery.ToFilter()}
	if q.Statut != "" {
		s := quote.Status(q.Statut)
		f.Status = &s
	}
	return f
}

// QuoteResponse is the full quote with its lines.
type QuoteResponse struct {
	ID           string           `json:"id"`
	Numero       string           `json:"numero"`
	Date         time.Time        `json:"date"`
	DateValidite time.Time        `json:"date_validite"`
	Client       client.Info      `json:"client"`
	TVATaux      types.Money      `json:"tva_taux"`
	Statut       quote.Status     `json:"statut"`
	Notes        string           `json:"notes,omitempty"`
	TotalHT      types.Money      `json:"total_ht"`
	TotalTVA     types.Money      `json:"total_tva"`
	TotalTTC     types.Money      `json:"total_ttc"`
	Postes       []documents.Line `json:"postes"`
	Version      int              `json:"version"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func FromQuote(q *quote.Quote) QuoteResponse {
	lines := q.Lines
	if lines == nil {
		lines = []documents.Line{}
	}
	return QuoteResponse{
		ID:           q.ID.String(),
		Numero:       q.Number,
		Date:         q.Date,
		DateValidite: q.ValidUntil,
		Client:       q.Info,
		TVATaux:      q.VATRate,
		Statut:       q.Status,
		Notes:        q.Notes,
		TotalHT:      q.TotalHT,
		TotalTVA:     q.TotalTVA,
		TotalTTC:     q.TotalTTC,
		Postes:       lines,
		Version:      q.Version,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}

// QuoteSummary is a list row, without lines.
type QuoteSummary struct {
	ID           string       `json:"id"`
	Numero       string       `json:"numero"`
	Date         time.Time    `json:"date"`
	DateValidite time.Time    `json:"date_validite"`
	ClientNom    string       `json:"client_nom"`
	Statut       quote.Status `json:"statut"`
	TotalTTC     types.Money  `json:"total_ttc"`
}

func FromQuoteSummary(q *quote.Quote) QuoteSummary {
	return QuoteSummary{
		ID:           q.ID.String(),
		Numero:       q.Number,
		Date:         q.Date,
		DateValidite: q.ValidUntil,
		ClientNom:    q.Info.DisplayName(),
		Statut:       q.Status,
		TotalTTC:     q.TotalTTC,
	}
}
