package dto

import (
	"time"

	"renodevis/internal/core/id"
	"renodevis/internal/core/types"
	"renodevis/internal/domain/client"
	"renodevis/internal/domain/documents"
	"renodevis/internal/domain/documents/invoice"
)

// CreateInvoiceRequest issues an invoice from an accepted quote.
type CreateInvoiceRequest struct {
	DevisID string `json:"devis_id" binding:"required,uuid"`
}

type InvoiceStatusRequest struct {
	Statut string `json:"statut" binding:"required,oneof=en_attente payee annulee"`
}

type InvoiceListQuery struct {
	ListQuery
	Statut  string `form:"statut" binding:"omitempty,oneof=en_attente payee annulee"`
	DevisID string `form:"devis_id" binding:"omitempty,uuid"`
}

func (q InvoiceListQuery) ToFilter() invoice.ListFilter {
	f := invoice.ListFilter{ListFilter: q.ListQuery.ToFilter()}
	if q.Statut != "" {
		s := invoice.Status(q.Statut)
		f.Status = &s
	}
	if q.DevisID != "" {
		if quoteID, err := id.Parse(q.DevisID); err == nil {
			f.QuoteID = &quoteID
		}
	}
	return f
}

type InvoiceResponse struct {
	ID           string           `json:"id"`
	Numero       string           `json:"numero"`
	Date         time.Time        `json:"date"`
	DevisID      string           `json:"devis_id"`
	NumeroDevis  string           `json:"numero_devis"`
	Client       client.Info      `json:"client"`
	TVATaux      types.Money      `json:"tva_taux"`
	Statut       invoice.Status   `json:"statut"`
	DatePaiement *time.Time       `json:"date_paiement,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	TotalHT      types.Money      `json:"total_ht"`
	TotalTVA     types.Money      `json:"total_tva"`
	TotalTTC     types.Money      `json:"total_ttc"`
	Postes       []documents.Line `json:"postes"`
	CreatedAt    time.Time        `json:"created_at"`
}

func FromInvoice(inv *invoice.Invoice) InvoiceResponse {
	lines := inv.Lines
	if lines == nil {
		lines = []documents.Line{}
	}
	return InvoiceResponse{
		ID:           inv.ID.String(),
		Numero:       inv.Number,
		Date:         inv.Date,
		DevisID:      inv.QuoteID.String(),
		NumeroDevis:  inv.QuoteNumber,
		Client:       inv.Info,
		TVATaux:      inv.VATRate,
		Statut:       inv.Status,
		DatePaiement: inv.PaidAt,
		Notes:        inv.Notes,
		TotalHT:      inv.TotalHT,
		TotalTVA:     inv.TotalTVA,
		TotalTTC:     inv.TotalTTC,
		Postes:       lines,
		CreatedAt:    inv.CreatedAt,
	}
}

type InvoiceSummary struct {
	ID          string         `json:"id"`
	Numero      string         `json:"numero"`
	Date        time.Time      `json:"date"`
	NumeroDevis string         `json:"numero_devis"`
	ClientNom   string         `json:"client_nom"`
	Statut      invoice.Status `json:"statut"`
	TotalTTC    types.Money    `json:"total_ttc"`
}

func FromInvoiceSummary(inv *invoice.Invoice) InvoiceSummary {
	return InvoiceSummary{
		ID:          inv.ID.String(),
		Numero:      inv.Number,
		Date:        inv.Date,
		NumeroDevis: inv.QuoteNumber,
		ClientNom:   inv.Info.DisplayName(),
		Statut:      inv.Status,
		TotalTTC:    inv.TotalTTC,
	}
}
