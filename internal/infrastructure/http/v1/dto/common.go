// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"

	"renodevis/internal/core/id"
	"renodevis/internal/core/types"
	"renodevis/internal/domain"
	"renodevis/internal/domain/catalog"
	"renodevis/internal/domain/client"
	"renodevis/internal/domain/documents"
)

// --- Lists ---

// ListQuery holds the common list query parameters.
type ListQuery struct {
	Search  string `form:"search" binding:"max=100"`
	OrderBy string `form:"orderBy"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset  int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query to a domain filter. The owner is set by the
// service.
func (q ListQuery) ToFilter() domain.ListFilter {
	f := domain.DefaultListFilter()
	f.Search = strings.TrimSpace(q.Search)
	if q.OrderBy != "" {
		f.OrderBy = q.OrderBy
	}
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	f.Offset = q.Offset
	return f
}

// ListResponse wraps a page of results.
type ListResponse[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// NewListResponse maps every item of r with conv.
func NewListResponse[S, T any](r domain.ListResult[S], conv func(S) T) ListResponse[T] {
	return ListResponse[T]{
		Items:  mapSlice(r.Items, conv),
		Total:  r.TotalCount,
		Limit:  r.Limit,
		Offset: r.Offset,
	}
}

func mapSlice[S, T any](in []S, conv func(S) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = conv(v)
	}
	return out
}

// --- Client ---

// ClientRequest is the customer block of a quote.
type ClientRequest struct {
	Nom        string `json:"nom" binding:"required,max=200"`
	Prenom     string `json:"prenom" binding:"max=200"`
	Adresse    string `json:"adresse" binding:"max=500"`
	CodePostal string `json:"code_postal" binding:"max=10"`
	Ville      string `json:"ville" binding:"max=200"`
	Telephone  string `json:"telephone" binding:"max=30"`
	Email      string `json:"email" binding:"omitempty,email"`
}

// ToInfo converts the request to the domain client block.
func (r ClientRequest) ToInfo() client.Info {
	return client.Info{
		Nom:        strings.TrimSpace(r.Nom),
		Prenom:     strings.TrimSpace(r.Prenom),
		Adresse:    strings.TrimSpace(r.Adresse),
		CodePostal: strings.TrimSpace(r.CodePostal),
		Ville:      strings.TrimSpace(r.Ville),
		Telephone:  r.Telephone,
		Email:      strings.TrimSpace(r.Email),
	}
}

// --- Lines ---

// LineRequest is one poste sent by the client. Sub-totals and default
// prices are recomputed on the server.
type LineRequest struct {
	Categorie    string       `json:"categorie" binding:"required,oneof=cuisine cloison peinture parquet services"`
	ReferenceID  string       `json:"reference_id" binding:"omitempty,uuid"`
	ReferenceNom string       `json:"reference_nom" binding:"required,max=300"`
	Quantite     types.Money  `json:"quantite" binding:"gte=0"`
	Unite        string       `json:"unite" binding:"max=30"`
	PrixMin      types.Money  `json:"prix_min" binding:"gte=0"`
	PrixMax      types.Money  `json:"prix_max" binding:"gte=0"`
	PrixAjuste   *types.Money `json:"prix_ajuste" binding:"omitempty,gte=0"`
	Offert       bool         `json:"offert"`
}

// ToLine converts the request to an unsaved line.
func (r LineRequest) ToLine() documents.Line {
	refID, _ := id.Parse(r.ReferenceID)
	l := documents.Line{
		Category:      catalog.Category(r.Categorie),
		ReferenceID:   refID,
		ReferenceName: strings.TrimSpace(r.ReferenceNom),
		Quantity:      r.Quantite,
		Unit:          r.Unite,
		PriceMin:      r.PrixMin,
		PriceMax:      r.PrixMax,
		Offered:       r.Offert,
	}
	if r.PrixAjuste != nil {
		p := *r.PrixAjuste
		l.PriceAdjusted = &p
	}
	return l
}

func toLines(in []LineRequest) []documents.Line {
	return mapSlice(in, LineRequest.ToLine)
}

// IDResponse is returned when only an id matters.
type IDResponse struct {
	ID string `json:"id"`
}
