package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"renodevis/internal/core/id"
	"renodevis/internal/domain"
	"renodevis/internal/domain/client"
	"renodevis/internal/domain/documents/quote"
	"renodevis/internal/infrastructure/http/v1/dto"
)

// QuoteService is the quote service used by QuoteHandler.
type QuoteService interface {
	DocumentService[*quote.Quote]
	New(ctx context.Context, c client.Info) (*quote.Quote, error)
	Create(ctx context.Context, q *quote.Quote) error
	Update(ctx context.Context, q *quote.Quote) error
	SetStatus(ctx context.Context, quoteID id.ID, next quote.Status) (*quote.Quote, error)
	List(ctx context.Context, filter quote.ListFilter) (domain.ListResult[*quote.Quote], error)
}

// QuoteHandler handles HTTP requests for quotes (devis).
type QuoteHandler struct {
	*BaseDocumentHandler[*quote.Quote]
	service QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(base *BaseHandler, service QuoteService) *QuoteHandler {
	return &QuoteHandler{
		BaseDocumentHandler: NewBaseDocumentHandler[*quote.Quote](base, service, func(q *quote.Quote) any {
			return dto.FromQuote(q)
		}),
		service: service,
	}
}

// Create handles POST /quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateQuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q, err := h.service.New(ctx, req.Client.ToInfo())
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(q)

	if err := h.service.Create(ctx, q); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromQuote(q))
}

// Update handles PUT /quotes/:id
func (h *QuoteHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	quoteID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.UpdateQuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q, err := h.service.GetByID(ctx, quoteID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(q)

	if err := h.service.Update(ctx, q); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromQuote(q))
}

// SetStatus handles PATCH /quotes/:id/status
func (h *QuoteHandler) SetStatus(c *gin.Context) {
	quoteID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.QuoteStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q, err := h.service.SetStatus(c.Request.Context(), quoteID, quote.Status(req.Statut))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromQuote(q))
}

// List handles GET /quotes
func (h *QuoteHandler) List(c *gin.Context) {
	var query dto.QuoteListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result, dto.FromQuoteSummary))
}
