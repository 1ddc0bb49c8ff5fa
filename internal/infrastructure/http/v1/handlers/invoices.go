package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"renodevis/internal/core/apperror"
	"renodevis/internal/core/id"
	"renodevis/internal/domain"
	"renodevis/internal/domain/documents/invoice"
	"renodevis/internal/infrastructure/http/v1/dto"
)

// InvoiceService is the invoice service used by InvoiceHandler.
type InvoiceService interface {
	DocumentService[*invoice.Invoice]
	CreateFromQuote(ctx context.Context, quoteID id.ID) (*invoice.Invoice, error)
	SetStatus(ctx context.Context, invoiceID id.ID, next invoice.Status) (*invoice.Invoice, error)
	List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error)
}

// InvoiceHandler handles HTTP requests for invoices (factures).
type InvoiceHandler struct {
	*BaseDocumentHandler[*invoice.Invoice]
	service InvoiceService
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		BaseDocumentHandler: NewBaseDocumentHandler[*invoice.Invoice](base, service, func(inv *invoice.Invoice) any {
			return dto.FromInvoice(inv)
		}),
		service: service,
	}
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	quoteID, err := id.Parse(req.DevisID)
	if err != nil {
		h.Error(c, apperror.NewValidation("identifiant de devis invalide").WithDetail("field", "devis_id"))
		return
	}

	inv, err := h.service.CreateFromQuote(c.Request.Context(), quoteID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromInvoice(inv))
}

// SetStatus handles PUT /invoices/:id/status
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	invoiceID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.InvoiceStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.SetStatus(c.Request.Context(), invoiceID, invoice.Status(req.Statut))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInvoice(inv))
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var query dto.InvoiceListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result, dto.FromInvoiceSummary))
}
