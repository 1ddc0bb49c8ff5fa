package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"renodevis/internal/core/types"
	"renodevis/internal/domain/catalog"
	"renodevis/internal/domain/documents"
	"renodevis/internal/domain/documents/quote"
	"renodevis/internal/domain/pricing"
	"renodevis/internal/infrastructure/http/v1/dto"
)

// DraftSaver stores an assembled draft as a quote.
type DraftSaver interface {
	CreateFromDraft(ctx context.Context, draft pricing.QuoteDraft, snap *catalog.Snapshot) (*quote.Quote, error)
}

// DraftHandler prices selection forms before they become quotes.
type DraftHandler struct {
	*BaseHandler
	catalog    catalog.Provider
	quotes     DraftSaver
	defaultVAT types.Money
}

func NewDraftHandler(base *BaseHandler, provider catalog.Provider, quotes DraftSaver, defaultVAT types.Money) *DraftHandler {
	return &DraftHandler{
		BaseHandler: base,
		catalog:     provider,
		quotes:      quotes,
		defaultVAT:  defaultVAT,
	}
}

// Assemble handles POST /quotes/draft
func (h *DraftHandler) Assemble(c *gin.Context) {
	var req dto.DraftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	snap, err := h.catalog.Load(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	review, err := pricing.AssembleReview(req.ToDraft(h.defaultVAT), snap)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReview(review))
}

// Totals handles POST /quotes/draft/totals
func (h *DraftHandler) Totals(c *gin.Context) {
	var req dto.TotalsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if lines := req.Lines(); len(lines) > 0 {
		if err := documents.ValidateLines(lines); err != nil {
			h.Error(c, err)
			return
		}
	}

	review, err := req.Review(h.defaultVAT)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReview(review))
}

// Save handles POST /quotes/draft/save: assembles the draft and stores it,
// replacing the content of editing_devis_id when set.
func (h *DraftHandler) Save(c *gin.Context) {
	var req dto.DraftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	snap, err := h.catalog.Load(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	draft := req.ToDraft(h.defaultVAT)
	q, err := h.quotes.CreateFromDraft(ctx, draft, snap)
	if err != nil {
		h.Error(c, err)
		return
	}
	if draft.IsEditing() {
		h.OK(c, dto.FromQuote(q))
		return
	}
	h.Created(c, dto.FromQuote(q))
}
