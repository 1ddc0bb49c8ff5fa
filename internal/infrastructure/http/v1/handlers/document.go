package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"renodevis/internal/core/id"
	"renodevis/internal/domain/audit"
)

// DocumentService is the part of the quote and invoice services shared by
// every document handler.
type DocumentService[T any] interface {
	GetByID(ctx context.Context, docID id.ID) (T, error)
	Delete(ctx context.Context, docID id.ID) error
	History(ctx context.Context, docID id.ID) ([]audit.Record, error)
}

// BaseDocumentHandler implements Get, Delete and History for a document
// type T.
type BaseDocumentHandler[T any] struct {
	*BaseHandler
	service  DocumentService[T]
	mapToDTO func(T) any
}

// NewBaseDocumentHandler creates a document handler rendering T with mapToDTO.
func NewBaseDocumentHandler[T any](base *BaseHandler, service DocumentService[T], mapToDTO func(T) any) *BaseDocumentHandler[T] {
	return &BaseDocumentHandler[T]{
		BaseHandler: base,
		service:     service,
		mapToDTO:    mapToDTO,
	}
}

// Get handles GET /:id
func (h *BaseDocumentHandler[T]) Get(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.mapToDTO(doc))
}

// Delete handles DELETE /:id
func (h *BaseDocumentHandler[T]) Delete(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// History handles GET /:id/history
func (h *BaseDocumentHandler[T]) History(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}

	records, err := h.service.History(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if records == nil {
		records = []audit.Record{}
	}
	h.OK(c, gin.H{"items": records})
}
