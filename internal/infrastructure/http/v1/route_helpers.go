package v1

import (
	"github.com/gin-gonic/gin"
)

// DocumentRouteHandler defines the routes every document type exposes.
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)
	History(c *gin.Context)
}

// RegisterDocumentRoutes registers the routes shared by quotes and invoices.
// Create goes through the idempotency middleware when one is given.
//
// Usage:
//
//	handler := handlers.NewInvoiceHandler(baseHandler, cfg.Invoices)
//	RegisterDocumentRoutes(rg.Group("/invoices"), handler, idem)
//	group.PUT("/:id/status", handler.SetStatus)
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler, idempotency gin.HandlerFunc) {
	create := []gin.HandlerFunc{handler.Create}
	if idempotency != nil {
		create = append([]gin.HandlerFunc{idempotency}, create...)
	}

	group.GET("", handler.List)
	group.POST("", create...)
	group.GET("/:id", handler.Get)
	group.DELETE("/:id", handler.Delete)
	group.GET("/:id/history", handler.History)
}
