package handlers

import (
	"github.com/gin-gonic/gin"

	"renodevis/internal/domain/catalog"
	"renodevis/internal/infrastructure/http/v1/dto"
)

// ReferenceHandler lists the catalog entries the client picks from.
type ReferenceHandler struct {
	*BaseHandler
	catalog catalog.Provider
}

func NewReferenceHandler(base *BaseHandler, provider catalog.Provider) *ReferenceHandler {
	return &ReferenceHandler{BaseHandler: base, catalog: provider}
}

// list loads the current snapshot and renders what pick extracts from it.
func (h *ReferenceHandler) list(pick func(*catalog.Snapshot) any) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := h.catalog.Load(c.Request.Context())
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, pick(snap))
	}
}

// Kitchens handles GET /references/cuisine/types
func (h *ReferenceHandler) Kitchens() gin.HandlerFunc {
	return h.list(func(s *catalog.Snapshot) any { return dto.MapList(s.Kitchens, dto.FromKitchen) })
}

// Worktops handles GET /references/cuisine/plans-travail
func (h *ReferenceHandler) Worktops() gin.HandlerFunc {
	return h.list(func(s *catalog.Snapshot) any { return dto.MapList(s.Worktops, dto.FromWorktop) })
}

// Partitions handles GET /references/cloisons
func (h *ReferenceHandler) Partitions() gin.HandlerFunc {
	return h.list(func(s *catalog.Snapshot) any { return dto.MapList(s.Partitions, dto.FromPartition) })
}

// PartitionOptions handles GET /references/cloisons/options
func (h *ReferenceHandler) PartitionOptions() gin.HandlerFunc {
	return h.list(func(s *catalog.Snapshot) any {
		return dto.MapList(s.PartitionOptions, dto.FromPartitionOption)
	})
}

// Paints handles GET /references/peintures. Only selectable paints are listed.
func (h *ReferenceHandler) Paints() gin.HandlerFunc {
	return h.list(func(s *catalog.Snapshot) any { return dto.MapList(s.SupportPaints(), dto.FromPaint) })
}

// Floorings handles GET /references/parquets
func (h *ReferenceHandler) Floorings() gin.HandlerFunc {
	return h.list(func(s *catalog.Snapshot) any { return dto.MapList(s.Floorings, dto.FromFlooring) })
}

// FlooringMethods handles GET /references/parquets/poses
func (h *ReferenceHandler) FlooringMethods() gin.HandlerFunc {
	return h.list(func(s *catalog.Snapshot) any {
		return dto.MapList(s.FlooringMethods, dto.FromFlooringMethod)
	})
}

// Services handles GET /references/services
func (h *ReferenceHandler) Services() gin.HandlerFunc {
	return h.list(func(s *catalog.Snapshot) any { return dto.FromServiceRates(s.Services) })
}

// Extras handles GET /references/extras?categorie=
func (h *ReferenceHandler) Extras(c *gin.Context) {
	var q dto.ExtrasQuery
	if !h.BindQuery(c, &q) {
		return
	}
	h.list(func(s *catalog.Snapshot) any {
		return dto.MapList(s.ExtrasFor(catalog.Category(q.Categorie)), dto.FromExtra)
	})(c)
}
