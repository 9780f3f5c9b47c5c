package handlers

import (
	"github.com/gin-gonic/gin"

	"peopledesk/internal/listing"
)

// MetadataHandler exposes screen schemas so clients can build filter bars.
type MetadataHandler struct {
	*BaseHandler
	service *listing.Service
}

func NewMetadataHandler(base *BaseHandler, service *listing.Service) *MetadataHandler {
	return &MetadataHandler{BaseHandler: base, service: service}
}

// List returns every schema.
// GET /api/v1/meta
func (h *MetadataHandler) List(c *gin.Context) {
	h.OK(c, h.service.Screens())
}

// Get returns one schema.
// GET /api/v1/meta/:screen
func (h *MetadataHandler) Get(c *gin.Context) {
	schema, err := h.service.Schema(c.Param("screen"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, schema)
}
