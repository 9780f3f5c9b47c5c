package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"peopledesk/internal/core/apperror"
	"peopledesk/internal/export"
	"peopledesk/internal/infrastructure/http/v1/dto"
	"peopledesk/internal/listing"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListHandler serves the list screens.
type ListHandler struct {
	*BaseHandler
	service   *listing.Service
	formatter export.Formatter
}

// NewListHandler creates a list handler.
func NewListHandler(base *BaseHandler, service *listing.Service, formatter export.Formatter) *ListHandler {
	return &ListHandler{BaseHandler: base, service: service, formatter: formatter}
}

// RegisterRoutes mounts the list endpoints on rg.
func (h *ListHandler) RegisterRoutes(rg *gin.RouterGroup) {
	lists := rg.Group("/lists")
	lists.GET("", h.Index)
	lists.GET("/:screen", h.List)
	lists.GET("/:screen/facets", h.Facets)
	lists.GET("/:screen/export", h.Export)
	lists.POST("/:screen/reload", h.Reload)
}

// Index lists the available screens.
// GET /api/v1/lists
func (h *ListHandler) Index(c *gin.Context) {
	schemas := h.service.Screens()
	out := make([]dto.ScreenSummary, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, dto.NewScreenSummary(s, h.service.LoadedAt(s.Name)))
	}
	h.OK(c, gin.H{"screens": out})
}

// List returns one page of a screen.
// GET /api/v1/lists/:screen?search=&f.<field>=&filter=&where=&sort=&page=&pageSize=&fields=
func (h *ListHandler) List(c *gin.Context) {
	req, q, ok := h.query(c)
	if !ok {
		return
	}

	screen := c.Param("screen")
	page, err := h.service.List(c.Request.Context(), screen, q)
	if err != nil {
		h.Error(c, err)
		return
	}
	schema, err := h.service.Schema(screen)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(schema, q, page, req.Projection()))
}

// Facets returns the dropdown options with counts.
// GET /api/v1/lists/:screen/facets
func (h *ListHandler) Facets(c *gin.Context) {
	_, q, ok := h.query(c)
	if !ok {
		return
	}

	screen := c.Param("screen")
	facets, err := h.service.Facets(c.Request.Context(), screen, q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FacetsResponse{Screen: screen, Facets: facets})
}

// Export downloads the whole filtered and sorted set as XLSX or CSV.
// GET /api/v1/lists/:screen/export?format=xlsx|csv
func (h *ListHandler) Export(c *gin.Context) {
	_, q, ok := h.query(c)
	if !ok {
		return
	}

	screen := c.Param("screen")
	schema, err := h.service.Schema(screen)
	if err != nil {
		h.Error(c, err)
		return
	}
	records, err := h.service.Matching(c.Request.Context(), screen, q)
	if err != nil {
		h.Error(c, err)
		return
	}

	var buf bytes.Buffer
	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))
	var contentType string
	switch format {
	case "xlsx":
		err = export.WriteXLSX(&buf, schema, records)
		contentType = xlsxContentType
	case "csv":
		err = h.formatter.WriteCSV(&buf, schema, records)
		contentType = "text/csv; charset=utf-8"
	default:
		h.Error(c, apperror.NewValidation("unsupported export format").WithDetail("format", format))
		return
	}
	if err != nil {
		h.Error(c, apperror.NewInternal(fmt.Errorf("export %s: %w", screen, err)))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, screen, format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Reload re-reads a screen from its source.
// POST /api/v1/lists/:screen/reload
func (h *ListHandler) Reload(c *gin.Context) {
	screen := c.Param("screen")
	n, err := h.service.Reload(c.Request.Context(), screen)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ReloadResponse{Screen: screen, Records: n})
}

func (h *ListHandler) query(c *gin.Context) (dto.ListRequest, listing.Query, bool) {
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return req, listing.Query{}, false
	}
	q, err := req.ToQuery(c.Request.URL.Query())
	if err != nil {
		h.Error(c, err)
		return req, q, false
	}
	return req, q, true
}
