package handler

import (
	"net/http"
	"strconv"

	"dropoff-locator/internal/models"
	"dropoff-locator/internal/service"

	"github.com/gin-gonic/gin"
)

// LocationView is a location as returned by the API.
type LocationView struct {
	models.LocationRecord
	Geohash string `json:"geohash"`
}

func newLocationView(rec models.LocationRecord) LocationView {
	return LocationView{LocationRecord: rec, Geohash: rec.Geohash(models.GeohashPrecision)}
}

// LocationPageResponse is one page of locations.
type LocationPageResponse struct {
	Items      []LocationView  `json:"items"`
	Category   models.Category `json:"category"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalItems int             `json:"total_items"`
	TotalPages int             `json:"total_pages"`
}

// DiagnosticsResponse lists the rows dropped by the last refresh.
type DiagnosticsResponse struct {
	Count       int                 `json:"count"`
	Diagnostics []models.Diagnostic `json:"diagnostics"`
}

// LocationHandler handles location listing requests
type LocationHandler struct {
	service         LocationService
	defaultPageSize int
	maxPageSize     int
}

// Service interface for dependency injection
type LocationService interface {
	ListLocations(category models.Category, page, pageSize int) service.LocationPage
	Stats() service.Stats
	Diagnostics() []models.Diagnostic
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(svc LocationService, defaultPageSize, maxPageSize int) *LocationHandler {
	if defaultPageSize < 1 {
		defaultPageSize = 10
	}
	if maxPageSize < defaultPageSize {
		maxPageSize = defaultPageSize
	}
	return &LocationHandler{service: svc, defaultPageSize: defaultPageSize, maxPageSize: maxPageSize}
}

// ListLocations godoc
//
//	@Summary		List locations
//	@Description	Filters the current snapshot by category and returns one page.
//	@Tags			locations
//	@Produce		json
//	@Param			category	query		string	false	"bin, goodwill, thrift, other or all"	default(all)
//	@Param			page		query		int		false	"1-indexed page number"					default(1)
//	@Param			page_size	query		int		false	"page size, capped at the configured maximum"
//	@Success		200			{object}	LocationPageResponse
//	@Failure		400			{object}	map[string]string
//	@Router			/locations [get]
func (h *LocationHandler) ListLocations(c *gin.Context) {
	category, err := models.ParseCategoryFilter(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}

	page, ok := positiveIntQuery(c, "page", 1)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}

	pageSize, ok := positiveIntQuery(c, "page_size", h.defaultPageSize)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page_size"})
		return
	}
	pageSize = min(pageSize, h.maxPageSize)

	result := h.service.ListLocations(category, page, pageSize)

	items := make([]LocationView, 0, len(result.Items))
	for _, rec := range result.Items {
		items = append(items, newLocationView(rec))
	}

	c.JSON(http.StatusOK, LocationPageResponse{
		Items:      items,
		Category:   result.Category,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// Stats godoc
//
//	@Summary	Location counts
//	@Tags		locations
//	@Produce	json
//	@Success	200	{object}	service.Stats
//	@Router		/locations/stats [get]
func (h *LocationHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Stats())
}

// Diagnostics godoc
//
//	@Summary	Rows dropped by the last refresh
//	@Tags		ingestion
//	@Produce	json
//	@Success	200	{object}	DiagnosticsResponse
//	@Router		/diagnostics [get]
func (h *LocationHandler) Diagnostics(c *gin.Context) {
	diags := h.service.Diagnostics()
	if diags == nil {
		diags = []models.Diagnostic{}
	}
	c.JSON(http.StatusOK, DiagnosticsResponse{Count: len(diags), Diagnostics: diags})
}

func positiveIntQuery(c *gin.Context, key string, fallback int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
