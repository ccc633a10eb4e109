package handler

import (
	"errors"
	"net/http"
	"strconv"

	"dropoff-locator/internal/models"
	"dropoff-locator/internal/proximity"

	"github.com/gin-gonic/gin"
)

// NearestResponse is the closest location to the requested point.
type NearestResponse struct {
	Location      LocationView `json:"location"`
	DistanceMiles float64      `json:"distance_miles"`
}

// NearestHandler handles nearest-location requests
type NearestHandler struct {
	service NearestService
}

// Service interface for dependency injection
type NearestService interface {
	Nearest(point models.QueryPoint, category models.Category) (models.NearestResult, error)
}

// NewNearestHandler creates a new nearest-location handler
func NewNearestHandler(svc NearestService) *NearestHandler {
	return &NearestHandler{service: svc}
}

// Nearest godoc
//
//	@Summary		Nearest location
//	@Description	Great-circle nearest location to the given point, distance in miles rounded to 0.1.
//	@Tags			locations
//	@Produce		json
//	@Param			lat			query		number	true	"latitude"
//	@Param			lon			query		number	true	"longitude"
//	@Param			category	query		string	false	"restrict to a category"	default(all)
//	@Success		200			{object}	NearestResponse
//	@Failure		400			{object}	map[string]string
//	@Failure		404			{object}	map[string]string
//	@Router			/locations/nearest [get]
func (h *NearestHandler) Nearest(c *gin.Context) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")

	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters 'lat' and 'lon'"})
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid latitude format"})
		return
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid longitude format"})
		return
	}

	category, err := models.ParseCategoryFilter(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}

	result, err := h.service.Nearest(models.QueryPoint{Latitude: lat, Longitude: lon}, category)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrInvalidQueryPoint):
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	case errors.Is(err, proximity.ErrEmptySnapshot):
		c.JSON(http.StatusNotFound, gin.H{"error": "no locations available"})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, NearestResponse{
		Location:      newLocationView(result.Location),
		DistanceMiles: result.DistanceMiles,
	})
}
