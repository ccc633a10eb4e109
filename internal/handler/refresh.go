package handler

import (
	"context"
	"errors"
	"net/http"

	"dropoff-locator/internal/feed"
	"dropoff-locator/internal/service"

	"github.com/gin-gonic/gin"
)

// RefreshHandler triggers and reports feed refreshes
type RefreshHandler struct {
	service Refresher
}

// Service interface for dependency injection
type Refresher interface {
	Refresh(ctx context.Context) (service.RefreshReport, error)
	LastRefresh() service.RefreshReport
}

// NewRefreshHandler creates a new refresh handler
func NewRefreshHandler(svc Refresher) *RefreshHandler {
	return &RefreshHandler{service: svc}
}

// Refresh godoc
//
//	@Summary	Reload the location feed
//	@Tags		ingestion
//	@Produce	json
//	@Success	200	{object}	service.RefreshReport
//	@Failure	409	{object}	map[string]string
//	@Failure	502	{object}	map[string]any
//	@Router		/refresh [post]
func (h *RefreshHandler) Refresh(c *gin.Context) {
	report, err := h.service.Refresh(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, report)
	case errors.Is(err, service.ErrRefreshInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "refresh already in progress"})
	case errors.Is(err, feed.ErrFeedUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "location feed unavailable", "report": report})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// Status godoc
//
//	@Summary	Last refresh report
//	@Tags		ingestion
//	@Produce	json
//	@Success	200	{object}	service.RefreshReport
//	@Router		/refresh [get]
func (h *RefreshHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.LastRefresh())
}
