package handler

import (
	"net/http"

	"dropoff-locator/internal/metrics"
	"dropoff-locator/internal/middleware"
	"dropoff-locator/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterConfig wires the API routes.
type RouterConfig struct {
	Service         *service.LocationService
	Metrics         *metrics.Metrics
	Gatherer        prometheus.Gatherer
	Logger          zerolog.Logger
	DefaultPageSize int
	MaxPageSize     int
}

// NewRouter builds the gin engine with every API route.
func NewRouter(cfg RouterConfig) *gin.Engine {
	locationHandler := NewLocationHandler(cfg.Service, cfg.DefaultPageSize, cfg.MaxPageSize)
	nearestHandler := NewNearestHandler(cfg.Service)
	refreshHandler := NewRefreshHandler(cfg.Service)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(cfg.Logger),
		middleware.Metrics(cfg.Metrics),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/locations", locationHandler.ListLocations)
	r.GET("/locations/stats", locationHandler.Stats)
	r.GET("/locations/nearest", nearestHandler.Nearest)
	r.GET("/diagnostics", locationHandler.Diagnostics)
	r.GET("/refresh", refreshHandler.Status)
	r.POST("/refresh", refreshHandler.Refresh)

	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
