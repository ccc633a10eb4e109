package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "dropoff-locator/docs"
	"dropoff-locator/internal/config"
	"dropoff-locator/internal/feed"
	"dropoff-locator/internal/handler"
	"dropoff-locator/internal/metrics"
	"dropoff-locator/internal/repository"
	"dropoff-locator/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

//	@title		Drop-off Locator API
//	@version	1.0
//	@BasePath	/
func main() {
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Feed source
	var source service.Source
	switch cfg.FeedSource {
	case config.SourceFile:
		source = feed.NewFileSource(cfg.FeedFile)
	case config.SourcePostgres:
		conn, err := pgxpool.New(ctx, cfg.DBSource)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to db")
		}
		defer conn.Close()
		source = repository.NewRepository(conn, cfg.FeedTable)
	default:
		source = feed.NewHTTPSource(cfg.FeedURL, feed.WithTimeout(cfg.FeedTimeout))
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics()
	if err := m.Register(registry); err != nil {
		log.Fatal().Err(err).Msg("cannot register metrics")
	}

	// Initialize layers
	locationService := service.NewLocationService(source,
		service.WithMetrics(m),
		service.WithLogger(log.Logger),
	)
	if _, err := locationService.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("initial location load failed, serving an empty snapshot")
	}
	go locationService.Run(ctx, cfg.RefreshInterval)

	if level > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	r := handler.NewRouter(handler.RouterConfig{
		Service:         locationService,
		Metrics:         m,
		Gatherer:        registry,
		Logger:          log.Logger,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})

	srv := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: r,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("address", cfg.ServerAddress).Str("source", cfg.FeedSource).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}
