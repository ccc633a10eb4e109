package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"dropoff-locator/internal/feed"
	"dropoff-locator/internal/ingest"
	"dropoff-locator/internal/metrics"
	"dropoff-locator/internal/models"
	"dropoff-locator/internal/proximity"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrRefreshInProgress is returned when a refresh is requested while another one is running.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// Refresh outcomes reported in RefreshReport.Status.
const (
	RefreshCompleted = "completed"
	RefreshFailed    = "failed"
)

// Source interface for dependency injection
type Source interface {
	Fetch(ctx context.Context) ([][]string, error)
}

// RefreshReport summarises one ingestion run.
type RefreshReport struct {
	Status      string    `json:"status" yaml:"status"`
	Accepted    int       `json:"accepted" yaml:"accepted"`
	Dropped     int       `json:"dropped" yaml:"dropped"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time `json:"completed_at" yaml:"completed_at"`
	Error       string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// LocationPage is one page of a filtered location listing.
type LocationPage struct {
	Items      []models.LocationRecord `json:"items"`
	Category   models.Category         `json:"category"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	TotalItems int                     `json:"total_items"`
	TotalPages int                     `json:"total_pages"`
}

// Stats describes the current snapshot.
type Stats struct {
	Total      int                     `json:"total"`
	ByCategory map[models.Category]int `json:"by_category"`
	LoadedAt   time.Time               `json:"loaded_at"`
}

// LocationService owns the current snapshot and answers queries against it.
// Queries are safe for concurrent use; at most one refresh runs at a time.
type LocationService struct {
	source  Source
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time

	refreshing atomic.Bool

	mu          sync.RWMutex
	snapshot    models.Snapshot
	diagnostics []models.Diagnostic
	lastRefresh RefreshReport
}

// Option configures a LocationService.
type Option func(*LocationService)

// WithMetrics records refresh metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *LocationService) {
		s.metrics = m
	}
}

// WithLogger replaces the global logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *LocationService) {
		s.logger = logger
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *LocationService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewLocationService creates a new location service
func NewLocationService(source Source, opts ...Option) *LocationService {
	s := &LocationService{
		source: source,
		logger: log.Logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches and ingests the feed without touching the installed snapshot.
// When the feed cannot be read the result holds an empty snapshot.
func (s *LocationService) Load(ctx context.Context) (ingest.Result, error) {
	rows, err := s.source.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, feed.ErrFeedUnavailable) {
			err = fmt.Errorf("%w: %w", feed.ErrFeedUnavailable, err)
		}
		return ingest.Result{Snapshot: models.NewSnapshot(nil, s.now())}, err
	}
	return ingest.Ingest(rows, s.now()), nil
}

// Refresh reloads the feed and installs the new snapshot. On feed failure the
// previous snapshot stays in place.
func (s *LocationService) Refresh(ctx context.Context) (RefreshReport, error) {
	if !s.refreshing.CompareAndSwap(false, true) {
		return RefreshReport{}, ErrRefreshInProgress
	}
	defer s.refreshing.Store(false)

	report := RefreshReport{StartedAt: s.now()}
	result, err := s.Load(ctx)
	report.CompletedAt = s.now()
	elapsed := report.CompletedAt.Sub(report.StartedAt)

	if err != nil {
		report.Status = RefreshFailed
		report.Error = err.Error()
		s.metrics.ObserveRefresh(metrics.StatusFailed, elapsed)
		s.logger.Error().Err(err).Msg("location feed refresh failed")

		s.mu.Lock()
		s.lastRefresh = report
		s.mu.Unlock()
		return report, fmt.Errorf("service: failed to refresh locations: %w", err)
	}

	for _, d := range result.Diagnostics {
		s.logger.Warn().
			Int("row", d.Row).
			Str("reason", d.Reason).
			Str("detail", d.Detail).
			Msg("dropped malformed location row")
		s.metrics.IncRowsDropped(d.Reason)
	}

	report.Status = RefreshCompleted
	report.Accepted = result.Accepted()
	report.Dropped = result.Dropped()

	counts := make(map[string]int)
	for c, n := range proximity.CountByCategory(result.Snapshot) {
		counts[string(c)] = n
	}
	s.metrics.SetSnapshotCounts(counts)
	s.metrics.ObserveRefresh(metrics.StatusSuccess, elapsed)

	s.mu.Lock()
	s.snapshot = result.Snapshot
	s.diagnostics = result.Diagnostics
	s.lastRefresh = report
	s.mu.Unlock()

	s.logger.Info().
		Int("accepted", report.Accepted).
		Int("dropped", report.Dropped).
		Dur("duration", elapsed).
		Msg("location snapshot refreshed")

	return report, nil
}

// Run refreshes the feed every interval until ctx is cancelled.
func (s *LocationService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrRefreshInProgress) {
				s.logger.Debug().Err(err).Msg("scheduled refresh did not complete")
			}
		}
	}
}

// Snapshot returns the installed snapshot.
func (s *LocationService) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Diagnostics returns the rows dropped by the last successful refresh.
func (s *LocationService) Diagnostics() []models.Diagnostic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Diagnostic, len(s.diagnostics))
	copy(out, s.diagnostics)
	return out
}

// LastRefresh returns the report of the most recent refresh attempt.
func (s *LocationService) LastRefresh() RefreshReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// ListLocations filters the snapshot by category and returns the requested page.
func (s *LocationService) ListLocations(category models.Category, page, pageSize int) LocationPage {
	filtered := proximity.FilterByCategory(s.Snapshot(), category)
	window := proximity.Paginate(filtered, pageSize, page)
	return LocationPage{
		Items:      window.Items,
		Category:   category,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(filtered),
		TotalPages: window.TotalPages,
	}
}

// Nearest finds the location closest to point, optionally restricted to a category.
func (s *LocationService) Nearest(point models.QueryPoint, category models.Category) (models.NearestResult, error) {
	snapshot := s.Snapshot()
	if category != models.CategoryAll {
		snapshot = models.NewSnapshot(proximity.FilterByCategory(snapshot, category), snapshot.LoadedAt())
	}

	result, err := proximity.Nearest(snapshot, point)
	if err != nil {
		return models.NearestResult{}, fmt.Errorf("service: failed to find nearest location: %w", err)
	}
	return result, nil
}

// Stats counts the current snapshot per category.
func (s *LocationService) Stats() Stats {
	snapshot := s.Snapshot()
	return Stats{
		Total:      snapshot.Len(),
		ByCategory: proximity.CountByCategory(snapshot),
		LoadedAt:   snapshot.LoadedAt(),
	}
}
