package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"dropoff-locator/internal/feed"
	"dropoff-locator/internal/ingest"
	"dropoff-locator/internal/metrics"
	"dropoff-locator/internal/models"
	"dropoff-locator/internal/proximity"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSource is a mock implementation of the Source interface
type MockSource struct {
	mock.Mock
}

// Fetch implements Source.
func (m *MockSource) Fetch(ctx context.Context) ([][]string, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([][]string)
	return rows, args.Error(1)
}

var header = []string{"id", "type", "name", "address", "city", "state", "zip", "lat", "lng", "website", "policy"}

func sampleRows() [][]string {
	return [][]string{
		header,
		{"1", "bin", "Park Slope Bin", "123 7th Ave", "Brooklyn", "NY", "11215", "40.6710", "-73.9814", "", "donation only"},
		{"2", "goodwill", "Goodwill Atlantic", "258 Atlantic Ave", "Brooklyn", "NY", "11201", "40.6887", "-73.9903", "https://goodwillnynj.org", "both"},
		{"3", "thrift", "Beacon's Closet", "74 Guernsey St", "Brooklyn", "NY", "11222", "40.7206", "-73.9530", "", "buy only"},
		{"4", "bin", "", "1 Broken Row", "", "", "", "40.0", "-74.0", "", ""},
	}
}

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestService(src Source) *LocationService {
	return NewLocationService(src,
		WithLogger(zerolog.Nop()),
		WithClock(func() time.Time { return fixedNow }),
		WithMetrics(metrics.NewMetrics()),
	)
}

func TestLocationService_Refresh(t *testing.T) {
	tests := []struct {
		name           string
		rows           [][]string
		fetchErr       error
		expectError    bool
		expectAccepted int
		expectDropped  int
	}{
		{
			name:           "successful refresh drops malformed rows",
			rows:           sampleRows(),
			expectAccepted: 3,
			expectDropped:  1,
		},
		{
			name:           "header only",
			rows:           [][]string{header},
			expectAccepted: 0,
		},
		{
			name:        "feed unavailable",
			fetchErr:    feed.ErrFeedUnavailable,
			expectError: true,
		},
		{
			name:        "other source error is reported as feed unavailable",
			fetchErr:    assert.AnError,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			mockSrc := new(MockSource)
			mockSrc.On("Fetch", mock.Anything).Return(tt.rows, tt.fetchErr)
			svc := newTestService(mockSrc)

			// Execute
			report, err := svc.Refresh(context.Background())

			// Assert
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, feed.ErrFeedUnavailable)
				assert.Equal(t, RefreshFailed, report.Status)
				assert.NotEmpty(t, report.Error)
			} else {
				require.NoError(t, err)
				assert.Equal(t, RefreshCompleted, report.Status)
				assert.Equal(t, tt.expectAccepted, report.Accepted)
				assert.Equal(t, tt.expectDropped, report.Dropped)
				assert.Equal(t, tt.expectAccepted, svc.Snapshot().Len())
				assert.Len(t, svc.Diagnostics(), tt.expectDropped)
			}
			assert.Equal(t, report, svc.LastRefresh())

			mockSrc.AssertExpectations(t)
		})
	}
}

func TestLocationService_Refresh_KeepsSnapshotOnFailure(t *testing.T) {
	mockSrc := new(MockSource)
	mockSrc.On("Fetch", mock.Anything).Return(sampleRows(), nil).Once()
	mockSrc.On("Fetch", mock.Anything).Return(nil, feed.ErrFeedUnavailable).Once()
	svc := newTestService(mockSrc)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, svc.Snapshot().Len())

	_, err = svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, svc.Snapshot().Len())
	assert.Equal(t, RefreshFailed, svc.LastRefresh().Status)

	mockSrc.AssertExpectations(t)
}

func TestLocationService_Load_FeedUnavailableYieldsEmptySnapshot(t *testing.T) {
	mockSrc := new(MockSource)
	mockSrc.On("Fetch", mock.Anything).Return(nil, assert.AnError)
	svc := newTestService(mockSrc)

	result, err := svc.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, feed.ErrFeedUnavailable))
	assert.Equal(t, 0, result.Snapshot.Len())
	assert.Empty(t, result.Diagnostics)
}

// blockingSource holds Fetch open until release is closed.
type blockingSource struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingSource) Fetch(ctx context.Context) ([][]string, error) {
	close(b.started)
	<-b.release
	return sampleRows(), nil
}

func TestLocationService_Refresh_InProgress(t *testing.T) {
	src := &blockingSource{started: make(chan struct{}), release: make(chan struct{})}
	svc := newTestService(src)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background())
		done <- err
	}()

	<-src.started
	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefreshInProgress)

	close(src.release)
	require.NoError(t, <-done)
	assert.Equal(t, 3, svc.Snapshot().Len())
}

func loadedService(t *testing.T) *LocationService {
	t.Helper()
	mockSrc := new(MockSource)
	mockSrc.On("Fetch", mock.Anything).Return(sampleRows(), nil)
	svc := newTestService(mockSrc)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	return svc
}

func TestLocationService_ListLocations(t *testing.T) {
	svc := loadedService(t)

	tests := []struct {
		name        string
		category    models.Category
		page        int
		pageSize    int
		expectIDs   []string
		expectTotal int
		expectPages int
	}{
		{
			name:        "all categories first page",
			category:    models.CategoryAll,
			page:        1,
			pageSize:    2,
			expectIDs:   []string{"1", "2"},
			expectTotal: 3,
			expectPages: 2,
		},
		{
			name:        "all categories last page",
			category:    models.CategoryAll,
			page:        2,
			pageSize:    2,
			expectIDs:   []string{"3"},
			expectTotal: 3,
			expectPages: 2,
		},
		{
			name:        "bin only",
			category:    models.CategoryBin,
			page:        1,
			pageSize:    10,
			expectIDs:   []string{"1"},
			expectTotal: 1,
			expectPages: 1,
		},
		{
			name:        "page out of range",
			category:    models.CategoryAll,
			page:        5,
			pageSize:    2,
			expectIDs:   []string{},
			expectTotal: 3,
			expectPages: 2,
		},
		{
			name:        "category with no locations",
			category:    models.CategoryOther,
			page:        1,
			pageSize:    10,
			expectIDs:   []string{},
			expectTotal: 0,
			expectPages: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := svc.ListLocations(tt.category, tt.page, tt.pageSize)

			ids := []string{}
			for _, rec := range page.Items {
				ids = append(ids, rec.ID)
			}
			assert.Equal(t, tt.expectIDs, ids)
			assert.Equal(t, tt.expectTotal, page.TotalItems)
			assert.Equal(t, tt.expectPages, page.TotalPages)
			assert.Equal(t, tt.page, page.Page)
			assert.Equal(t, tt.category, page.Category)
		})
	}
}

func TestLocationService_Nearest(t *testing.T) {
	svc := loadedService(t)

	tests := []struct {
		name        string
		point       models.QueryPoint
		category    models.Category
		expectID    string
		expectError error
	}{
		{
			name:     "exact match",
			point:    models.QueryPoint{Latitude: 40.7206, Longitude: -73.9530},
			category: models.CategoryAll,
			expectID: "3",
		},
		{
			name:     "restricted to goodwill",
			point:    models.QueryPoint{Latitude: 40.7206, Longitude: -73.9530},
			category: models.CategoryGoodwill,
			expectID: "2",
		},
		{
			name:        "category with no locations",
			point:       models.QueryPoint{Latitude: 40.7206, Longitude: -73.9530},
			category:    models.CategoryOther,
			expectError: proximity.ErrEmptySnapshot,
		},
		{
			name:        "invalid point",
			point:       models.QueryPoint{Latitude: 123, Longitude: -73.9530},
			category:    models.CategoryAll,
			expectError: models.ErrInvalidQueryPoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Nearest(tt.point, tt.category)
			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectID, result.Location.ID)
		})
	}
}

func TestLocationService_Nearest_BeforeFirstLoad(t *testing.T) {
	svc := newTestService(new(MockSource))

	_, err := svc.Nearest(models.QueryPoint{Latitude: 40, Longitude: -74}, models.CategoryAll)
	assert.ErrorIs(t, err, proximity.ErrEmptySnapshot)
}

func TestLocationService_Stats(t *testing.T) {
	svc := loadedService(t)

	stats := svc.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, map[models.Category]int{
		models.CategoryBin:      1,
		models.CategoryGoodwill: 1,
		models.CategoryThrift:   1,
		models.CategoryOther:    0,
	}, stats.ByCategory)
	assert.Equal(t, fixedNow, stats.LoadedAt)
}

func TestLocationService_Diagnostics(t *testing.T) {
	svc := loadedService(t)

	diags := svc.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, 4, diags[0].Row)
	assert.Equal(t, ingest.ReasonMissingRequired, diags[0].Reason)

	// Callers get a copy.
	diags[0].Reason = "changed"
	assert.Equal(t, ingest.ReasonMissingRequired, svc.Diagnostics()[0].Reason)
}

func TestLocationService_Run_StopsOnCancel(t *testing.T) {
	mockSrc := new(MockSource)
	mockSrc.On("Fetch", mock.Anything).Return(sampleRows(), nil)
	svc := newTestService(mockSrc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return svc.Snapshot().Len() == 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
