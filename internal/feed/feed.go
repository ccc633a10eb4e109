// Package feed fetches the raw location table from wherever it is published.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"dropoff-locator/internal/ingest"
)

// ErrFeedUnavailable is returned when the raw table cannot be retrieved or parsed at all.
var ErrFeedUnavailable = errors.New("feed unavailable")

// Source produces a raw table whose first row is a header.
type Source interface {
	Fetch(ctx context.Context) ([][]string, error)
}

const defaultTimeout = 10 * time.Second

// HTTPSource reads a published spreadsheet exported as CSV.
type HTTPSource struct {
	url        string
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient overrides the client used for requests.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithTimeout bounds each fetch.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) HTTPOption {
	return func(s *HTTPSource) {
		s.userAgent = userAgent
	}
}

// NewHTTPSource creates a source for the given URL.
func NewHTTPSource(url string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		url:        url,
		httpClient: http.DefaultClient,
		userAgent:  "dropoff-locator/1.0",
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch downloads and parses the sheet.
func (s *HTTPSource) Fetch(ctx context.Context) ([][]string, error) {
	if strings.TrimSpace(s.url) == "" {
		return nil, fmt.Errorf("%w: feed url is empty", ErrFeedUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	req.Header.Set("Accept", "text/csv")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFeedUnavailable, resp.StatusCode)
	}

	rows, err := ingest.ReadTable(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	return rows, nil
}

// FileSource reads the sheet from a local CSV file.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch opens and parses the file.
func (s *FileSource) Fetch(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open file: %w", ErrFeedUnavailable, err)
	}
	defer file.Close()

	rows, err := ingest.ReadTable(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	return rows, nil
}
