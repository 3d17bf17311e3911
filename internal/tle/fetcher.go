package tle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultSourceURL = "https://celestrak.org/NORAD/elements/gp.php?GROUP=active&FORMAT=tle"

// maxFetchBytes caps a feed response. CelesTrak's full catalog is a few MB;
// anything near this limit is a broken or hostile source.
const maxFetchBytes = 50 * 1024 * 1024

// Fetcher retrieves raw TLE feed text from a remote source. It produces
// input for the parser and contains no parsing logic itself.
type Fetcher struct {
	sourceURL  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher for the given source URL.
func NewFetcher(sourceURL string, logger *slog.Logger) *Fetcher {
	if sourceURL == "" {
		sourceURL = defaultSourceURL
	}
	return &Fetcher{
		sourceURL: sourceURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// SourceURL returns the configured source URL.
func (f *Fetcher) SourceURL() string {
	return f.sourceURL
}

// Fetch performs an HTTP GET to retrieve raw TLE feed text.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching TLE data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, f.sourceURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxFetchBytes {
		return nil, fmt.Errorf("response from %s exceeds %d byte limit", f.sourceURL, maxFetchBytes)
	}

	return body, nil
}
