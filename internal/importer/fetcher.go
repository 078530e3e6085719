package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pders01/nearby/internal/places"
)

const (
	defaultUserAgent = "nearby/1.0 (place importer; github.com/pders01/nearby)"
	defaultTimeout   = 30 * time.Second
	maxFeedBytes     = 10 << 20
)

type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch downloads a feed body, capped at maxFeedBytes. Server errors are
// reported as *places.StatusError so callers can classify them.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		statusErr := &places.StatusError{Code: resp.StatusCode, Status: resp.Status}
		if statusErr.Temporary() {
			return nil, fmt.Errorf("fetching feed: %w", statusErr)
		}
		return nil, fmt.Errorf("fetching feed: %w: %w", places.ErrRejected, statusErr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}
	return body, nil
}
