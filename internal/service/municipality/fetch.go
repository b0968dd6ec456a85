// internal/service/municipality/fetch.go

package municipality

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	fetchUserAgent = "Mozilla/5.0 (compatible; Locom/1.0)"
	maxFeedBytes   = 8 << 20
)

// userAgentTransport injects a User-Agent header into every request
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", fetchUserAgent)
	return t.base.RoundTrip(req)
}

// Fetcher downloads raw feed documents
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher. A zero timeout leaves requests bounded only by ctx.
func NewFetcher(timeout time.Duration) *Fetcher {
	return NewFetcherWithClient(&http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: http.DefaultTransport},
	})
}

// NewFetcherWithClient creates a fetcher around an existing client
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch returns the body at url. Any transport failure or non-2xx status fails the fetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", url, err)
	}

	return body, nil
}
