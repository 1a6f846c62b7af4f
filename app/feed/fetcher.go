package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher retrieves one feed document and parses it into raw items.
type Fetcher struct {
	httpClient     *http.Client
	parser         *Parser
	userAgent      string
	defaultTimeout time.Duration
}

// NewHTTPClient returns the client used for feed requests. It carries no
// client-wide Timeout: each request is bounded by the per-source context
// deadline in Run, and a shorter client timeout would cap it.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: http.DefaultTransport.(*http.Transport).Clone(),
	}
}

func NewFetcher(httpClient *http.Client, parser *Parser, userAgent string, defaultTimeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient:     httpClient,
		parser:         parser,
		userAgent:      userAgent,
		defaultTimeout: defaultTimeout,
	}
}

// Run fetches source within its timeout. Every failure is a *FetchError.
func (f *Fetcher) Run(ctx context.Context, source Source) ([]RawItem, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, source.GetTimeout(f.defaultTimeout))
	defer cancel()

	data, err := f.fetch(timeoutCtx, source.URL)
	if err != nil {
		return nil, &FetchError{FeedURL: source.URL, Err: err}
	}

	items, err := f.parser.Run(data)
	if err != nil {
		return nil, &FetchError{FeedURL: source.URL, Err: err}
	}

	return items, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
