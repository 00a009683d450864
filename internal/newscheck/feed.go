package newscheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// DefaultNewsURL is the news index page
const DefaultNewsURL = "https://archlinux.org/news"

var (
	// ErrFeedFetch is returned when the news index cannot be retrieved
	ErrFeedFetch = errors.New("failed to fetch news index")
	// ErrFeedStatus is returned when the news server answers with a non-200 status
	ErrFeedStatus = errors.New("unexpected news index status")
)

// FeedFetcher retrieves the raw news index document
type FeedFetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPFeed fetches the news index over HTTP
type HTTPFeed struct {
	url    string
	client *RetryableHTTPClient
}

// NewHTTPFeed creates a fetcher for url. A nil client uses the default client.
func NewHTTPFeed(url string, client *RetryableHTTPClient) *HTTPFeed {
	if url == "" {
		url = DefaultNewsURL
	}
	if client == nil {
		client = NewRetryableHTTPClient()
	}
	return &HTTPFeed{
		url:    url,
		client: client,
	}
}

// URL returns the news index address
func (f *HTTPFeed) URL() string {
	return f.url
}

// Fetch downloads the news index document
func (f *HTTPFeed) Fetch(ctx context.Context) ([]byte, error) {
	resp, err := f.client.Get(ctx, f.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrFeedStatus, f.url, resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrFeedFetch, err)
	}

	return content, nil
}

// Ensure HTTPFeed implements FeedFetcher interface
var _ FeedFetcher = (*HTTPFeed)(nil)
