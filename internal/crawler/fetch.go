package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/errors"
)

// Fetcher retrieves the raw HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages over HTTP. Only 2xx responses with an HTML
// content type are accepted.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewHTTPFetcher builds a fetcher from the crawler config.
func NewHTTPFetcher(cfg config.CrawlerConfig) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: cfg.FetchTimeout},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building request for %s: %v", apperrors.ErrFetch, url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", apperrors.ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: %s: status %d", apperrors.ErrFetch, url, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "html") {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: %s: content type %q is not html", apperrors.ErrFetch, url, ct)
	}

	var body io.Reader = resp.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", apperrors.ErrFetch, url, err)
	}
	return string(data), nil
}
