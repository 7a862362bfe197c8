// Package fetch downloads the per-segment status pages and pulls the per
// camera fields out of them.
package fetch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gmn-tools/rmsmonitor/internal/config"
	"github.com/go-resty/resty/v2"
)

// Page is one downloaded status page.
type Page struct {
	URL        string
	StatusCode int
	Body       string
}

// OK reports whether the page was served with status 200.
func (p *Page) OK() bool {
	return p != nil && p.StatusCode == http.StatusOK
}

// PageGetter downloads a page. Non-200 responses are returned as pages, only
// transport failures are errors.
type PageGetter interface {
	Get(ctx context.Context, url string) (*Page, error)
}

// PageError describes why a page can't be used for extraction.
type PageError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *PageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("GET %s failed: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("GET %s returned HTTP %d", e.URL, e.StatusCode)
}

func (e *PageError) Unwrap() error {
	return e.Cause
}

// NotFound reports whether the server answered 404.
func (e *PageError) NotFound() bool {
	return e.Cause == nil && e.StatusCode == http.StatusNotFound
}

// PageClient is a PageGetter backed by resty.
type PageClient struct {
	HTTP *resty.Client
}

// NewPageClient creates a client using the timeout and user agent from src.
// Retries stay disabled; a failed page just leaves its cameras empty.
func NewPageClient(src config.Sources) *PageClient {
	r := resty.New()
	r.SetHeader("Accept", "text/html")
	if src.UserAgent != "" {
		r.SetHeader("User-Agent", src.UserAgent)
	}
	if src.Timeout > 0 {
		r.SetTimeout(src.Timeout)
	}

	return &PageClient{HTTP: r}
}

// Get downloads url.
func (c *PageClient) Get(ctx context.Context, url string) (*Page, error) {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, &PageError{URL: url, Cause: err}
	}

	return &Page{
		URL:        url,
		StatusCode: resp.StatusCode(),
		Body:       resp.String(),
	}, nil
}
