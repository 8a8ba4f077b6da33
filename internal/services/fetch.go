package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"yovibe-events-scraper/internal/pipeline"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DocumentClient implements the pipeline's DocumentFetcher. Static pages go
// straight through net/http; sources that need a rendered DOM are delegated
// to the render client. Either way the pipeline sees one parsed document.
type DocumentClient struct {
	httpClient *http.Client
	renderer   *RenderClient
	userAgent  string
}

// NewDocumentClient creates a document fetcher with a shared render client
func NewDocumentClient() *DocumentClient {
	return &DocumentClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		renderer:   NewRenderClient(),
		userAgent:  defaultUserAgent,
	}
}

// Fetch retrieves and parses the document at url, choosing the fetch
// strategy from the options
func (c *DocumentClient) Fetch(ctx context.Context, url string, opts pipeline.FetchOptions) (*goquery.Document, error) {
	if opts.Render {
		html, err := c.renderer.RenderHTML(ctx, url, opts.WaitSelector, opts.Timeout)
		if err != nil {
			return nil, fmt.Errorf("rendered fetch failed: %w", err)
		}
		doc, err := goquery.NewDocumentFromReader(html)
		if err != nil {
			return nil, fmt.Errorf("parsing rendered HTML: %w", err)
		}
		return doc, nil
	}

	return c.fetchStatic(ctx, url, opts.Timeout)
}

func (c *DocumentClient) fetchStatic(ctx context.Context, url string, timeout time.Duration) (*goquery.Document, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	return doc, nil
}
