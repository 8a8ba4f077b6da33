package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ImageClient downloads poster images. It implements pipeline.ImageFetcher.
type ImageClient struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewImageClient creates an image fetcher with a browser user agent; several
// sources refuse image requests from obvious bots
func NewImageClient() *ImageClient {
	return &ImageClient{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		userAgent:  defaultUserAgent,
		maxBytes:   10 << 20, // posters beyond 10MB are junk
	}
}

// FetchImage downloads the raw bytes at url
func (c *ImageClient) FetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating image request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for image", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("reading image body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image body")
	}

	return data, nil
}
