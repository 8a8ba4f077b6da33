package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RenderClient fetches JavaScript-rendered pages through the Jina reader
// proxy, asking for raw HTML back. It covers the sources whose listing grids
// only exist after client-side rendering, without this process owning a
// browser.
type RenderClient struct {
	httpClient  *http.Client
	baseURL     string
	userAgents  []string
	retryConfig RetryConfig
}

// RetryConfig defines retry behavior for failed render requests
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NewRenderClient creates a render client with browser-like TLS and header
// behavior
func NewRenderClient() *RenderClient {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
		},
		IdleConnTimeout: 90 * time.Second,
	}

	return &RenderClient{
		httpClient: &http.Client{
			Timeout:   45 * time.Second,
			Transport: transport,
		},
		baseURL: "https://r.jina.ai",
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		retryConfig: RetryConfig{
			MaxRetries:    3,
			InitialDelay:  1 * time.Second,
			MaxDelay:      10 * time.Second,
			BackoffFactor: 2.0,
		},
	}
}

// RenderHTML fetches the rendered DOM of url and returns it as an HTML
// reader. waitSelector is the readiness condition for the rendered page;
// timeout bounds the render on the proxy side.
func (r *RenderClient) RenderHTML(ctx context.Context, url, waitSelector string, timeout time.Duration) (io.Reader, error) {
	if url == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}

	var lastErr error

	for attempt := 0; attempt <= r.retryConfig.MaxRetries; attempt++ {
		html, err := r.attemptRender(ctx, url, waitSelector, timeout, attempt)
		if err == nil {
			return strings.NewReader(html), nil
		}

		lastErr = err

		// Client errors will not improve with retries
		if strings.Contains(err.Error(), "status 4") {
			break
		}

		if attempt < r.retryConfig.MaxRetries {
			delay := r.calculateDelay(attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, fmt.Errorf("render failed after %d attempts: %w", r.retryConfig.MaxRetries+1, lastErr)
}

// attemptRender performs a single render attempt
func (r *RenderClient) attemptRender(ctx context.Context, url, waitSelector string, timeout time.Duration, attempt int) (string, error) {
	renderURL := fmt.Sprintf("%s/%s", r.baseURL, url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, renderURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	// Rotate user agent on retries
	req.Header.Set("User-Agent", r.userAgents[attempt%len(r.userAgents)])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("X-Return-Format", "html")
	if waitSelector != "" {
		req.Header.Set("X-Wait-For-Selector", waitSelector)
	}
	if timeout > 0 {
		req.Header.Set("X-Timeout", strconv.Itoa(int(timeout.Seconds())))
	}
	if attempt > 0 {
		req.Header.Set("Cache-Control", "no-cache")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("render service returned status %d: %s", resp.StatusCode, string(body))
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read render response: %w", err)
	}

	html := string(content)
	if len(html) < 100 {
		return "", fmt.Errorf("rendered content too short (%d chars), might be an error page", len(html))
	}

	return html, nil
}

// calculateDelay calculates exponential backoff delay with jitter
func (r *RenderClient) calculateDelay(attempt int) time.Duration {
	delay := float64(r.retryConfig.InitialDelay)*
		(r.retryConfig.BackoffFactor*float64(attempt)) +
		(rand.Float64() * 0.1 * float64(r.retryConfig.InitialDelay))

	if delay > float64(r.retryConfig.MaxDelay) {
		delay = float64(r.retryConfig.MaxDelay)
	}
	if delay < float64(r.retryConfig.InitialDelay) {
		delay = float64(r.retryConfig.InitialDelay)
	}

	return time.Duration(delay)
}
