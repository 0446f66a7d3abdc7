// Package relay provides a client for reader-relay services (r.jina.ai
// compatible) that fetch a target URL server-side and return its markup.
// Relays route around sites that refuse direct requests.
package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the relay reader operations.
type Client interface {
	// Read fetches the target URL through the relay and returns its HTML.
	Read(ctx context.Context, targetURL string) (*ReadResult, error)
}

// ReadResult holds the relayed page content.
type ReadResult struct {
	URL        string
	HTML       string
	StatusCode int
}

// Option configures the relay client.
type Option func(*httpClient)

// WithBaseURL sets a custom relay base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// MaxBodyBytes caps how much relayed markup is read per page.
const MaxBodyBytes = 2 * 1024 * 1024

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a relay reader client. The API key is optional; relays
// that require one reject unauthenticated reads with 401.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://r.jina.ai",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the status should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes a request with exponential backoff on transient upstream
// failures. Returns the body and status code of the final attempt.
func (c *httpClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryReq := req.Clone(ctx)

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "relay: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("relay: status %d", resp.StatusCode)
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func (c *httpClient) Read(ctx context.Context, targetURL string) (*ReadResult, error) {
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, targetURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "relay: create request")
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	// Ask the relay for unconverted markup so the selector extractor can
	// run against real element structure.
	req.Header.Set("X-Return-Format", "html")

	body, statusCode, err := c.retryDo(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "relay: request failed")
	}

	if statusCode != http.StatusOK {
		return nil, eris.Errorf("relay: unexpected status %d", statusCode)
	}

	return &ReadResult{
		URL:        targetURL,
		HTML:       string(body),
		StatusCode: statusCode,
	}, nil
}
