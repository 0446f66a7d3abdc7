package fetch

import (
	"context"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/resilience"
)

// browserUA is sent with every direct request. Directory sites commonly
// refuse requests without a browser identification string.
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// maxDirectBody caps how much markup is read per page.
const maxDirectBody = 2 * 1024 * 1024

// DirectSource fetches HTML via net/http. Free, no relay hops. Falls
// through to the relay source when blocked or refused.
type DirectSource struct {
	client *http.Client
	retry  resilience.RetryConfig
}

// DirectOption configures a DirectSource.
type DirectOption func(*DirectSource)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) DirectOption {
	return func(s *DirectSource) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithRetry overrides the retry configuration.
func WithRetry(cfg resilience.RetryConfig) DirectOption {
	return func(s *DirectSource) {
		s.retry = cfg
	}
}

// NewDirectSource creates a DirectSource with sensible timeouts.
func NewDirectSource(opts ...DirectOption) *DirectSource {
	s := &DirectSource{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		retry: resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (d *DirectSource) Name() string           { return "direct_http" }
func (d *DirectSource) Supports(_ string) bool { return true }

// Fetch performs a GET with a fixed browser header set, detects anti-bot
// blocks, and decodes the body to UTF-8.
func (d *DirectSource) Fetch(ctx context.Context, targetURL string) (*model.Page, error) {
	return resilience.DoVal(ctx, d.retry, func(ctx context.Context) (*model.Page, error) {
		return d.fetchOnce(ctx, targetURL)
	})
}

func (d *DirectSource) fetchOnce(ctx context.Context, targetURL string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "direct_http: create request")
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "direct_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDirectBody))
	if err != nil {
		return nil, eris.Wrap(err, "direct_http: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("direct_http: blocked (%s)", blockType)
	}

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(
			eris.Errorf("direct_http: status %d", resp.StatusCode), resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("direct_http: status %d", resp.StatusCode)
	}

	html := decodeCharset(body, resp.Header.Get("Content-Type"))

	return &model.Page{
		URL:        targetURL,
		HTML:       html,
		StatusCode: resp.StatusCode,
		Source:     d.Name(),
	}, nil
}

// decodeCharset converts a response body to UTF-8 using the charset from
// the Content-Type header. Unknown or missing charsets pass through as-is.
func decodeCharset(body []byte, contentType string) string {
	if contentType == "" {
		return string(body)
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(body)
	}
	cs := strings.ToLower(params["charset"])
	if cs == "" || cs == "utf-8" || cs == "utf8" {
		return string(body)
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
