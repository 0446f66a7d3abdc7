package fetch

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
)

// Fetcher tries retrieval sources in priority order, returning the first
// usable page. When every source is exhausted it returns
// model.ErrFetchFailed; it is the orchestrator's decision how to recover.
// The offline demo source, when enabled, is just the last chain member,
// never a silent substitute for a real error.
type Fetcher struct {
	sources []Source
}

// NewFetcher creates a Fetcher over the given sources. Sources are tried
// in the order given.
func NewFetcher(sources ...Source) *Fetcher {
	return &Fetcher{sources: sources}
}

// Sources returns the names of the configured sources in chain order.
func (f *Fetcher) Sources() []string {
	names := make([]string, 0, len(f.sources))
	for _, s := range f.sources {
		names = append(names, s.Name())
	}
	return names
}

// Fetch retrieves markup for a URL. Success is a non-error response whose
// payload is at least MinContentLen bytes; shorter payloads fall through to
// the next source. No caching across calls.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*model.Page, error) {
	var lastErr error
	for _, s := range f.sources {
		if !s.Supports(url) {
			continue
		}
		page, err := s.Fetch(ctx, url)
		if err != nil {
			zap.L().Debug("fetch: source failed, trying next",
				zap.String("source", s.Name()),
				zap.String("url", url),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		if page == nil || len(strings.TrimSpace(page.HTML)) < MinContentLen {
			zap.L().Debug("fetch: source returned empty payload, trying next",
				zap.String("source", s.Name()),
				zap.String("url", url),
			)
			lastErr = eris.Wrapf(model.ErrEmptyPage, "fetch: %s returned empty payload", s.Name())
			continue
		}
		return page, nil
	}

	if lastErr != nil {
		// Both the sentinel and the concrete cause stay in the chain, so
		// callers can match either with errors.Is.
		return nil, fmt.Errorf("fetch: %s: %w: %w", url, model.ErrFetchFailed, lastErr)
	}
	return nil, eris.Wrapf(model.ErrFetchFailed, "fetch: no source supports %s", url)
}
