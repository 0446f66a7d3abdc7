package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/demo"
	"github.com/sells-group/leadscout/internal/enrich"
	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/fetch"
	"github.com/sells-group/leadscout/internal/pipeline"
	"github.com/sells-group/leadscout/internal/resilience"
	"github.com/sells-group/leadscout/pkg/relay"
)

// loadRegistry builds the selector profile registry, merging any
// user-supplied profile file over the built-ins.
func loadRegistry() (*extract.Registry, error) {
	reg := extract.NewRegistry()
	if cfg.Profiles.Path != "" {
		profiles, err := extract.LoadProfiles(cfg.Profiles.Path)
		if err != nil {
			return nil, err
		}
		reg.Register(profiles...)
		zap.L().Info("custom profiles loaded",
			zap.String("path", cfg.Profiles.Path),
			zap.Int("count", len(profiles)))
	}
	return reg, nil
}

// buildRunner assembles the source chain, enricher, and runner for a
// run against baseURL. In demo mode the chain is the synthetic source
// alone, so nothing touches the network.
func buildRunner(baseURL string, demoMode bool) *pipeline.Runner {
	var sources []fetch.Source
	if demoMode || cfg.Demo.Enabled {
		sources = append(sources, demo.NewSource(baseURL, cfg.Demo.ListingsPerPage))
	} else {
		retry := resilience.DefaultRetryConfig()
		if cfg.Fetch.MaxRetries > 0 {
			retry.MaxAttempts = cfg.Fetch.MaxRetries
		}
		sources = append(sources, fetch.NewDirectSource(
			fetch.WithTimeout(time.Duration(cfg.Fetch.TimeoutSecs)*time.Second),
			fetch.WithRetry(retry),
		))
		if cfg.Relay.Key != "" {
			client := relay.NewClient(cfg.Relay.Key, relay.WithBaseURL(cfg.Relay.BaseURL))
			sources = append(sources, fetch.NewRelaySource(client))
		}
	}
	fetcher := fetch.NewFetcher(sources...)
	zap.L().Info("source chain assembled", zap.Strings("sources", fetcher.Sources()))

	// Contact paths come from the resolved profile on each job; the nil
	// here is only the fallback probe order.
	enricher := enrich.New(fetcher, nil)

	return pipeline.NewRunner(fetcher, enricher, pipeline.Config{
		PageDelay:    time.Duration(cfg.Pipeline.PageDelayMS) * time.Millisecond,
		SiteDelay:    time.Duration(cfg.Pipeline.SiteDelayMS) * time.Millisecond,
		BackoffEvery: cfg.Pipeline.BackoffEvery,
		BackoffDelay: time.Duration(cfg.Pipeline.BackoffDelayMS) * time.Millisecond,
		BatchSize:    cfg.Pipeline.BatchSize,
		Workers:      cfg.Pipeline.Workers,
	})
}
