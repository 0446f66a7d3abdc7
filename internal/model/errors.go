package model

import "github.com/rotisserie/eris"

// Pipeline error taxonomy. All of these are recovered inside the
// orchestrator loop: failed pages and failed leads are counted and logged,
// never fatal to the run.
var (
	// ErrFetchFailed means every retrieval source was exhausted for a URL.
	ErrFetchFailed = eris.New("fetch failed: all sources exhausted")

	// ErrEmptyPage means the retrieved content was below the minimum
	// usable length.
	ErrEmptyPage = eris.New("empty page")

	// ErrNoListings means the container cascade and the heading fallback
	// both produced zero listings.
	ErrNoListings = eris.New("no listings found")

	// ErrEnrichmentFailed means a lead had no external website or the
	// enrichment fetch/parse sequence faulted.
	ErrEnrichmentFailed = eris.New("enrichment failed")
)
