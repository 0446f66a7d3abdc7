package model

import "time"

// Phase identifies the stage a run is currently in.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseListing    Phase = "listing"
	PhaseEnrichment Phase = "enrichment"
	PhaseDone       Phase = "done"
	PhaseStopped    Phase = "stopped"
)

// Progress is a point-in-time snapshot of a run, consumed by an external
// display layer.
type Progress struct {
	RunID         string  `json:"run_id"`
	Phase         Phase   `json:"phase"`
	Paused        bool    `json:"paused"`
	CurrentPage   int     `json:"current_page"`
	TotalPages    int     `json:"total_pages"`
	LeadsFound    int     `json:"leads_found"`
	LeadsEnriched int     `json:"leads_enriched"`
	Errored       int     `json:"errored"`
	Percent       float64 `json:"percent"`
	Status        string  `json:"status"`
}

// RunStats holds the aggregate counts reported at run termination.
type RunStats struct {
	RunID          string        `json:"run_id"`
	PagesOK        int           `json:"pages_ok"`
	PagesFailed    int           `json:"pages_failed"`
	LeadsFound     int           `json:"leads_found"`
	LeadsWithEmail int           `json:"leads_with_email"`
	LeadsWithPhone int           `json:"leads_with_phone"`
	LeadsEnriched  int           `json:"leads_enriched"`
	EnrichmentRate float64       `json:"enrichment_rate"`
	Stopped        bool          `json:"stopped"`
	Duration       time.Duration `json:"duration"`
	Errors         []string      `json:"errors,omitempty"`
}

// Rate computes the enrichment rate for n enriched leads out of total.
func Rate(enriched, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(enriched) / float64(total)
}
