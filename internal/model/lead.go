// Package model defines the core types shared across the leadscout pipeline.
package model

import "strings"

// Listing is one candidate business scraped from a directory page, before
// enrichment.
type Listing struct {
	CompanyName     string `json:"company_name"`
	ProfileLink     string `json:"profile_link,omitempty"`
	ExternalWebsite string `json:"external_website,omitempty"`
	Industry        string `json:"industry,omitempty"`
	Location        string `json:"location,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	ContactPerson   string `json:"contact_person,omitempty"`
	SourcePageURL   string `json:"source_page_url"`
}

// Valid reports whether the listing carries a usable company name.
// Listings failing this check never leave the extractor.
func (l Listing) Valid() bool {
	return strings.TrimSpace(l.CompanyName) != ""
}

// EnrichmentStatus tracks the lifecycle of a lead through phase 2.
type EnrichmentStatus string

const (
	StatusPending   EnrichmentStatus = "pending"
	StatusCompleted EnrichmentStatus = "completed"
	StatusFailed    EnrichmentStatus = "failed"
)

// Lead is a listing after the enrichment attempt. A lead is created with
// StatusPending at the end of phase 1, mutated exactly once by the enricher,
// and never mutated afterward. The orchestrator owns the lead slice.
type Lead struct {
	Listing
	Status         EnrichmentStatus `json:"status"`
	ContactPageURL string           `json:"contact_page_url,omitempty"`
	Enriched       bool             `json:"enriched"`
}

// NewLead wraps a listing as a pending lead.
func NewLead(l Listing) Lead {
	return Lead{Listing: l, Status: StatusPending}
}

// Finalize sets the terminal status and recomputes the Enriched flag.
// Enriched is true iff email or phone is present after enrichment.
func (ld *Lead) Finalize(status EnrichmentStatus) {
	ld.Status = status
	ld.Enriched = ld.Email != "" || ld.Phone != ""
}
