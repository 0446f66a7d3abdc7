// Package enrich visits a company's own website (and its likely contact
// sub-pages) to find email, phone, and a contact person for a listing.
package enrich

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/model"
)

// PageFetcher is the slice of the fetch chain the enricher needs.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*model.Page, error)
}

// Enricher deep-crawls external company sites for contact details.
type Enricher struct {
	fetcher      PageFetcher
	contactPaths []string
}

// New creates an Enricher. contactPaths override the probe order; nil uses
// the default list.
func New(fetcher PageFetcher, contactPaths []string) *Enricher {
	if len(contactPaths) == 0 {
		contactPaths = extract.DefaultContactPaths
	}
	return &Enricher{fetcher: fetcher, contactPaths: contactPaths}
}

// Enrich visits the listing's external website and merges found contact
// details into a terminal lead. The lead is mutated exactly once, here.
// contactPaths is the probe order for this listing, usually the resolved
// selector profile's; empty falls back to the enricher's configured list.
//
// Status rules: completed when the fetch+parse sequence ran to the end,
// whether or not anything was found; failed only on a missing external
// website or a fault fetching/parsing the main page. Faults on individual
// contact-path probes are swallowed and treated as "no data from this path".
func (e *Enricher) Enrich(ctx context.Context, listing model.Listing, contactPaths []string) model.Lead {
	if len(contactPaths) == 0 {
		contactPaths = e.contactPaths
	}
	lead := model.NewLead(listing)

	if listing.ExternalWebsite == "" {
		lead.Finalize(model.StatusFailed)
		return lead
	}

	page, err := e.fetcher.Fetch(ctx, listing.ExternalWebsite)
	if err != nil {
		zap.L().Debug("enrich: site fetch failed",
			zap.String("company", listing.CompanyName),
			zap.String("site", listing.ExternalWebsite),
			zap.Error(err),
		)
		lead.Finalize(model.StatusFailed)
		return lead
	}

	found, err := extractContacts(page.HTML)
	if err != nil {
		lead.Finalize(model.StatusFailed)
		return lead
	}

	if !found.hasContact() {
		if probed, probeURL := e.probeContactPages(ctx, listing.ExternalWebsite, contactPaths); probed != nil {
			found.fill(*probed)
			lead.ContactPageURL = probeURL
		}
	}

	// Listing-page contact data takes precedence over site-page data:
	// merge never overwrites fields populated during phase 1.
	if lead.Email == "" {
		lead.Email = found.Email
	}
	if lead.Phone == "" {
		lead.Phone = found.Phone
	}
	if lead.ContactPerson == "" {
		lead.ContactPerson = found.Person
	}

	lead.Finalize(model.StatusCompleted)
	return lead
}

// probeContactPages tries the contact-path suffixes against the site's
// origin, stopping at the first path that yields email or phone.
func (e *Enricher) probeContactPages(ctx context.Context, site string, contactPaths []string) (*contactInfo, string) {
	origin := originOf(site)
	if origin == "" {
		return nil, ""
	}

	for _, path := range contactPaths {
		if ctx.Err() != nil {
			return nil, ""
		}
		pageURL := origin + path

		page, err := e.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			continue
		}
		info, err := extractContacts(page.HTML)
		if err != nil {
			continue
		}
		if info.hasContact() {
			zap.L().Debug("enrich: contact page hit",
				zap.String("url", pageURL),
			)
			return &info, pageURL
		}
	}
	return nil, ""
}

// originOf reduces a URL to scheme://host.
func originOf(raw string) string {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
