package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/model"
)

// headingFallbackCap bounds how many standalone headings are promoted to
// listings when no container selector matches.
const headingFallbackCap = 50

// Built-in fallback selector lists, tried after the profile's own lists.
// Ordered roughly by how specific the class-name convention is.
var (
	genericContainers = []string{
		".listing",
		".search-result",
		".result-item",
		".company-card",
		".business-card",
		".directory-entry",
		".card",
		".result",
		".item",
		".company",
		".business",
		"li[class*=listing]",
		"div[class*=listing]",
		"div[class*=result]",
		"article",
	}

	genericNames = []string{
		".company-name",
		".business-name",
		".listing-title",
		".name",
		"h2 a",
		"h3 a",
		"h2",
		"h3",
		"a.title",
		".title",
	}

	genericProfileLinks = []string{
		"a.profile-link",
		".company-name a",
		".business-name a",
		"h2 a",
		"h3 a",
		"a[href*=profile]",
		"a[href*=company]",
	}

	genericWebsites = []string{
		"a.website",
		".website a",
		"a.external-link",
		"a[rel=nofollow][target=_blank]",
	}

	genericIndustries = []string{
		".industry",
		".category",
		".categories",
		".sector",
		".tags",
	}

	genericLocations = []string{
		".location",
		".address",
		".adr",
		".city",
		".locality",
		"[itemprop=address]",
	}

	genericEmails = []string{
		"a[href^='mailto:']",
		".email",
		"[itemprop=email]",
	}

	genericPhones = []string{
		"a[href^='tel:']",
		".phone",
		".telephone",
		".phone-number",
		"[itemprop=telephone]",
	}

	genericContacts = []string{
		".contact-person",
		".contact-name",
		".owner",
		".manager",
	}
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	// Loose scan: a run of 10+ digits and common separators. Candidates
	// still need at least 7 digits to count as a phone.
	phoneRe = regexp.MustCompile(`[+(]?[\d][\d\s\-().]{8,}\d`)
)

// Extractor turns directory-page markup into listings using a resolved
// selector profile.
type Extractor struct {
	profile SelectorProfile
}

// New creates an Extractor for the given profile.
func New(profile SelectorProfile) *Extractor {
	return &Extractor{profile: profile.withDefaults()}
}

// Profile returns the profile the extractor was built with.
func (e *Extractor) Profile() SelectorProfile { return e.profile }

// Listings extracts all candidate businesses from one page of markup.
// Returns model.ErrNoListings when neither the container cascade nor the
// heading fallback finds anything. Overlapping container selectors are not
// de-duplicated here; callers that want identity-based de-duplication apply
// Dedup on the collected batch.
func (e *Extractor) Listings(markup, sourcePageURL string) ([]model.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse markup")
	}

	sourceHost := hostOf(sourcePageURL)
	base, _ := url.Parse(sourcePageURL)

	containers := e.matchContainers(doc)
	if containers == nil {
		listings := headingFallback(doc, sourcePageURL)
		if len(listings) == 0 {
			return nil, eris.Wrapf(model.ErrNoListings, "extract: %s", sourcePageURL)
		}
		return listings, nil
	}

	var listings []model.Listing
	containers.Each(func(i int, sel *goquery.Selection) {
		l := e.extractOne(i, sel, sourcePageURL, sourceHost, base)
		if l.Valid() {
			listings = append(listings, l)
		}
	})

	if len(listings) == 0 {
		return nil, eris.Wrapf(model.ErrNoListings, "extract: %s", sourcePageURL)
	}
	return listings, nil
}

// matchContainers tries each container selector in order and returns the
// first selection with at least one element, or nil.
func (e *Extractor) matchContainers(doc *goquery.Document) *goquery.Selection {
	for _, cand := range append(append([]string{}, e.profile.Containers...), genericContainers...) {
		sel := doc.Find(cand)
		if sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// extractOne resolves every schema field for one matched container.
func (e *Extractor) extractOne(i int, sel *goquery.Selection, sourcePageURL, sourceHost string, base *url.URL) model.Listing {
	l := model.Listing{SourcePageURL: sourcePageURL}

	l.CompanyName = firstText(sel, e.profile.NameSelectors, genericNames)
	if strings.TrimSpace(l.CompanyName) == "" {
		// Placeholder names only exist on the container path: the block
		// matched a listing shape, so it is a business even if the name
		// selectors all missed.
		l.CompanyName = fmt.Sprintf("Company %d", i+1)
	}

	l.ProfileLink = resolveHref(firstHref(sel, e.profile.ProfileLink, genericProfileLinks), base)

	l.ExternalWebsite = firstHref(sel, e.profile.Website, genericWebsites)
	if !isAbsoluteHTTP(l.ExternalWebsite) {
		l.ExternalWebsite = ""
	}
	if l.ExternalWebsite == "" {
		l.ExternalWebsite = externalLinkFallback(sel, sourceHost)
	}

	l.Industry = firstText(sel, e.profile.Industry, genericIndustries)
	l.Location = firstText(sel, e.profile.Location, genericLocations)

	l.Email = stripScheme(firstHrefOrText(sel, genericEmails), "mailto:")
	l.Phone = stripScheme(firstHrefOrText(sel, genericPhones), "tel:")
	l.ContactPerson = firstText(sel, nil, genericContacts)

	// Regex scan of the container's full text only fills fields the
	// selector pass left empty.
	text := sel.Text()
	if l.Email == "" {
		l.Email = emailRe.FindString(text)
	}
	if l.Phone == "" {
		if m := phoneRe.FindString(text); digitCount(m) >= 7 {
			l.Phone = strings.TrimSpace(m)
		}
	}

	return l
}

// headingFallback scans heading elements as standalone company names. Only
// the first heading level that yields anything is used, capped at
// headingFallbackCap. Placeholder names never come from this path.
func headingFallback(doc *goquery.Document, sourcePageURL string) []model.Listing {
	for _, level := range []string{"h2", "h3", "h4"} {
		var listings []model.Listing
		doc.Find(level).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			name := strings.TrimSpace(sel.Text())
			if name == "" {
				return true
			}
			listings = append(listings, model.Listing{
				CompanyName:   name,
				SourcePageURL: sourcePageURL,
			})
			return len(listings) < headingFallbackCap
		})
		if len(listings) > 0 {
			return listings
		}
	}
	return nil
}

// externalLinkFallback returns the first absolute http(s) link inside the
// container whose host differs from the source page's host.
func externalLinkFallback(sel *goquery.Selection, sourceHost string) string {
	found := ""
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !isAbsoluteHTTP(href) {
			return true
		}
		if h := hostOf(href); h != "" && h != sourceHost {
			found = href
			return false
		}
		return true
	})
	return found
}

// firstText tries each selector in order (profile list, then generic list)
// and returns the first non-empty trimmed text.
func firstText(sel *goquery.Selection, profileList, genericList []string) string {
	for _, cand := range append(append([]string{}, profileList...), genericList...) {
		text := strings.TrimSpace(sel.Find(cand).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// firstHref tries each selector in order and returns the first non-empty
// href attribute.
func firstHref(sel *goquery.Selection, profileList, genericList []string) string {
	for _, cand := range append(append([]string{}, profileList...), genericList...) {
		if href, ok := sel.Find(cand).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
			return strings.TrimSpace(href)
		}
	}
	return ""
}

// firstHrefOrText prefers the href (mailto:/tel: links) and falls back to
// element text for plain-text contact markup.
func firstHrefOrText(sel *goquery.Selection, list []string) string {
	for _, cand := range list {
		el := sel.Find(cand).First()
		if el.Length() == 0 {
			continue
		}
		if href, ok := el.Attr("href"); ok && strings.TrimSpace(href) != "" {
			return strings.TrimSpace(href)
		}
		if text := strings.TrimSpace(el.Text()); text != "" {
			return text
		}
	}
	return ""
}

func stripScheme(s, scheme string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), scheme) {
		s = s[len(scheme):]
	}
	// mailto links often carry a subject query.
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func resolveHref(href string, base *url.URL) string {
	if href == "" {
		return ""
	}
	if isAbsoluteHTTP(href) || base == nil {
		return href
	}
	rel, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(rel).String()
}

func isAbsoluteHTTP(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

func digitCount(s string) int {
	n := 0
	for _, c := range s {
		if c >= '0' && c <= '9' {
			n++
		}
	}
	return n
}
