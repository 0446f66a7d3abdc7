// Package demo generates deterministic synthetic markup so the pipeline can
// be exercised without live network access. It is wired into the fetch chain
// only when explicitly enabled; production chains never fall back to it.
package demo

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"strconv"
	"strings"

	"github.com/sells-group/leadscout/internal/model"
)

// companyStems seed the synthetic company names. Names are stable per URL
// so repeated fetches of the same page agree.
var companyStems = []string{
	"Meridian", "Bluepeak", "Harborline", "Stonebridge", "Clearfield",
	"Northgate", "Ironwood", "Lakeshore", "Summitview", "Redcliff",
}

var industries = []string{
	"Manufacturing", "Logistics", "Consulting", "Construction",
	"Wholesale", "Engineering", "Healthcare", "Software",
}

var cities = []string{
	"Springfield, IL", "Columbus, OH", "Austin, TX", "Tacoma, WA",
	"Knoxville, TN", "Boise, ID", "Madison, WI", "Tulsa, OK",
}

// Source serves synthetic directory and company pages. URLs on the
// configured directory host get a listing page; every other host gets a
// company site whose contact details are derived from a hash of the host.
type Source struct {
	directoryHost   string
	listingsPerPage int
	totalListings   int
}

// NewSource creates a demo source for the given directory base URL.
func NewSource(directoryBaseURL string, listingsPerPage int) *Source {
	host := ""
	if u, err := url.Parse(directoryBaseURL); err == nil {
		host = u.Host
	}
	if listingsPerPage <= 0 {
		listingsPerPage = 20
	}
	return &Source{directoryHost: host, listingsPerPage: listingsPerPage}
}

// Limit caps the directory at n listings total, so the final page comes up
// short the way real directories do. Zero means unbounded.
func (s *Source) Limit(n int) *Source {
	s.totalListings = n
	return s
}

func (s *Source) Name() string           { return "demo" }
func (s *Source) Supports(_ string) bool { return true }

// Fetch renders synthetic markup for the URL. Never fails.
func (s *Source) Fetch(_ context.Context, targetURL string) (*model.Page, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, err
	}

	var html string
	switch {
	case u.Host == s.directoryHost:
		html = s.directoryPage(u)
	case isContactPath(u.Path):
		html = companyContactPage(u.Host)
	default:
		html = companyHomePage(u.Host)
	}

	return &model.Page{
		URL:        targetURL,
		HTML:       html,
		StatusCode: 200,
		Source:     s.Name(),
		Synthetic:  true,
	}, nil
}

func isContactPath(p string) bool {
	p = strings.TrimSuffix(strings.ToLower(p), "/")
	return strings.Contains(p, "contact")
}

// directoryPage renders a listing page whose offset is read from the
// pagination parameter, mirroring how real directories paginate.
func (s *Source) directoryPage(u *url.URL) string {
	offset := 0
	q := u.Query()
	for _, param := range []string{"start", "offset"} {
		if v := q.Get(param); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				offset = n
			}
		}
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = (n - 1) * s.listingsPerPage
		}
	}

	count := s.listingsPerPage
	if s.totalListings > 0 {
		remaining := s.totalListings - offset
		if remaining < 0 {
			remaining = 0
		}
		if remaining < count {
			count = remaining
		}
	}

	var b strings.Builder
	b.WriteString("<html><body><div class=\"results\">\n")
	for i := 0; i < count; i++ {
		n := offset + i + 1
		name := fmt.Sprintf("%s %s Co %d", companyStems[n%len(companyStems)], industries[n%len(industries)], n)
		site := fmt.Sprintf("https://company-%d.demo.test", n)
		b.WriteString("<div class=\"listing\">\n")
		fmt.Fprintf(&b, "  <h3 class=\"company-name\"><a href=\"/profile/%d\">%s</a></h3>\n", n, name)
		fmt.Fprintf(&b, "  <span class=\"industry\">%s</span>\n", industries[n%len(industries)])
		fmt.Fprintf(&b, "  <span class=\"location\">%s</span>\n", cities[n%len(cities)])
		// Every third listing keeps its website off the directory page so
		// the no-website enrichment rule gets exercised.
		if n%3 != 0 {
			fmt.Fprintf(&b, "  <a class=\"website\" href=\"%s\">Visit website</a>\n", site)
		}
		if n%5 == 0 {
			fmt.Fprintf(&b, "  <span class=\"phone\">(555) 01%02d-%04d</span>\n", n%100, (n*37)%10000)
		}
		b.WriteString("</div>\n")
	}
	b.WriteString("</div></body></html>")
	return b.String()
}

// companyHomePage renders a synthetic company site. The host hash decides
// whether contact details live on the home page, the contact page, or
// nowhere.
func companyHomePage(host string) string {
	h := hostHash(host)
	var contact string
	switch h % 3 {
	case 0:
		contact = fmt.Sprintf("<p>Reach us at <a href=\"mailto:office@%s\">office@%s</a></p>", host, host)
	case 1:
		contact = fmt.Sprintf("<p>Call us: +1 555 %03d %04d</p>", h%900+100, (h*13)%10000)
	default:
		contact = "<p>See our <a href=\"/contact\">contact page</a>.</p>"
	}
	return fmt.Sprintf(`<html><head><title>%s</title></head><body>
<h1>Welcome to %s</h1>
<p>We deliver dependable services to clients nationwide. Our team has been
serving the community for over a decade with a focus on quality.</p>
%s
</body></html>`, host, host, contact)
}

// companyContactPage always carries a phone number so probing the contact
// path pays off for hosts whose home page has nothing.
func companyContactPage(host string) string {
	h := hostHash(host)
	return fmt.Sprintf(`<html><body>
<h1>Contact %s</h1>
<p>Our office is open Monday to Friday, nine to five.</p>
<div class="contact-info">Phone: (555) %03d-%04d</div>
<div class="team-member">Jordan Avery</div>
</body></html>`, host, h%900+100, (h*7)%10000)
}

func hostHash(host string) int {
	f := fnv.New32a()
	_, _ = f.Write([]byte(host))
	return int(f.Sum32() & 0x7fffffff)
}
