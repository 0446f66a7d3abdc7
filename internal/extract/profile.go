// Package extract locates listing blocks in directory-page markup and pulls
// a fixed schema of fields out of each one using cascading selector lists.
package extract

import (
	"net/url"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SelectorProfile bundles the ordered selector lists and pagination style
// for one directory site family. Profiles are immutable and resolved once
// per run from the base URL. Selector lists are data, not code: new site
// families are additive.
type SelectorProfile struct {
	Name  string   `yaml:"name"`
	Hosts []string `yaml:"hosts"`

	Containers    []string `yaml:"containers"`
	NameSelectors []string `yaml:"name_selectors"`
	ProfileLink   []string `yaml:"profile_link"`
	Website       []string `yaml:"website"`
	Industry      []string `yaml:"industry"`
	Location      []string `yaml:"location"`

	// PaginationParam overrides the parameter inferred from the base URL
	// ("start", "page", or "offset"). Empty means infer.
	PaginationParam string `yaml:"pagination_param"`
	ItemsPerPage    int    `yaml:"items_per_page"`

	// ContactPaths are probed during enrichment when a company's main page
	// yields neither email nor phone.
	ContactPaths []string `yaml:"contact_paths"`
}

// DefaultContactPaths is the probe order used when a profile does not
// override it.
var DefaultContactPaths = []string{
	"/contact",
	"/contact-us",
	"/contactus",
	"/about/contact",
	"/about-us",
	"/about",
	"/support",
	"/get-in-touch",
}

// builtinProfiles covers the directory families we scrape most. The generic
// profile carries no selectors of its own; the extractor's built-in fallback
// lists do the work.
var builtinProfiles = []SelectorProfile{
	{
		Name:  "yellowpages",
		Hosts: []string{"yellowpages.com", "www.yellowpages.com"},
		Containers: []string{
			".search-results .result",
			".organic .srp-listing",
			".v-card",
		},
		NameSelectors:   []string{".business-name span", ".business-name", "h2 a"},
		ProfileLink:     []string{"a.business-name", ".info h2 a"},
		Website:         []string{"a.track-visit-website", ".links a[target=_blank]"},
		Industry:        []string{".categories a", ".categories"},
		Location:        []string{".adr", ".street-address", ".locality"},
		PaginationParam: "page",
		ItemsPerPage:    30,
	},
	{
		Name:  "europages",
		Hosts: []string{"europages.com", "www.europages.com", "europages.co.uk"},
		Containers: []string{
			"[data-test=company-card]",
			".company-card",
			"article.card",
		},
		NameSelectors:   []string{"[data-test=company-name]", "h3 a", "h3"},
		ProfileLink:     []string{"a[data-test=company-link]", "h3 a"},
		Website:         []string{"a[data-test=website-link]"},
		Industry:        []string{".activity", "[data-test=activities]"},
		Location:        []string{".country", "[data-test=company-city]"},
		PaginationParam: "page",
		ItemsPerPage:    20,
	},
	{
		Name:  "kompass",
		Hosts: []string{"kompass.com", "us.kompass.com", "www.kompass.com"},
		Containers: []string{
			".prod_list .product",
			"div.company-list-item",
		},
		NameSelectors:   []string{"h2.title a", "h2.title"},
		ProfileLink:     []string{"h2.title a"},
		Website:         []string{"a.companyWebsiteLink"},
		Industry:        []string{".activity-label"},
		Location:        []string{".companie-location", ".address"},
		PaginationParam: "start",
		ItemsPerPage:    25,
	},
	{
		Name:         "generic",
		ItemsPerPage: 20,
	},
}

// Registry resolves selector profiles by directory host.
type Registry struct {
	profiles []SelectorProfile
}

// NewRegistry creates a registry seeded with the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{}
	r.profiles = append(r.profiles, builtinProfiles...)
	return r
}

// Register adds custom profiles. Custom profiles take precedence over
// built-ins for the same host because Resolve scans newest-first.
func (r *Registry) Register(profiles ...SelectorProfile) {
	r.profiles = append(r.profiles, profiles...)
}

// Profiles returns all registered profiles.
func (r *Registry) Profiles() []SelectorProfile {
	out := make([]SelectorProfile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// ByName returns the named profile with defaults applied. Custom profiles
// shadow built-ins of the same name.
func (r *Registry) ByName(name string) (SelectorProfile, bool) {
	for i := len(r.profiles) - 1; i >= 0; i-- {
		if r.profiles[i].Name == name {
			return r.profiles[i].withDefaults(), true
		}
	}
	return SelectorProfile{}, false
}

// Resolve picks the profile for a directory base URL by host match, falling
// back to the generic profile.
func (r *Registry) Resolve(baseURL string) SelectorProfile {
	host := ""
	if u, err := url.Parse(baseURL); err == nil {
		host = strings.ToLower(u.Host)
	}

	for i := len(r.profiles) - 1; i >= 0; i-- {
		p := r.profiles[i]
		for _, h := range p.Hosts {
			if host == strings.ToLower(h) {
				return p.withDefaults()
			}
		}
	}

	for _, p := range r.profiles {
		if p.Name == "generic" {
			return p.withDefaults()
		}
	}
	return SelectorProfile{Name: "generic", ItemsPerPage: 20, ContactPaths: DefaultContactPaths}
}

func (p SelectorProfile) withDefaults() SelectorProfile {
	if p.ItemsPerPage <= 0 {
		p.ItemsPerPage = 20
	}
	if len(p.ContactPaths) == 0 {
		p.ContactPaths = DefaultContactPaths
	}
	return p
}

// profileFile is the on-disk shape of a custom profile bundle.
type profileFile struct {
	Profiles []SelectorProfile `yaml:"profiles"`
}

// LoadProfiles reads additional selector profiles from a YAML file.
func LoadProfiles(path string) ([]SelectorProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "extract: read profiles file")
	}

	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "extract: parse profiles file")
	}

	for i, p := range f.Profiles {
		if p.Name == "" {
			return nil, eris.Errorf("extract: profile %d has no name", i)
		}
	}
	return f.Profiles, nil
}
