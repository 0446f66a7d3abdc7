package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/leadscout/internal/model"
)

// legalSuffixes lists common legal entity suffixes stripped during name
// normalization.
var legalSuffixes = []string{
	" LLC", " L.L.C.", " L.L.C",
	" INC", " INC.", " INCORPORATED",
	" CORP", " CORP.", " CORPORATION",
	" LTD", " LTD.", " LIMITED",
	" LLP", " L.L.P.",
	" CO", " CO.",
	" PLC", " P.L.C.",
	" GMBH", " S.A.", " S.R.L.",
}

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// NormalizeCompanyName standardizes a company name for identity matching:
// trim, uppercase, strip one legal suffix, drop punctuation, collapse
// whitespace.
func NormalizeCompanyName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = strings.ToUpper(name)

	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}

	name = strings.NewReplacer(
		",", "",
		".", "",
		"'", "",
		"\"", "",
		"&", "AND",
		"-", " ",
	).Replace(name)

	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// Dedup removes listings that share a normalized company name and source
// page, keeping the first occurrence. The extractor itself never
// de-duplicates (overlapping container selectors pass through); this is an
// opt-in applied by the orchestrator on the collected batch.
func Dedup(listings []model.Listing) []model.Listing {
	seen := make(map[string]bool, len(listings))
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		key := NormalizeCompanyName(l.CompanyName) + "|" + l.SourcePageURL
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}
