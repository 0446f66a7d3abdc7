package enrich

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contactInfo is what one page yields. Empty fields mean "not found here".
type contactInfo struct {
	Email  string
	Phone  string
	Person string
}

func (c contactInfo) hasContact() bool { return c.Email != "" || c.Phone != "" }

// fill copies fields from other into c where c is empty.
func (c *contactInfo) fill(other contactInfo) {
	if c.Email == "" {
		c.Email = other.Email
	}
	if c.Phone == "" {
		c.Phone = other.Phone
	}
	if c.Person == "" {
		c.Person = other.Person
	}
}

// Structured selectors tried before falling back to full-text regex scans.
var (
	emailSelectors = []string{
		"a[href^='mailto:']",
		".contact-email",
		".email",
		"[itemprop=email]",
		"[data-email]",
	}

	phoneSelectors = []string{
		"a[href^='tel:']",
		".contact-phone",
		".phone",
		".telephone",
		"[itemprop=telephone]",
		".contact-info",
	}

	personSelectors = []string{
		".contact-person",
		".contact-name",
		".team-member",
		".owner",
		".manager",
		".director",
		".ceo",
		".founder",
	}
)

var (
	emailRe       = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	mailtoRe      = regexp.MustCompile(`(?i)mailto:([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})`)
	strictEmailRe = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

	phoneCandidateRes = []*regexp.Regexp{
		regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{1,4}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,9}`),
		regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	}

	personRe = regexp.MustCompile(`^[A-Za-z .]+$`)

	phoneKeepRe = regexp.MustCompile(`[^0-9+\-()\s]`)
)

// genericEmailDenylist rejects addresses that are never a usable lead
// contact. Matched as case-insensitive substrings.
var genericEmailDenylist = []string{
	"noreply",
	"no-reply",
	"donotreply",
	"admin@",
	"test@",
	"example@",
	"@example.com",
	"sentry",
	".png",
	".jpg",
}

// extractContacts runs the structured-selector-then-regex strategy over one
// page of markup.
func extractContacts(markup string) (contactInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return contactInfo{}, err
	}

	var info contactInfo
	text := doc.Text()

	info.Email = extractEmail(doc, text)
	info.Phone = extractPhone(doc, text)
	info.Person = extractPerson(doc)
	return info, nil
}

func extractEmail(doc *goquery.Document, text string) string {
	for _, sel := range emailSelectors {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		cand := ""
		if href, ok := el.Attr("href"); ok && strings.HasPrefix(strings.ToLower(href), "mailto:") {
			cand = href[len("mailto:"):]
			if i := strings.IndexByte(cand, '?'); i >= 0 {
				cand = cand[:i]
			}
		} else {
			cand = el.Text()
		}
		if email, ok := validEmail(cand); ok {
			return email
		}
	}

	// Fall back to scanning the full page text: plain addresses first,
	// then mailto: occurrences in raw attribute text.
	for _, m := range emailRe.FindAllString(text, 20) {
		if email, ok := validEmail(m); ok {
			return email
		}
	}
	for _, m := range mailtoRe.FindAllStringSubmatch(text, 20) {
		if email, ok := validEmail(m[1]); ok {
			return email
		}
	}
	return ""
}

// validEmail checks the strict grammar, the length bound, and the generic
// denylist. Returns the trimmed address on success.
func validEmail(cand string) (string, bool) {
	cand = strings.TrimSpace(cand)
	if cand == "" || len(cand) >= 100 {
		return "", false
	}
	if !strictEmailRe.MatchString(cand) {
		return "", false
	}
	lower := strings.ToLower(cand)
	for _, bad := range genericEmailDenylist {
		if strings.Contains(lower, bad) {
			return "", false
		}
	}
	return cand, true
}

func extractPhone(doc *goquery.Document, text string) string {
	for _, sel := range phoneSelectors {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		cand := ""
		if href, ok := el.Attr("href"); ok && strings.HasPrefix(strings.ToLower(href), "tel:") {
			cand = href[len("tel:"):]
		} else {
			cand = el.Text()
		}
		if phone, ok := validPhone(cand); ok {
			return phone
		}
	}

	for _, re := range phoneCandidateRes {
		for _, m := range re.FindAllString(text, 20) {
			if phone, ok := validPhone(m); ok {
				return phone
			}
		}
	}
	return ""
}

// validPhone accepts a candidate whose digit-only form has between 7 and 15
// digits, returning it cleaned to digits, "+", "-", "(", ")" and spaces.
func validPhone(cand string) (string, bool) {
	digits := 0
	for _, c := range cand {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	if digits < 7 || digits > 15 {
		return "", false
	}
	cleaned := strings.TrimSpace(phoneKeepRe.ReplaceAllString(cand, ""))
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}

func extractPerson(doc *goquery.Document) string {
	for _, sel := range personSelectors {
		name := strings.TrimSpace(doc.Find(sel).First().Text())
		if validPerson(name) {
			return name
		}
	}
	return ""
}

// validPerson accepts names of length in (2,50) made of letters, spaces,
// and periods only.
func validPerson(name string) bool {
	if len(name) <= 2 || len(name) >= 50 {
		return false
	}
	return personRe.MatchString(name)
}
