package extract

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
)

const sourceURL = "https://dir.example.com/companies?page=1"

func generic() SelectorProfile {
	return SelectorProfile{Name: "generic"}
}

func TestListings_ContainerPath(t *testing.T) {
	markup := `<html><body>
		<div class="listing">
			<h3><a href="/profile/1">Acme Widgets LLC</a></h3>
			<span class="industry">Manufacturing</span>
			<span class="location">Austin, TX</span>
			<a class="website" href="https://acmewidgets.com">Website</a>
		</div>
		<div class="listing">
			<h3><a href="/profile/2">Globex Corp</a></h3>
			<span class="industry">Logistics</span>
		</div>
	</body></html>`

	got, err := New(generic()).Listings(markup, sourceURL)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Acme Widgets LLC", got[0].CompanyName)
	assert.Equal(t, "https://dir.example.com/profile/1", got[0].ProfileLink)
	assert.Equal(t, "https://acmewidgets.com", got[0].ExternalWebsite)
	assert.Equal(t, "Manufacturing", got[0].Industry)
	assert.Equal(t, "Austin, TX", got[0].Location)
	assert.Equal(t, sourceURL, got[0].SourcePageURL)

	assert.Equal(t, "Globex Corp", got[1].CompanyName)
	assert.Empty(t, got[1].ExternalWebsite)
}

func TestListings_ProfileSelectorsBeforeGeneric(t *testing.T) {
	profile := SelectorProfile{
		Name:          "custom",
		Containers:    []string{".biz-row"},
		NameSelectors: []string{".biz-title"},
		Website:       []string{"a.site"},
	}
	markup := `<div class="biz-row">
		<span class="biz-title">Initech</span>
		<h3>Wrong Name</h3>
		<a class="site" href="https://initech.example">site</a>
	</div>`

	got, err := New(profile).Listings(markup, sourceURL)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Initech", got[0].CompanyName)
	assert.Equal(t, "https://initech.example", got[0].ExternalWebsite)
}

func TestListings_PlaceholderNameOnContainerPath(t *testing.T) {
	markup := `<div class="listing"><p>no name markup at all</p></div>
		<div class="listing"><h3>Named Co</h3></div>`

	got, err := New(generic()).Listings(markup, sourceURL)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Company 1", got[0].CompanyName)
	assert.Equal(t, "Named Co", got[1].CompanyName)
}

func TestListings_HeadingFallback(t *testing.T) {
	markup := `<html><body>
		<h2>Stark Industries</h2>
		<h2>Wayne Enterprises</h2>
		<h3>ignored when h2 matched</h3>
	</body></html>`

	got, err := New(generic()).Listings(markup, sourceURL)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Stark Industries", got[0].CompanyName)
	assert.Equal(t, "Wayne Enterprises", got[1].CompanyName)
}

func TestListings_HeadingFallbackCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&b, "<h3>Company Number %d</h3>", i)
	}
	b.WriteString("</body></html>")

	got, err := New(generic()).Listings(b.String(), sourceURL)
	require.NoError(t, err)
	assert.Len(t, got, headingFallbackCap)
}

func TestListings_NoListings(t *testing.T) {
	_, err := New(generic()).Listings("<html><body><p>nothing here</p></body></html>", sourceURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNoListings)
}

func TestListings_WebsiteMustBeAbsolute(t *testing.T) {
	markup := `<div class="listing">
		<h3>Relative Co</h3>
		<a class="website" href="/redirect?to=somewhere">visit</a>
	</div>`

	got, err := New(generic()).Listings(markup, sourceURL)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].ExternalWebsite)
}

func TestListings_ExternalLinkFallbackSkipsSameHost(t *testing.T) {
	markup := `<div class="listing">
		<h3>Linked Co</h3>
		<a href="https://dir.example.com/profile/9">profile</a>
		<a href="https://linkedco.example/home">home</a>
	</div>`

	got, err := New(generic()).Listings(markup, sourceURL)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://linkedco.example/home", got[0].ExternalWebsite)
}

func TestListings_MailtoAndTel(t *testing.T) {
	markup := `<div class="listing">
		<h3>Contactful Co</h3>
		<a href="mailto:sales@contactful.example?subject=Hi">email us</a>
		<a href="tel:+1-555-010-2000">call us</a>
	</div>`

	got, err := New(generic()).Listings(markup, sourceURL)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sales@contactful.example", got[0].Email)
	assert.Equal(t, "+1-555-010-2000", got[0].Phone)
}

func TestListings_RegexFillsOnlyEmptyFields(t *testing.T) {
	markup := `<div class="listing">
		<h3>Texty Co</h3>
		<a href="mailto:listed@texty.example">mail</a>
		<p>Reach us at other@texty.example or (512) 555-0100 today.</p>
	</div>`

	got, err := New(generic()).Listings(markup, sourceURL)
	require.NoError(t, err)
	require.Len(t, got, 1)
	// The mailto selector won; the regex must not overwrite it.
	assert.Equal(t, "listed@texty.example", got[0].Email)
	assert.Contains(t, got[0].Phone, "555")
}

func TestListings_PhoneScanRequiresSevenDigits(t *testing.T) {
	markup := `<div class="listing">
		<h3>Terse Co</h3>
		<p>Established 1999 2001 only</p>
	</div>`

	got, err := New(generic()).Listings(markup, sourceURL)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Phone)
}

func TestDigitCount(t *testing.T) {
	assert.Equal(t, 10, digitCount("(512) 555-0100"))
	assert.Equal(t, 0, digitCount("no digits"))
}

func TestResolveHref(t *testing.T) {
	base, _ := url.Parse("https://dir.example.com/companies?page=2")

	assert.Equal(t, "https://dir.example.com/profile/3", resolveHref("/profile/3", base))
	assert.Equal(t, "https://other.example/x", resolveHref("https://other.example/x", base))
	assert.Empty(t, resolveHref("", base))
}
