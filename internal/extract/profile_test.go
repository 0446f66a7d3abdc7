package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ResolveByHost(t *testing.T) {
	reg := NewRegistry()

	p := reg.Resolve("https://www.yellowpages.com/search?page=1")
	assert.Equal(t, "yellowpages", p.Name)
	assert.Equal(t, "page", p.PaginationParam)
	assert.Equal(t, 30, p.ItemsPerPage)

	p = reg.Resolve("https://us.kompass.com/businesses?start=0")
	assert.Equal(t, "kompass", p.Name)
	assert.Equal(t, "start", p.PaginationParam)
}

func TestRegistry_ResolveFallsBackToGeneric(t *testing.T) {
	reg := NewRegistry()

	p := reg.Resolve("https://unknown-directory.example/companies")
	assert.Equal(t, "generic", p.Name)
	assert.Equal(t, 20, p.ItemsPerPage)
	assert.Equal(t, DefaultContactPaths, p.ContactPaths)
}

func TestRegistry_CustomProfileWinsOverBuiltin(t *testing.T) {
	reg := NewRegistry()
	reg.Register(SelectorProfile{
		Name:       "yellowpages-override",
		Hosts:      []string{"www.yellowpages.com"},
		Containers: []string{".custom-row"},
	})

	p := reg.Resolve("https://www.yellowpages.com/search")
	assert.Equal(t, "yellowpages-override", p.Name)
	assert.Equal(t, []string{".custom-row"}, p.Containers)
}

func TestRegistry_ByNameAppliesDefaults(t *testing.T) {
	reg := NewRegistry()
	reg.Register(SelectorProfile{
		Name:  "sparse",
		Hosts: []string{"sparse.example"},
	})

	p, ok := reg.ByName("sparse")
	require.True(t, ok)
	assert.Equal(t, 20, p.ItemsPerPage)
	assert.Equal(t, DefaultContactPaths, p.ContactPaths)

	_, ok = reg.ByName("no-such-profile")
	assert.False(t, ok)
}

func TestLoadProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	data := `profiles:
  - name: localdir
    hosts: ["localdir.example"]
    containers: [".entry"]
    name_selectors: [".entry-name"]
    pagination_param: offset
    items_per_page: 40
    contact_paths: ["/kontakt"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "localdir", profiles[0].Name)
	assert.Equal(t, "offset", profiles[0].PaginationParam)
	assert.Equal(t, 40, profiles[0].ItemsPerPage)
	assert.Equal(t, []string{"/kontakt"}, profiles[0].ContactPaths)
}

func TestLoadProfiles_RejectsUnnamed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - hosts: [\"x.example\"]\n"), 0o644))

	_, err := LoadProfiles(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no name")
}

func TestLoadProfiles_MissingFile(t *testing.T) {
	_, err := LoadProfiles(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
