package categories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlyph(t *testing.T) {
	table, err := New()
	require.NoError(t, err)

	tests := []struct {
		category string
		want     string
	}{
		{"Italian Restaurant", "🍴"},
		{"Coffee Shop", "☕"},
		{"Cocktail Bar", "🍺"},
		{"Art Museum", "🏛"},
		{"Train Station", "🚉"},
		{"PIZZA PLACE", "🍴"},
		{"Laundromat", "•"},
		{"", "•"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Glyph(tt.category))
		})
	}
}

func TestLookupMatchesWordPrefixOnly(t *testing.T) {
	table := Default()

	// Keywords match at word starts only.
	def, ok := table.Lookup("Crossbar Workshop")
	assert.False(t, ok, "matched %q", def.Name)

	def, ok = table.Lookup("Wine Bar")
	require.True(t, ok)
	assert.Equal(t, "drinks", def.Name)
}

func TestLoadFileOverrides(t *testing.T) {
	table := Default()
	path := filepath.Join(t.TempDir(), "categories.toml")
	content := `
fallback = "?"

[[category]]
name = "coffee"
glyph = "C"
keywords = ["coffee"]

[[category]]
name = "laundry"
glyph = "L"
keywords = ["laundromat"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, table.LoadFile(path))

	assert.Equal(t, "C", table.Glyph("Coffee Shop"))
	assert.Equal(t, "L", table.Glyph("Laundromat"))
	assert.Equal(t, "?", table.Glyph("Observatory"))
	assert.Contains(t, table.Names(), "laundry")
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	table := Default()
	assert.NoError(t, table.LoadFile(filepath.Join(t.TempDir(), "nope.toml")))
}

func TestLoadFileInvalid(t *testing.T) {
	table := Default()
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[category"), 0o644))
	assert.Error(t, table.LoadFile(path))
}
