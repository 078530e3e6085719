package categories

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
)

//go:embed categories.toml
var categoriesTOML []byte

// Definition maps a group of category keywords to one glyph.
type Definition struct {
	Name     string   `toml:"name"`
	Glyph    string   `toml:"glyph"`
	Keywords []string `toml:"keywords"`
}

type tableFile struct {
	Fallback   string       `toml:"fallback"`
	Categories []Definition `toml:"category"`
}

// Table resolves place categories to glyphs.
type Table struct {
	fallback string
	defs     []Definition
}

// New builds a table from the embedded definitions.
func New() (*Table, error) {
	t := &Table{}
	if err := t.merge(categoriesTOML); err != nil {
		return nil, fmt.Errorf("parsing categories.toml: %w", err)
	}
	return t, nil
}

// Default is New without the error; an empty table falls back to a bullet.
func Default() *Table {
	t, err := New()
	if err != nil {
		return &Table{fallback: "•"}
	}
	return t
}

// LoadFile merges user definitions from path over the current table.
// A definition with an existing name replaces it. A missing file is not an error.
func (t *Table) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := t.merge(data); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (t *Table) merge(data []byte) error {
	var f tableFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return err
	}
	if f.Fallback != "" {
		t.fallback = f.Fallback
	}
	for _, def := range f.Categories {
		replaced := false
		for i := range t.defs {
			if strings.EqualFold(t.defs[i].Name, def.Name) {
				t.defs[i] = def
				replaced = true
				break
			}
		}
		if !replaced {
			t.defs = append(t.defs, def)
		}
	}
	return nil
}

// Lookup returns the definition matching category, if any.
func (t *Table) Lookup(category string) (Definition, bool) {
	words := strings.FieldsFunc(strings.ToLower(category), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, def := range t.defs {
		for _, kw := range def.Keywords {
			kw = strings.ToLower(kw)
			for _, w := range words {
				if strings.HasPrefix(w, kw) {
					return def, true
				}
			}
		}
	}
	return Definition{}, false
}

// Glyph returns the glyph for category or the fallback.
func (t *Table) Glyph(category string) string {
	if def, ok := t.Lookup(category); ok && def.Glyph != "" {
		return def.Glyph
	}
	return t.fallback
}

// Names lists the definition names in table order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.defs))
	for _, def := range t.defs {
		names = append(names, def.Name)
	}
	return names
}
