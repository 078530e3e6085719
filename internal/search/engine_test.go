package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/nearby/internal/storage"
)

type memorySource struct {
	places []*storage.Place
	err    error
}

func (m *memorySource) GetAllPlaces() ([]*storage.Place, error) {
	return m.places, m.err
}

func (m *memorySource) GetPlace(id string) (*storage.Place, error) {
	for _, p := range m.places {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, storage.ErrNotFound
}

func samplePlaces() []*storage.Place {
	return []*storage.Place{
		{ID: "1", Name: "Torchy's Tacos", Category: "Mexican Restaurant", Address: "1822 S Congress Ave"},
		{ID: "2", Name: "Veracruz All Natural", Category: "Taco Place", Address: "1704 E Cesar Chavez St"},
		{ID: "3", Name: "Houndstooth Coffee", Category: "Coffee Shop", Address: "401 Congress Ave"},
		{ID: "4", Name: "Blanton Museum of Art", Category: "Art Museum"},
	}
}

func TestSearchMinLength(t *testing.T) {
	engine := NewEngine(&memorySource{places: samplePlaces()})

	tests := []struct {
		name  string
		query string
	}{
		{"Empty query", ""},
		{"Single character query", "a"},
		{"Whitespace only", "   "},
		{"Only punctuation", "!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := engine.Search(tt.query, 10)
			assert.NoError(t, err)
			assert.NotNil(t, results)
			assert.Empty(t, results, "short queries should return empty results")
		})
	}
}

func TestEngineRanksNameAboveCategory(t *testing.T) {
	engine := NewEngine(&memorySource{places: samplePlaces()})

	results, err := engine.Search("taco", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].Place.ID, "name hit outranks category hit")
	assert.Equal(t, "2", results[1].Place.ID)
	assert.Equal(t, "name", results[0].Matches[0].Field)
}

func TestEngineMatchesAddressAndLimits(t *testing.T) {
	engine := NewEngine(&memorySource{places: samplePlaces()})

	results, err := engine.Search("congress", 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "3"}, ids(Places(results)))

	results, err = engine.Search("congress", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestEngineSourceError(t *testing.T) {
	engine := NewEngine(&memorySource{err: errors.New("db closed")})
	_, err := engine.Search("coffee", 10)
	assert.Error(t, err)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Torchy's Tacos", []string{"torchy", "tacos"}},
		{"a b cd", []string{"cd"}},
		{"Café-Bar 24", []string{"café", "bar", "24"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tokenize(tt.input), tt.input)
	}
}

func TestScoreField(t *testing.T) {
	assert.Zero(t, scoreField("", []string{"x"}, 1))
	exact := scoreField("coffee", []string{"coffee"}, 1)
	prefix := scoreField("coffeehouse", []string{"coffee"}, 1)
	assert.Greater(t, exact, prefix)
	assert.InDelta(t, 2*exact, scoreField("coffee", []string{"coffee"}, 2), 1e-9)
}

func ids(places []*storage.Place) []string {
	out := make([]string, 0, len(places))
	for _, p := range places {
		out = append(out, p.ID)
	}
	return out
}
