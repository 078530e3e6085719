package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/pders01/nearby/internal/storage"
)

// FilterMatch is a place that matched a fuzzy filter.
type FilterMatch struct {
	Place          *storage.Place
	MatchedIndexes []int
	Score          int
}

// placeLabels implements fuzzy.Source over place names and categories.
type placeLabels []*storage.Place

func (pl placeLabels) String(i int) string {
	if pl[i].Category == "" {
		return pl[i].Name
	}
	return pl[i].Name + " " + pl[i].Category
}

func (pl placeLabels) Len() int {
	return len(pl)
}

// FilterPlaces fuzzy-matches query against the places, best match first.
// An empty query keeps every place in its original order.
func FilterPlaces(query string, places []*storage.Place) []FilterMatch {
	if strings.TrimSpace(query) == "" {
		out := make([]FilterMatch, len(places))
		for i, p := range places {
			out[i] = FilterMatch{Place: p}
		}
		return out
	}

	matches := fuzzy.FindFrom(query, placeLabels(places))
	out := make([]FilterMatch, len(matches))
	for i, m := range matches {
		out[i] = FilterMatch{
			Place:          places[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return out
}
