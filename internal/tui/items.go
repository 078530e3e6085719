package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/pders01/nearby/internal/categories"
	"github.com/pders01/nearby/internal/search"
	"github.com/pders01/nearby/internal/storage"
)

const favoriteMark = " ★"

type placeItem struct {
	place *storage.Place
	glyph string
}

func newPlaceItem(p *storage.Place, glyphs *categories.Table) placeItem {
	glyph := "•"
	if glyphs != nil {
		glyph = glyphs.Glyph(p.Category)
	}
	return placeItem{place: p, glyph: glyph}
}

// Title is kept free of styling so filter matches line up with its runes.
func (i placeItem) Title() string {
	title := i.prefix() + i.place.Name
	if i.place.IsFavorite {
		title += favoriteMark
	}
	return title
}

func (i placeItem) Description() string {
	var parts []string
	if i.place.Category != "" {
		parts = append(parts, i.place.Category)
	}
	if i.place.Address != "" {
		parts = append(parts, truncateEnd(i.place.Address, 48))
	}
	if d := formatDistance(i.place.Distance); d != "" {
		parts = append(parts, d)
	}
	return strings.Join(parts, " • ")
}

func (i placeItem) FilterValue() string {
	if i.place.Category == "" {
		return i.place.Name
	}
	return i.place.Name + " " + i.place.Category
}

func (i placeItem) prefix() string {
	return i.glyph + " "
}

func formatDistance(meters int) string {
	switch {
	case meters <= 0:
		return ""
	case meters < 1000:
		return fmt.Sprintf("%d m", meters)
	default:
		return fmt.Sprintf("%.1f km", float64(meters)/1000)
	}
}

// placeFilter ranks rows with the fuzzy place matcher. Match positions are
// shifted past the glyph and limited to the name, which is the only part of
// the label the title shows.
func placeFilter(rows []*storage.Place, items []placeItem) list.FilterFunc {
	index := make(map[*storage.Place]int, len(rows))
	for i, p := range rows {
		index[p] = i
	}
	return func(term string, _ []string) []list.Rank {
		matches := search.FilterPlaces(term, rows)
		ranks := make([]list.Rank, 0, len(matches))
		for _, m := range matches {
			i, ok := index[m.Place]
			if !ok {
				continue
			}
			offset := len([]rune(items[i].prefix()))
			nameLen := len([]rune(m.Place.Name))
			var matched []int
			for _, mi := range m.MatchedIndexes {
				if mi < nameLen {
					matched = append(matched, mi+offset)
				}
			}
			ranks = append(ranks, list.Rank{Index: i, MatchedIndexes: matched})
		}
		return ranks
	}
}
