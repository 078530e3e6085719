package search

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/pders01/nearby/internal/storage"
)

// Engine scores stored places in memory. It is used when no index is configured.
type Engine struct {
	source PlaceSource
}

func NewEngine(source PlaceSource) *Engine {
	return &Engine{source: source}
}

// Search ranks every stored place against query. Queries shorter than two
// characters return no results.
func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	terms := tokenize(query)
	if len(strings.TrimSpace(query)) < 2 || len(terms) == 0 {
		return []*Result{}, nil
	}

	places, err := e.source.GetAllPlaces()
	if err != nil {
		return nil, err
	}

	results := []*Result{}
	for _, place := range places {
		if r := scorePlace(place, terms); r != nil {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func scorePlace(place *storage.Place, terms []string) *Result {
	fields := []struct {
		name   string
		text   string
		weight float64
	}{
		{"name", place.Name, 4.0},
		{"category", place.Category, 2.0},
		{"address", place.Address, 1.0},
		{"website", place.Website, 0.5},
	}

	var matches []Match
	var total float64
	for _, f := range fields {
		if score := scoreField(f.text, terms, f.weight); score > 0 {
			matches = append(matches, Match{Field: f.name, Text: f.text, Weight: score})
			total += score
		}
	}
	if total == 0 {
		return nil
	}
	return &Result{Place: place, Score: total, Matches: matches}
}

// scoreField rewards substring, whole-word and prefix hits, boosted when
// several terms match.
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += 2.0
			matched++
		}
		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matched++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matched++
			case strings.Contains(word, term):
				score += 0.5
				matched++
			}
		}
	}

	if len(terms) > 1 && matched > 1 {
		score *= 1.0 + float64(matched)/float64(len(terms))
	}
	tf := float64(matched) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// tokenize lowercases text and splits it into terms of two or more letters or digits.
func tokenize(text string) []string {
	var terms []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 1 {
			terms = append(terms, current.String())
		}
		current.Reset()
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()
	return terms
}
