package search

import "github.com/pders01/nearby/internal/storage"

// Searcher finds places matching a free-text query.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
}

// Indexer is implemented by searchers that keep their own index and need to
// be told about new or changed places.
type Indexer interface {
	Index(places []*storage.Place) error
}

// DebugStatser reports index size for diagnostics.
type DebugStatser interface {
	DocCount() (int, error)
}

// PlaceSource is the read side of storage.Backend used to build and hydrate results.
type PlaceSource interface {
	GetAllPlaces() ([]*storage.Place, error)
	GetPlace(id string) (*storage.Place, error)
}

// Result is one scored match.
type Result struct {
	Place   *storage.Place
	Score   float64
	Matches []Match
}

// Match records which field a query term hit.
type Match struct {
	Field  string
	Text   string
	Weight float64
}

// Places unwraps results into their places, best first.
func Places(results []*Result) []*storage.Place {
	out := make([]*storage.Place, 0, len(results))
	for _, r := range results {
		out = append(out, r.Place)
	}
	return out
}
