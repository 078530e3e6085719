package provider

import (
	"context"
	"fmt"

	"github.com/pders01/nearby/internal/places"
	"github.com/pders01/nearby/internal/search"
	"github.com/pders01/nearby/internal/storage"
)

// LocalSource answers searches from places already stored or imported.
type LocalSource struct {
	searcher search.Searcher
	store    search.PlaceSource
}

func NewLocalSource(searcher search.Searcher, store search.PlaceSource) *LocalSource {
	return &LocalSource{searcher: searcher, store: store}
}

// Search ranks stored places by text relevance, then by distance from the POI
// when it has coordinates.
func (l *LocalSource) Search(ctx context.Context, phrase string, opts places.SearchOptions) ([]*storage.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results, err := l.searcher.Search(phrase, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("local search: %w", err)
	}

	out := make([]*storage.Place, 0, len(results))
	for _, r := range results {
		out = append(out, r.Place.Clone())
	}
	if opts.HasCoords {
		search.SortByDistance(out, opts.Lat, opts.Lon)
	}
	return out, nil
}

func (l *LocalSource) Details(ctx context.Context, id string) (*storage.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := l.store.GetPlace(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", places.ErrRejected, err)
	}
	p.ShowWebsite = p.Website != ""
	return p, nil
}
