package search

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/nearby/internal/storage"
)

// BleveIndex is a full-text index over stored places.
type BleveIndex struct {
	source PlaceSource
	idx    bleve.Index
}

// NewBleveIndex opens or creates the index at indexPath and indexes every
// place the source holds.
func NewBleveIndex(source PlaceSource, indexPath string) (*BleveIndex, error) {
	_ = os.MkdirAll(filepath.Dir(indexPath), 0o755)

	idx, err := bleve.Open(indexPath)
	if err != nil {
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, err
		}
	}

	b := &BleveIndex{source: source, idx: idx}
	places, err := source.GetAllPlaces()
	if err != nil {
		idx.Close()
		return nil, err
	}
	if err := b.Index(places); err != nil {
		idx.Close()
		return nil, err
	}
	return b, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	text := func(store bool) *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = store
		return fm
	}
	name := text(true)
	name.IncludeTermVectors = true
	name.DocValues = true

	dm.AddFieldMappingsAt("name", name)
	dm.AddFieldMappingsAt("category", text(true))
	dm.AddFieldMappingsAt("address", text(true))
	dm.AddFieldMappingsAt("website", text(true))
	dm.AddFieldMappingsAt("notes", text(false))

	for _, field := range []string{"lat", "lon"} {
		num := bleve.NewNumericFieldMapping()
		num.Store = true
		num.Index = false
		dm.AddFieldMappingsAt(field, num)
	}

	im.DefaultMapping = dm
	return im
}

// Index adds or replaces places in the index.
func (b *BleveIndex) Index(places []*storage.Place) error {
	batch := b.idx.NewBatch()
	for _, p := range places {
		if err := batch.Index(docIDForPlace(p.ID), map[string]any{
			"name":     p.Name,
			"category": p.Category,
			"address":  p.Address,
			"website":  p.Website,
			"notes":    p.Notes,
			"lat":      p.Lat,
			"lon":      p.Lon,
		}); err != nil {
			return err
		}
	}
	return b.idx.Batch(batch)
}

// Search runs a boosted disjunction of match and prefix queries per term.
func (b *BleveIndex) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}

	boosts := []struct {
		field         string
		match, prefix float64
	}{
		{"name", 4.0, 3.5},
		{"category", 2.0, 1.8},
		{"address", 1.0, 0.8},
		{"website", 0.5, 0.3},
		{"notes", 0.3, 0.2},
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		for _, f := range boosts {
			mq := bleve.NewMatchQuery(tok)
			mq.SetField(f.field)
			mq.SetBoost(f.match)
			qs = append(qs, mq)

			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(f.field)
			pq.SetBoost(f.prefix)
			qs = append(qs, pq)
		}
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"name", "category", "address", "website", "lat", "lon"}
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		id := strings.TrimPrefix(h.ID, "place:")
		place, err := b.source.GetPlace(id)
		if err != nil {
			place = placeFromFields(id, h.Fields)
		}
		out = append(out, &Result{Place: place, Score: h.Score})
	}
	return out, nil
}

// DocCount reports the number of indexed places.
func (b *BleveIndex) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	return int(n), err
}

// Delete removes a place from the index.
func (b *BleveIndex) Delete(id string) error {
	return b.idx.Delete(docIDForPlace(id))
}

func (b *BleveIndex) Close() error {
	return b.idx.Close()
}

func placeFromFields(id string, fields map[string]any) *storage.Place {
	p := &storage.Place{ID: id}
	if v, ok := fields["name"].(string); ok {
		p.Name = v
	}
	if v, ok := fields["category"].(string); ok {
		p.Category = v
	}
	if v, ok := fields["address"].(string); ok {
		p.Address = v
	}
	if v, ok := fields["website"].(string); ok {
		p.Website = v
	}
	if v, ok := fields["lat"].(float64); ok {
		p.Lat = v
	}
	if v, ok := fields["lon"].(float64); ok {
		p.Lon = v
	}
	return p
}

func docIDForPlace(id string) string { return "place:" + id }
