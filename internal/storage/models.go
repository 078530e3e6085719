package storage

import (
	"strings"
	"time"
)

// ImportedPrefix marks IDs of places loaded from feeds rather than a places API.
const ImportedPrefix = "import:"

// IsImported reports whether id was assigned by the feed importer.
func IsImported(id string) bool {
	return strings.HasPrefix(id, ImportedPrefix)
}

// Place is a searchable, favoritable point returned by a places source.
// ID is the only field used for identity.
type Place struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Address     string    `json:"address"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Distance    int       `json:"distance"`
	Website     string    `json:"website"`
	Phone       string    `json:"phone"`
	Rating      float64   `json:"rating"`
	Notes       string    `json:"notes,omitempty"`
	IsFavorite  bool      `json:"is_favorite"`
	ShowWebsite bool      `json:"show_website"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SameAs reports whether p and other refer to the same place.
func (p *Place) SameAs(other *Place) bool {
	if p == nil || other == nil {
		return false
	}
	return p.ID == other.ID
}

// Clone returns a shallow copy of p.
func (p *Place) Clone() *Place {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

type SearchMetadata struct {
	Phrase     string    `json:"phrase"`
	Near       string    `json:"near"`
	ResultIDs  []string  `json:"result_ids"`
	SearchedAt time.Time `json:"searched_at"`
}
