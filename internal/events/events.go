package events

import (
	"github.com/google/uuid"

	"github.com/pders01/nearby/internal/storage"
)

// Kind identifies the type of an event delivered over the bus.
type Kind string

const (
	KindSearchResult        Kind = "SearchResult"
	KindFavoritesLoaded     Kind = "FavoritesLoaded"
	KindPlaceModified       Kind = "PlaceModified"
	KindNetworkAvailability Kind = "NetworkAvailability"
)

// Event is implemented by every payload published on the bus.
type Event interface {
	Kind() Kind
}

// Token identifies one asynchronous favorites load.
type Token uuid.UUID

// NewToken returns a fresh random token.
func NewToken() Token {
	return Token(uuid.New())
}

// IsZero reports whether t was never issued.
func (t Token) IsZero() bool {
	return t == Token(uuid.Nil)
}

func (t Token) String() string {
	return uuid.UUID(t).String()
}

// SearchResult is published when a search request finishes.
// Err is nil on success; Places may then be empty but never nil.
type SearchResult struct {
	Query  string
	Places []*storage.Place
	Err    error
}

func (SearchResult) Kind() Kind { return KindSearchResult }

// FavoritesLoaded completes the favorites load issued under Token.
type FavoritesLoaded struct {
	Token  Token
	Places []*storage.Place
	Err    error
}

func (FavoritesLoaded) Kind() Kind { return KindFavoritesLoaded }

// PlaceModified carries a fresh copy of a place whose attributes changed.
type PlaceModified struct {
	Place *storage.Place
}

func (PlaceModified) Kind() Kind { return KindPlaceModified }

// NetworkAvailability reports a reachability transition.
type NetworkAvailability struct {
	Reachable bool
}

func (NetworkAvailability) Kind() Kind { return KindNetworkAvailability }

// All lists every kind a session subscribes to.
func All() []Kind {
	return []Kind{KindSearchResult, KindFavoritesLoaded, KindPlaceModified, KindNetworkAvailability}
}
