package places

import "github.com/pders01/nearby/internal/storage"

// ListKind names the list the view is currently showing.
type ListKind int

const (
	ListNone ListKind = iota
	ListSearched
	ListFavorites
)

func (k ListKind) String() string {
	switch k {
	case ListSearched:
		return "searched"
	case ListFavorites:
		return "favorites"
	default:
		return "none"
	}
}

// Cache holds the searched and favorited lists. A nil list was never fetched;
// an empty non-nil list was fetched with no results.
type Cache struct {
	searched  []*storage.Place
	favorited []*storage.Place
	current   ListKind
}

func (c *Cache) Searched() []*storage.Place  { return c.searched }
func (c *Cache) Favorited() []*storage.Place { return c.favorited }
func (c *Cache) Current() ListKind           { return c.current }

// CurrentItems returns the list selected by Current, or nil.
func (c *Cache) CurrentItems() []*storage.Place {
	switch c.current {
	case ListSearched:
		return c.searched
	case ListFavorites:
		return c.favorited
	default:
		return nil
	}
}

// SetSearched replaces the searched list. Items also present in favorited are
// flagged as favorites.
func (c *Cache) SetSearched(places []*storage.Place) {
	c.searched = places
	if c.favorited == nil {
		return
	}
	for _, p := range c.searched {
		if indexOf(c.favorited, p.ID) >= 0 {
			p.IsFavorite = true
		}
	}
}

// SetFavorited replaces the favorited list wholesale and brings the flags of
// searched items in line with it. It returns the IDs whose flag changed.
func (c *Cache) SetFavorited(places []*storage.Place) []string {
	if places == nil {
		places = []*storage.Place{}
	}
	for _, p := range places {
		p.IsFavorite = true
	}
	c.favorited = places

	var changed []string
	for _, p := range c.searched {
		fav := indexOf(c.favorited, p.ID) >= 0
		if p.IsFavorite != fav {
			p.IsFavorite = fav
			changed = append(changed, p.ID)
		}
	}
	return changed
}

// ToggleFavorite flips place's flag, and that of every held instance with the
// same ID, then adds it to or removes it from favorited. It reports the new flag.
func (c *Cache) ToggleFavorite(place *storage.Place) bool {
	fav := !place.IsFavorite
	place.IsFavorite = fav
	for _, list := range [][]*storage.Place{c.searched, c.favorited} {
		for _, p := range list {
			if p.ID == place.ID {
				p.IsFavorite = fav
			}
		}
	}

	if c.favorited == nil {
		c.favorited = []*storage.Place{}
	}
	i := indexOf(c.favorited, place.ID)
	switch {
	case fav && i < 0:
		c.favorited = append(c.favorited, place)
	case !fav && i >= 0:
		c.favorited = append(c.favorited[:i:i], c.favorited[i+1:]...)
	}
	return fav
}

// Replace swaps in place for the held item with the same ID, keeping its
// position. It reports whether the item was present in searched and in favorited.
func (c *Cache) Replace(place *storage.Place) (inSearched, inFavorited bool) {
	if i := indexOf(c.searched, place.ID); i >= 0 {
		c.searched[i] = place
		inSearched = true
	}
	if i := indexOf(c.favorited, place.ID); i >= 0 {
		c.favorited[i] = place
		inFavorited = true
	}
	return inSearched, inFavorited
}

// Find returns the held instance with id, preferring searched.
func (c *Cache) Find(id string) *storage.Place {
	if i := indexOf(c.searched, id); i >= 0 {
		return c.searched[i]
	}
	if i := indexOf(c.favorited, id); i >= 0 {
		return c.favorited[i]
	}
	return nil
}

func (c *Cache) SwitchCurrent(kind ListKind) {
	c.current = kind
}

func (c *Cache) Clear() {
	c.searched = nil
	c.favorited = nil
	c.current = ListNone
}

func indexOf(places []*storage.Place, id string) int {
	for i, p := range places {
		if p.ID == id {
			return i
		}
	}
	return -1
}
