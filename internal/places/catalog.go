package places

import (
	"fmt"
	"strings"
)

// Catalog holds the empty-state and prompt strings shown by the list view.
type Catalog struct {
	SearchPrompt  string
	NoFavorites   string
	NoResults     string
	NoNetwork     string
	Unrecoverable string
	TitleFormat   string
	RetryFormat   string
}

// DefaultCatalog returns the built-in English strings.
func DefaultCatalog() Catalog {
	return Catalog{
		SearchPrompt:  "Search for places nearby",
		NoFavorites:   "No favorite places yet. Star a place to keep it here.",
		NoResults:     "No places found",
		NoNetwork:     "No internet connection",
		Unrecoverable: "Something went wrong. Please try a different search.",
		TitleFormat:   "Search in %s",
		RetryFormat:   "Back online. Press enter to search for %q again.",
	}
}

// Title returns the header for a POI. '+' in the label reads as a space.
func (c Catalog) Title(poi POI) string {
	return fmt.Sprintf(c.TitleFormat, poi.DisplayLabel())
}

func (c Catalog) RetryPrompt(phrase string) string {
	return fmt.Sprintf(c.RetryFormat, phrase)
}

// POI is the location every search of a session is scoped to.
type POI struct {
	Label     string
	Lat       float64
	Lon       float64
	HasCoords bool
}

// DisplayLabel returns Label with '+' separators turned into spaces.
func (p POI) DisplayLabel() string {
	return strings.ReplaceAll(p.Label, "+", " ")
}
