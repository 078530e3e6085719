package tui

import (
	"fmt"
	"io"

	"github.com/pders01/nearby/internal/categories"
	"github.com/pders01/nearby/internal/storage"
)

// PlaceLine renders p on one line for non-interactive output.
func PlaceLine(p *storage.Place, glyphs *categories.Table) string {
	item := newPlaceItem(p, glyphs)
	style := PlaceItemStyle
	if p.IsFavorite {
		style = FavoriteItemStyle
	}
	line := style.Render(item.Title())
	if desc := item.Description(); desc != "" {
		line += "  " + DistanceStyle.Render(desc)
	}
	return line
}

// PrintPlaces writes a titled list. An empty list prints empty instead.
func PrintPlaces(w io.Writer, title string, list []*storage.Place, glyphs *categories.Table, empty string) {
	fmt.Fprintln(w, TitleStyle.Render(title))
	if len(list) == 0 {
		fmt.Fprintln(w, HelpStyle.Render(empty))
		return
	}
	for _, p := range list {
		fmt.Fprintln(w, PlaceLine(p, glyphs))
	}
	fmt.Fprintln(w, HelpStyle.Render(MsgPlacesCount(len(list))))
}

// PrintError writes err in the error style.
func PrintError(w io.Writer, err error) {
	fmt.Fprintln(w, ErrorMessageStyle.Render(describeErr(err)))
}
