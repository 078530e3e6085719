package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgSearching       = "Searching…"
	MsgLoadingDetails  = "Loading details…"
	MsgNoWebsite       = "This place has no website"
	MsgNoAddress       = "This place has no address"
	MsgNoSelection     = "No place selected"
	MsgSearchCancelled = "Search cleared"
)

func MsgOpened(url string) string {
	return "Opened " + truncateMiddle(strings.TrimSpace(url), 48)
}

func MsgCopied(text string) string {
	return fmt.Sprintf("Copied '%s'", truncateEnd(strings.TrimSpace(text), 40))
}

func MsgFavoriteToggled(name string, favorite bool) string {
	if favorite {
		return fmt.Sprintf("★ Starred %s", strings.TrimSpace(name))
	}
	return fmt.Sprintf("Removed %s from favorites", strings.TrimSpace(name))
}

func MsgPlacesCount(n int) string {
	if n == 1 {
		return "1 place"
	}
	return fmt.Sprintf("%d places", n)
}
