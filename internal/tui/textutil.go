package tui

import "github.com/mattn/go-runewidth"

// truncateEnd shortens s to at most limit terminal cells, appending an
// ellipsis if truncation occurs. Wide runes such as category glyphs count
// as two cells.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return runewidth.Truncate(s, limit, "…")
}

// truncateMiddle shortens s to at most limit cells by keeping both ends
// around a single ellipsis. Useful for URLs where both ends carry meaning.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}

	keep := limit - 1
	left := keep / 2
	right := keep - left

	head := runewidth.Truncate(s, left, "")
	r := []rune(s)
	width := 0
	start := len(r)
	for start > 0 {
		w := runewidth.RuneWidth(r[start-1])
		if width+w > right {
			break
		}
		width += w
		start--
	}
	return head + "…" + string(r[start:])
}
