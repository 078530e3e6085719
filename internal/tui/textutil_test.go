package tui

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestTruncateEnd(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"Bean There", 20, "Bean There"},
		{"Bean There", 5, "Bean…"},
		{"Bean There", 1, "…"},
		{"Bean There", 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateEnd(tt.in, tt.limit))
	}

	// wide glyphs count as two cells
	got := truncateEnd("☕☕☕☕", 5)
	assert.LessOrEqual(t, runewidth.StringWidth(got), 5)
}

func TestTruncateMiddle(t *testing.T) {
	url := "https://www.openstreetmap.org/?mlat=52.5&mlon=13.4"
	got := truncateMiddle(url, 20)
	assert.Equal(t, 20, runewidth.StringWidth(got))
	assert.Contains(t, got, "…")
	assert.True(t, len(got) > 0 && got[:5] == "https")
	assert.Equal(t, "short", truncateMiddle("short", 20))
}
