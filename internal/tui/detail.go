package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/pders01/nearby/internal/storage"
)

// detailMarkdown lays a place out as markdown for glamour.
func (a *App) detailMarkdown(p *storage.Place) string {
	var b strings.Builder
	glyph := "•"
	if a.glyphs != nil {
		glyph = a.glyphs.Glyph(p.Category)
	}

	title := p.Name
	if p.IsFavorite {
		title += favoriteMark
	}
	fmt.Fprintf(&b, "# %s %s\n\n", glyph, title)
	if p.Category != "" {
		fmt.Fprintf(&b, "*%s*\n\n", p.Category)
	}

	if p.Address != "" {
		fmt.Fprintf(&b, "**Address:** %s\n\n", p.Address)
	}
	if d := formatDistance(p.Distance); d != "" {
		fmt.Fprintf(&b, "**Distance:** %s from %s\n\n", d, a.engine.POI().DisplayLabel())
	}
	if p.Phone != "" {
		fmt.Fprintf(&b, "**Phone:** %s\n\n", p.Phone)
	}
	if p.Rating > 0 {
		fmt.Fprintf(&b, "**Rating:** %.1f / 10\n\n", p.Rating)
	}
	if p.Website != "" {
		fmt.Fprintf(&b, "**Website:** [%s](%s)\n\n", p.Website, p.Website)
	}
	if p.Lat != 0 || p.Lon != 0 {
		fmt.Fprintf(&b, "`%.5f, %.5f`\n\n", p.Lat, p.Lon)
	}

	if notes := strings.TrimSpace(p.Notes); notes != "" {
		b.WriteString("---\n\n")
		b.WriteString(notes)
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderDetail(p *storage.Place) tea.Cmd {
	if p == nil {
		return nil
	}
	place := p.Clone()
	markdown := a.detailMarkdown(place)
	r, err := a.getRenderer()
	return func() tea.Msg {
		if err != nil {
			return detailRenderedMsg{id: place.ID, content: "Error initializing renderer: " + err.Error()}
		}
		rendered, err := r.Render(markdown)
		if err != nil {
			return detailRenderedMsg{id: place.ID, content: fmt.Sprintf("Failed to render place: %s\n\nPress Escape to go back.", err.Error())}
		}
		return detailRenderedMsg{id: place.ID, content: rendered}
	}
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Detail.WordWrapMaxWidth
	minWidth := a.config.UI.Detail.WordWrapMinWidth
	if maxWidth <= 0 {
		maxWidth = 100
	}
	if minWidth <= 0 {
		minWidth = 40
	}

	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width > 0 && a.width < 50 {
		wordWrapWidth = a.width - 4
		if wordWrapWidth < 20 {
			wordWrapWidth = 20
		}
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
