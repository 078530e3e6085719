package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/pders01/nearby/internal/categories"
	"github.com/pders01/nearby/internal/config"
	"github.com/pders01/nearby/internal/places"
)

func TestKeyHandler_ModifierKey(t *testing.T) {
	app, _, _ := newTestApp(t)

	assert.NotNil(t, app.keyHandler)
	assert.Equal(t, "ctrl+", app.keyHandler.modifierKey)
	assert.Equal(t, []string{"ctrl+s"}, app.keyHandler.keys.Search.Keys())
	assert.Equal(t, []string{"/"}, app.placeList.KeyMap.Filter.Keys())
}

func TestKeyHandler_CustomBindings(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Keys.Modifier = "alt"
	cfg.Keys.Bindings.Search = "n"
	cfg.Keys.Bindings.Filter = "f"
	engine := places.NewEngine(&fakeProvider{}, places.Options{POI: places.POI{Label: "Oslo"}})
	app := NewApp(cfg, Deps{Engine: engine, Categories: categories.Default()})
	defer app.Close()

	updatedModel, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}, Alt: true})
	updatedApp := updatedModel.(*App)
	assert.Equal(t, ViewSearch, updatedApp.view, "alt+n should open search")
	assert.Equal(t, []string{"f"}, updatedApp.placeList.KeyMap.Filter.Keys())
}

func TestKeyHandler_SanitizeSearchInput(t *testing.T) {
	app, _, _ := newTestApp(t)
	kh := app.keyHandler

	tests := []struct {
		in   string
		want string
	}{
		{"  coffee  ", "coffee"},
		{"thai\tfood", "thai food"},
		{"a   b\n c", "a b c"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, kh.sanitizeSearchInput(tt.in))
	}
}

func TestKeyHandler_HelpForView(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.view = ViewPlaces
	assert.Contains(t, app.keyHandler.GetHelpForCurrentView(), "ctrl+f: favorites")
	assert.NotContains(t, app.keyHandler.GetHelpForCurrentView(), "enter: details")

	app = withResults(t, app, "coffee", samplePlaces())
	assert.Contains(t, app.keyHandler.GetHelpForCurrentView(), "enter: details")

	app.view = ViewDetail
	assert.Contains(t, app.keyHandler.GetHelpForCurrentView(), "ctrl+g: map")
	assert.Contains(t, app.keyHandler.GetHelpForCurrentView(), "ctrl+y: copy address")
}

func TestKeyHandler_TypingInSearchDoesNotTriggerActions(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.view = ViewSearch
	app.searchInput.Focus()

	for _, r := range "quiet?" {
		updatedModel, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		app = updatedModel.(*App)
	}
	assert.Equal(t, ViewSearch, app.view)
	assert.Equal(t, "quiet?", app.searchInput.Value())
	assert.False(t, app.help.ShowAll)
}
