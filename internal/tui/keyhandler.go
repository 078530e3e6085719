package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/nearby/internal/config"
	"github.com/pders01/nearby/internal/places"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
	keys        keyMap
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey, keys: newKeyMap(cfg.Keys)}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	// While the filter prompt is open every key belongs to the list.
	if kh.app.view == ViewPlaces && kh.app.placeList.SettingFilter() {
		return kh.delegateToCharm(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(msg); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	return kh.app.view == ViewSearch && kh.app.searchInput.Focused()
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return kh.app, tea.Quit
	case key.Matches(msg, kh.keys.Back):
		return kh.navigateBack()
	case msg.String() == "enter":
		return kh.submitSearch(kh.sanitizeSearchInput(kh.app.searchInput.Value()))
	case key.Matches(msg, kh.keys.CancelSearch):
		return kh.cancelSearch()
	default:
		newSearchInput, cmd := kh.app.searchInput.Update(msg)
		kh.app.searchInput = newSearchInput
		return kh.app, cmd
	}
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	// Global custom keys
	switch {
	case key.Matches(msg, kh.keys.Quit):
		return kh.app, tea.Quit, true
	case key.Matches(msg, kh.keys.Help):
		kh.app.help.ShowAll = !kh.app.help.ShowAll
		return kh.app, nil, true
	case key.Matches(msg, kh.keys.Back):
		if kh.app.view == ViewPlaces && kh.app.placeList.IsFiltered() {
			// esc clears an applied filter first
			return kh.app, nil, false
		}
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case key.Matches(msg, kh.keys.Search):
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	case key.Matches(msg, kh.keys.CancelSearch):
		model, cmd := kh.cancelSearch()
		return model, cmd, true
	case key.Matches(msg, kh.keys.Favorites):
		kh.app.view = ViewPlaces
		return kh.app, kh.app.apply(kh.app.engine.RequestFavorites()), true
	case key.Matches(msg, kh.keys.Results):
		kh.app.view = ViewPlaces
		return kh.app, kh.app.apply(kh.app.engine.ShowSearched()), true
	case key.Matches(msg, kh.keys.ToggleFavorite):
		return kh.app, kh.toggleFavorite(), true
	case key.Matches(msg, kh.keys.OpenWebsite):
		p := kh.app.selectedPlace()
		if p == nil {
			return kh.app, kh.app.setStatus(MsgNoSelection, StatusWarn), true
		}
		return kh.app, kh.app.openWebsite(p), true
	case key.Matches(msg, kh.keys.CopyAddress):
		p := kh.app.selectedPlace()
		switch {
		case p == nil:
			return kh.app, kh.app.setStatus(MsgNoSelection, StatusWarn), true
		case strings.TrimSpace(p.Address) == "":
			return kh.app, kh.app.setStatus(MsgNoAddress, StatusWarn), true
		}
		return kh.app, copyAddress(p), true
	case key.Matches(msg, kh.keys.OpenMap):
		return kh.app, kh.openMap(), true
	}

	// View-specific custom keys
	switch kh.app.view {
	case ViewPlaces:
		return kh.handlePlacesCustomKeys(msg)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handlePlacesCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() != "enter" {
		return kh.app, nil, false
	}
	// A pending retry takes the next enter.
	if phrase := kh.app.retryPhrase; phrase != "" {
		model, cmd := kh.submitSearch(phrase)
		return model, cmd, true
	}
	if p := kh.app.selectedPlace(); p != nil {
		return kh.app, kh.app.apply(kh.app.engine.Select(p)), true
	}
	return kh.app, nil, true
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewPlaces:
		kh.app.placeList, cmd = kh.app.placeList.Update(msg)
		return kh.app, cmd

	case ViewDetail:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	case ViewSearch:
		kh.app.searchInput.Focus()
		return kh.app, nil

	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) submitSearch(phrase string) (tea.Model, tea.Cmd) {
	kh.app.retryPhrase = ""
	kh.app.searchInput.Blur()
	kh.app.view = ViewPlaces
	return kh.app, kh.app.apply(kh.app.engine.SubmitSearch(phrase))
}

func (kh *KeyHandler) cancelSearch() (tea.Model, tea.Cmd) {
	kh.app.retryPhrase = ""
	kh.app.searchInput.Blur()
	kh.app.view = ViewPlaces
	cmd := kh.app.apply(kh.app.engine.CancelSearch())
	return kh.app, tea.Batch(cmd, kh.app.setStatus(MsgSearchCancelled, StatusInfo))
}

func (kh *KeyHandler) toggleFavorite() tea.Cmd {
	p := kh.app.selectedPlace()
	if p == nil {
		return kh.app.setStatus(MsgNoSelection, StatusWarn)
	}
	starred := !p.IsFavorite
	name := p.Name
	cmd := kh.app.apply(kh.app.engine.ToggleFavorite(p))
	return tea.Batch(cmd, kh.app.setStatus(MsgFavoriteToggled(name, starred), StatusSuccess))
}

func (kh *KeyHandler) openMap() tea.Cmd {
	if kh.app.view == ViewDetail && kh.app.detailPlace != nil {
		return kh.app.openMap(places.Navigation{
			Kind:  places.NavigateMap,
			Place: kh.app.detailPlace,
			POI:   kh.app.engine.POI(),
		})
	}
	return kh.app.apply(kh.app.engine.OpenMap())
}

// navigateBack implements smart back navigation
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSearch:
		kh.app.searchInput.Blur()
		kh.app.view = ViewPlaces
		return kh.app, nil

	case ViewDetail:
		kh.app.view = ViewPlaces
		kh.app.detailPlace = nil
		kh.app.viewport.SetContent("")
		return kh.app, nil

	case ViewPlaces:
		if kh.app.engine.Current() == places.ListFavorites {
			return kh.app, kh.app.apply(kh.app.engine.ShowSearched())
		}
		return kh.app, tea.Quit

	default:
		return kh.app, tea.Quit
	}
}

// enterSearchMode transitions to search view
func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	kh.app.previousView = kh.app.view
	kh.app.view = ViewSearch
	if kh.app.searchInput.Value() == "" {
		kh.app.searchInput.SetValue(kh.app.engine.LastPhrase())
	}
	kh.app.searchInput.CursorEnd()
	return kh.app, kh.app.searchInput.Focus()
}

// sanitizeSearchInput sanitizes and limits search input length
func (kh *KeyHandler) sanitizeSearchInput(input string) string {
	input = strings.TrimSpace(input)

	// Length limit for search queries
	if len(input) > 256 {
		input = input[:256]
	}

	// Remove newlines/tabs
	input = strings.ReplaceAll(input, "\n", " ")
	input = strings.ReplaceAll(input, "\r", " ")
	input = strings.ReplaceAll(input, "\t", " ")

	// Collapse multiple spaces
	for strings.Contains(input, "  ") {
		input = strings.ReplaceAll(input, "  ", " ")
	}

	return strings.TrimSpace(input)
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	k := kh.keys
	switch kh.app.view {
	case ViewPlaces:
		help := []string{helpEntry(k.Search)}
		if len(kh.app.rows) > 0 {
			help = append(help, "enter: details", helpEntry(k.ToggleFavorite), helpEntry(k.Filter))
		}
		if kh.app.engine.Current() == places.ListFavorites {
			help = append(help, helpEntry(k.Results))
		} else {
			help = append(help, helpEntry(k.Favorites))
		}
		return append(help, helpEntry(k.Help))

	case ViewSearch:
		return []string{"enter: search", "esc: back", helpEntry(k.CancelSearch)}

	case ViewDetail:
		return []string{
			helpEntry(k.OpenWebsite),
			helpEntry(k.OpenMap),
			helpEntry(k.CopyAddress),
			helpEntry(k.ToggleFavorite),
			"esc: back",
		}

	default:
		return []string{}
	}
}
