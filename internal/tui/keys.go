package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/pders01/nearby/internal/config"
)

// keyMap holds the configurable bindings. Action keys are prefixed with the
// modifier; quit, filter, back and help are plain keys.
type keyMap struct {
	Quit           key.Binding
	Search         key.Binding
	Filter         key.Binding
	Favorites      key.Binding
	Results        key.Binding
	ToggleFavorite key.Binding
	OpenWebsite    key.Binding
	OpenMap        key.Binding
	CopyAddress    key.Binding
	CancelSearch   key.Binding
	Back           key.Binding
	Help           key.Binding
}

func newKeyMap(cfg config.KeyConfig) keyMap {
	mod := cfg.Modifier + "+"
	b := cfg.Bindings
	modified := func(k, desc string) key.Binding {
		return key.NewBinding(key.WithKeys(mod+k), key.WithHelp(mod+k, desc))
	}
	plain := func(k, desc string, extra ...string) key.Binding {
		return key.NewBinding(key.WithKeys(append([]string{k}, extra...)...), key.WithHelp(k, desc))
	}
	return keyMap{
		Quit:           plain(b.Quit, "quit", "ctrl+c"),
		Search:         modified(b.Search, "search"),
		Filter:         plain(b.Filter, "filter"),
		Favorites:      modified(b.Favorites, "favorites"),
		Results:        modified(b.Results, "results"),
		ToggleFavorite: modified(b.ToggleFavorite, "star"),
		OpenWebsite:    modified(b.OpenWebsite, "website"),
		OpenMap:        modified(b.OpenMap, "map"),
		CopyAddress:    modified(b.CopyAddress, "copy address"),
		CancelSearch:   modified(b.CancelSearch, "clear search"),
		Back:           plain(b.Back, "back"),
		Help:           plain(b.Help, "help"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Favorites, k.ToggleFavorite, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.CancelSearch, k.Filter},
		{k.Favorites, k.Results, k.ToggleFavorite},
		{k.OpenWebsite, k.OpenMap, k.CopyAddress},
		{k.Back, k.Help, k.Quit},
	}
}

func helpEntry(b key.Binding) string {
	h := b.Help()
	return h.Key + ": " + h.Desc
}
