package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/nearby/internal/launcher"
	"github.com/pders01/nearby/internal/places"
	"github.com/pders01/nearby/internal/storage"
)

const statusTTL = 4 * time.Second

func resolve() tea.Cmd {
	return func() tea.Msg { return resolveMsg{} }
}

// fetchDetails asks the provider for fuller data on a place. The answer
// arrives later as a place-modified event.
func (a *App) fetchDetails(id string) tea.Cmd {
	if a.details == nil || id == "" {
		return nil
	}
	ctx := a.ctx
	return func() tea.Msg {
		fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := a.details.FetchDetails(fetchCtx, id); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return errorMsg{err: wrapErr("loading details", err)}
		}
		return nil
	}
}

// openURL hands url to the configured opener. Terminal openers take over
// the screen until they exit.
func (a *App) openURL(rawURL string) tea.Cmd {
	if a.launcher == nil {
		return func() tea.Msg { return openedMsg{url: rawURL, err: launcher.ErrNoOpener} }
	}
	inv, err := a.launcher.Prepare(rawURL)
	if err != nil {
		return func() tea.Msg { return openedMsg{url: rawURL, err: err} }
	}
	if inv.Terminal {
		return tea.ExecProcess(inv.Cmd, func(err error) tea.Msg {
			return openedMsg{url: inv.URL, err: err}
		})
	}
	return func() tea.Msg {
		return openedMsg{url: inv.URL, err: launcher.Start(inv)}
	}
}

func (a *App) openWebsite(p *storage.Place) tea.Cmd {
	url, err := launcher.WebsiteURL(p)
	if err != nil {
		return a.setStatus(MsgNoWebsite, StatusWarn)
	}
	return a.openURL(url)
}

func (a *App) openMap(nav places.Navigation) tea.Cmd {
	if a.launcher == nil {
		return a.setStatus(launcher.ErrNoOpener.Error(), StatusError)
	}
	return a.openURL(a.launcher.MapURL(nav))
}

func copyAddress(p *storage.Place) tea.Cmd {
	text := strings.TrimSpace(p.Address)
	return func() tea.Msg {
		return copiedMsg{text: text, err: clipboard.WriteAll(text)}
	}
}

// setStatus shows text in the status bar and schedules its removal.
func (a *App) setStatus(text string, kind StatusKind) tea.Cmd {
	a.status = text
	a.statusKind = kind
	a.statusSeq++
	seq := a.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}
