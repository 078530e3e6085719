package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/nearby/internal/config"
	"github.com/pders01/nearby/internal/debuglog"
	"github.com/pders01/nearby/internal/eventbus"
	"github.com/pders01/nearby/internal/events"
	"github.com/pders01/nearby/internal/places"
)

// Run starts the interactive program and blocks until it exits. Bus events
// are forwarded into the program, so the engine only ever runs inside Update.
func Run(cfg *config.Config, bus eventbus.Bus, deps Deps, opts ...tea.ProgramOption) error {
	ApplyTheme(cfg.UI.Colors)

	app := NewApp(cfg, deps)
	defer app.Close()

	programOpts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}, opts...)
	p := tea.NewProgram(app, programOpts...)

	session := places.NewSession(bus, deps.Engine, func(ev events.Event) {
		p.Send(eventMsg{ev: ev})
	})

	_, err := p.Run()
	session.Close()
	if err != nil {
		debuglog.Errorf("program exited: %v", err)
		return wrapErr("running interface", err)
	}
	return nil
}
