package tui

import "github.com/pders01/nearby/internal/events"

type View int

const (
	ViewPlaces View = iota
	ViewSearch
	ViewDetail
)

func (v View) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewDetail:
		return "detail"
	default:
		return "places"
	}
}

// eventMsg carries a bus event into the program. It is the only way events
// reach the engine.
type eventMsg struct {
	ev events.Event
}

type resolveMsg struct{}

type detailRenderedMsg struct {
	id      string
	content string
}

type errorMsg struct {
	err error
}

type statusMsg struct {
	text string
	kind StatusKind
}

type statusClearMsg struct {
	seq int
}

type openedMsg struct {
	url string
	err error
}

type copiedMsg struct {
	text string
	err  error
}
