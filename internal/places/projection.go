package places

import "github.com/pders01/nearby/internal/storage"

// Progress is a change to the busy indicator carried by Effects.
type Progress int

const (
	ProgressUnchanged Progress = iota
	ProgressOn
	ProgressOff
)

func progressOf(on bool) Progress {
	if on {
		return ProgressOn
	}
	return ProgressOff
}

// NavigateKind names a screen the view should open.
type NavigateKind int

const (
	NavigateDetail NavigateKind = iota + 1
	NavigateMap
)

// Navigation asks the view to leave the list for a detail or map screen.
type Navigation struct {
	Kind   NavigateKind
	Place  *storage.Place
	Places []*storage.Place
	POI    POI
}

// Effects tell the view what changed after one engine call. The zero value
// means nothing to do.
type Effects struct {
	Progress Progress
	// Render asks for the whole list to be projected again.
	Render bool
	// Refresh lists IDs of rows whose contents changed in place.
	Refresh []string
	// Notice is a transient message shown without touching the list.
	Notice string
	// RetryPhrase is set once per reconnect while a failed search can be retried.
	RetryPhrase    string
	SetSearchField bool
	SearchField    string
	Navigate       *Navigation
}

// Empty reports whether e asks for nothing.
func (e Effects) Empty() bool {
	return e.Progress == ProgressUnchanged && !e.Render && len(e.Refresh) == 0 &&
		e.Notice == "" && e.RetryPhrase == "" && !e.SetSearchField && e.Navigate == nil
}

// ViewKind is the three-way display decision.
type ViewKind int

const (
	ShowEmpty ViewKind = iota
	ShowProgress
	ShowList
)

func (k ViewKind) String() string {
	switch k {
	case ShowProgress:
		return "progress"
	case ShowList:
		return "list"
	default:
		return "empty"
	}
}

// Projection is a by-value snapshot of what the list view should display.
type Projection struct {
	Kind    ViewKind
	Message string
	Items   []*storage.Place
	Title   string
	Current ListKind
	Busy    bool
}

// Project derives the display state. It has no side effects.
func (e *Engine) Project() Projection {
	items := e.cache.CurrentItems()
	p := Projection{
		Title:   e.catalog.Title(e.poi),
		Current: e.cache.Current(),
		Busy:    e.progress,
	}
	switch {
	case e.progress && len(items) == 0:
		p.Kind = ShowProgress
	case len(items) == 0:
		p.Kind = ShowEmpty
		p.Message = e.message
	default:
		p.Kind = ShowList
		p.Items = append([]*storage.Place(nil), items...)
	}
	return p
}
