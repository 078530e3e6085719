package places

import (
	"context"
	"strings"

	"github.com/pders01/nearby/internal/debuglog"
	"github.com/pders01/nearby/internal/events"
	"github.com/pders01/nearby/internal/storage"
)

// SearchOptions scope a search to the session's POI.
type SearchOptions struct {
	Near      string
	Lat       float64
	Lon       float64
	HasCoords bool
	Limit     int
}

// Provider runs searches and favorites I/O out of band. Results come back as
// events on the bus; the returned error only reports a rejected submission.
type Provider interface {
	FavoritesLoader
	Search(ctx context.Context, phrase string, opts SearchOptions) error
	PersistFavorite(place *storage.Place)
}

// SearchState is the search half of the engine state.
type SearchState int

const (
	Idle SearchState = iota
	SearchInFlight
)

// FavoritesState is the favorites sub-state.
type FavoritesState int

const (
	FavoritesNotLoaded FavoritesState = iota
	FavoritesLoading
	FavoritesLoaded
)

// Options configure a new Engine.
type Options struct {
	POI        POI
	FetchLimit int
	Catalog    Catalog
}

// Engine reconciles search results, favorites loads, place modifications and
// network changes into one displayed list. It is not safe for concurrent use:
// every method must be called from the same goroutine.
type Engine struct {
	provider Provider
	poi      POI
	limit    int
	catalog  Catalog
	log      *debuglog.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc

	cache   Cache
	tracker Tracker

	search      SearchState
	favorites   FavoritesState
	lastPhrase  string
	retryPhrase string
	message     string
	progress    bool
	pendingShow bool
	closed      bool
}

// NewEngine returns an engine in the Idle, favorites-not-loaded state.
func NewEngine(provider Provider, opts Options) *Engine {
	if opts.Catalog == (Catalog{}) {
		opts.Catalog = DefaultCatalog()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		provider: provider,
		poi:      opts.POI,
		limit:    opts.FetchLimit,
		catalog:  opts.Catalog,
		log:      debuglog.Component("engine"),
		ctx:      ctx,
		cancel:   cancel,
		message:  opts.Catalog.SearchPrompt,
	}
}

func (e *Engine) POI() POI                       { return e.poi }
func (e *Engine) Catalog() Catalog               { return e.catalog }
func (e *Engine) SearchState() SearchState       { return e.search }
func (e *Engine) FavoritesState() FavoritesState { return e.favorites }
func (e *Engine) LastPhrase() string             { return e.lastPhrase }
func (e *Engine) RetryPhrase() string            { return e.retryPhrase }
func (e *Engine) Message() string                { return e.message }
func (e *Engine) Progress() bool                 { return e.progress }
func (e *Engine) Current() ListKind              { return e.cache.Current() }
func (e *Engine) Searched() []*storage.Place     { return e.cache.Searched() }
func (e *Engine) Favorited() []*storage.Place    { return e.cache.Favorited() }
func (e *Engine) Closed() bool                   { return e.closed }

// Find returns the held instance of the place with id from either list.
func (e *Engine) Find(id string) *storage.Place { return e.cache.Find(id) }

// Resolve replays the current projection and starts a background favorites
// load. Call it once the provider is ready to serve requests.
func (e *Engine) Resolve() Effects {
	if e.closed {
		return Effects{}
	}
	eff := Effects{Render: true, Progress: progressOf(e.progress)}
	if e.favorites != FavoritesLoading {
		e.startFavoritesLoad(&eff)
	}
	return eff
}

// SubmitSearch starts a search for phrase. A blank phrase clears the searched
// list instead and shows the search prompt.
func (e *Engine) SubmitSearch(phrase string) Effects {
	if e.closed {
		return Effects{}
	}
	e.retryPhrase = ""
	phrase = strings.TrimSpace(phrase)

	if phrase == "" {
		e.search = Idle
		e.lastPhrase = ""
		e.pendingShow = false
		e.progress = false
		e.cache.SetSearched(nil)
		e.cache.SwitchCurrent(ListSearched)
		e.message = e.catalog.SearchPrompt
		return Effects{Progress: ProgressOff, Render: true}
	}

	e.search = SearchInFlight
	e.lastPhrase = phrase
	e.progress = true

	opts := SearchOptions{
		Near:      e.poi.Label,
		Lat:       e.poi.Lat,
		Lon:       e.poi.Lon,
		HasCoords: e.poi.HasCoords,
		Limit:     e.limit,
	}
	if err := e.provider.Search(e.ctx, phrase, opts); err != nil {
		e.log.Warnf("search %q rejected at submission: %v", phrase, err)
	}
	return Effects{Progress: ProgressOn, Render: true}
}

// CancelSearch clears the search field and behaves like a blank submission.
func (e *Engine) CancelSearch() Effects {
	eff := e.SubmitSearch("")
	if !e.closed {
		eff.SetSearchField = true
		eff.SearchField = ""
	}
	return eff
}

// HandleSearchResult applies the outcome of a search.
func (e *Engine) HandleSearchResult(ev events.SearchResult) Effects {
	if e.closed {
		return Effects{}
	}
	e.search = Idle
	e.progress = false
	eff := Effects{Progress: ProgressOff}

	if ev.Err == nil {
		places := ev.Places
		if places == nil {
			places = []*storage.Place{}
		}
		e.lastPhrase = ""
		e.cache.SetSearched(places)
		e.cache.SwitchCurrent(ListSearched)
		e.message = e.catalog.NoResults
		eff.Render = true
		return eff
	}

	class := Classify(ev.Err)
	e.log.Infof("search %q failed (%s): %v", ev.Query, class, ev.Err)

	msg := e.catalog.Unrecoverable
	if class == Recoverable {
		msg = e.catalog.NoNetwork
		if ev.Query == e.lastPhrase {
			e.retryPhrase = e.lastPhrase
		}
	} else {
		e.lastPhrase = ""
	}

	// Keep whatever list is showing; only a view with nothing in it takes the message.
	eff.Render = true
	if e.cache.Searched() == nil && len(e.cache.CurrentItems()) == 0 {
		e.message = msg
	} else {
		eff.Notice = msg
	}
	return eff
}

// RequestFavorites shows the favorites list, loading it first when needed.
func (e *Engine) RequestFavorites() Effects {
	if e.closed {
		return Effects{}
	}
	if e.favorites == FavoritesLoaded && len(e.cache.Favorited()) > 0 {
		e.showFavorites()
		return Effects{Render: true}
	}

	e.pendingShow = true
	e.progress = true
	eff := Effects{Progress: ProgressOn, Render: true}
	e.startFavoritesLoad(&eff)
	return eff
}

// HandleFavoritesLoaded applies a favorites load completion. Completions for
// anything but the outstanding load are dropped.
func (e *Engine) HandleFavoritesLoaded(ev events.FavoritesLoaded) Effects {
	if e.closed {
		return Effects{}
	}
	if !e.tracker.IsCurrent(ev.Token) {
		e.log.Debugf("dropping stale favorites completion %s", ev.Token)
		return Effects{}
	}
	e.tracker.finish(ev.Token)

	var eff Effects
	if ev.Err != nil {
		e.log.Warnf("loading favorites failed: %v", ev.Err)
		e.favorites = FavoritesNotLoaded
		if e.pendingShow {
			e.pendingShow = false
			e.progress = false
			eff.Progress = ProgressOff
			eff.Notice = e.catalog.Unrecoverable
			eff.Render = true
		}
		return eff
	}

	e.favorites = FavoritesLoaded
	eff.Refresh = e.cache.SetFavorited(ev.Places)

	if e.pendingShow {
		e.pendingShow = false
		e.progress = false
		e.showFavorites()
		eff.Progress = ProgressOff
		eff.Render = true
	}
	return eff
}

// HandlePlaceModified swaps a modified place into the lists holding it without
// moving it, and asks for a refresh of that row only.
func (e *Engine) HandlePlaceModified(ev events.PlaceModified) Effects {
	if e.closed || ev.Place == nil {
		return Effects{}
	}
	held := e.cache.Find(ev.Place.ID)
	if held == nil {
		return Effects{}
	}

	modified := ev.Place.Clone()
	modified.ShowWebsite = false
	modified.IsFavorite = held.IsFavorite

	inSearched, inFavorited := e.cache.Replace(modified)
	if !inSearched && !inFavorited {
		return Effects{}
	}
	return Effects{Refresh: []string{modified.ID}}
}

// HandleNetwork reacts to a reachability transition.
func (e *Engine) HandleNetwork(ev events.NetworkAvailability) Effects {
	if e.closed {
		return Effects{}
	}
	empty := len(e.cache.CurrentItems()) == 0

	if !ev.Reachable {
		if !empty {
			return Effects{}
		}
		e.message = e.catalog.NoNetwork
		return Effects{Render: true}
	}

	if e.retryPhrase != "" {
		return Effects{
			RetryPhrase:    e.retryPhrase,
			Notice:         e.catalog.RetryPrompt(e.retryPhrase),
			SetSearchField: true,
			SearchField:    e.retryPhrase,
		}
	}

	e.message = e.defaultMessage()
	if !empty {
		return Effects{}
	}
	return Effects{Render: true}
}

// ToggleFavorite flips place's favorite flag, updates favorites membership and
// hands the new state to the provider for persistence.
func (e *Engine) ToggleFavorite(place *storage.Place) Effects {
	if e.closed || place == nil {
		return Effects{}
	}
	if held := e.cache.Find(place.ID); held != nil {
		place = held
	}
	e.cache.ToggleFavorite(place)
	e.provider.PersistFavorite(place.Clone())

	eff := Effects{Refresh: []string{place.ID}}
	if e.cache.Current() == ListFavorites {
		eff.Render = true
	}
	return eff
}

// ShowSearched switches back to the searched list.
func (e *Engine) ShowSearched() Effects {
	if e.closed {
		return Effects{}
	}
	e.pendingShow = false
	e.cache.SwitchCurrent(ListSearched)
	e.message = e.catalog.SearchPrompt
	if e.cache.Searched() != nil {
		e.message = e.catalog.NoResults
	}
	return Effects{Render: true}
}

// Select asks the view to show the details of place.
func (e *Engine) Select(place *storage.Place) Effects {
	if e.closed || place == nil {
		return Effects{}
	}
	return Effects{Navigate: &Navigation{Kind: NavigateDetail, Place: place, POI: e.poi}}
}

// OpenMap asks the view to show the current list on a map.
func (e *Engine) OpenMap() Effects {
	if e.closed {
		return Effects{}
	}
	return Effects{Navigate: &Navigation{Kind: NavigateMap, Places: e.cache.CurrentItems(), POI: e.poi}}
}

// Dispatch routes a bus event to its handler.
func (e *Engine) Dispatch(ev events.Event) Effects {
	switch ev := ev.(type) {
	case events.SearchResult:
		return e.HandleSearchResult(ev)
	case events.FavoritesLoaded:
		return e.HandleFavoritesLoaded(ev)
	case events.PlaceModified:
		return e.HandlePlaceModified(ev)
	case events.NetworkAvailability:
		return e.HandleNetwork(ev)
	default:
		e.log.Debugf("ignoring event of kind %v", ev.Kind())
		return Effects{}
	}
}

// CancelPending cancels the outstanding favorites load, if any.
func (e *Engine) CancelPending() {
	e.tracker.Cancel()
}

// Close cancels outstanding work and clears all state. Later calls are no-ops.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.tracker.Cancel()
	e.cancel()
	e.cache.Clear()
	e.search = Idle
	e.favorites = FavoritesNotLoaded
	e.lastPhrase = ""
	e.retryPhrase = ""
	e.message = ""
	e.progress = false
	e.pendingShow = false
	e.closed = true
}

func (e *Engine) showFavorites() {
	e.cache.SwitchCurrent(ListFavorites)
	e.message = e.catalog.NoFavorites
}

func (e *Engine) defaultMessage() string {
	if e.cache.Current() == ListFavorites {
		return e.catalog.NoFavorites
	}
	return e.catalog.SearchPrompt
}

func (e *Engine) startFavoritesLoad(eff *Effects) {
	if _, err := e.tracker.StartFavoritesLoad(e.ctx, e.provider); err != nil {
		e.log.Warnf("favorites load rejected: %v", err)
		e.favorites = FavoritesNotLoaded
		if e.pendingShow {
			e.pendingShow = false
			e.progress = false
			eff.Progress = ProgressOff
			eff.Notice = e.catalog.Unrecoverable
		}
		return
	}
	e.favorites = FavoritesLoading
}
