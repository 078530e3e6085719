package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pders01/nearby/internal/debuglog"
	"github.com/pders01/nearby/internal/eventbus"
	"github.com/pders01/nearby/internal/events"
	"github.com/pders01/nearby/internal/places"
	"github.com/pders01/nearby/internal/search"
	"github.com/pders01/nearby/internal/storage"
)

var _ places.Provider = (*Service)(nil)

// Service implements places.Provider. Every request runs on its own goroutine
// and reports back by publishing an event on the bus.
type Service struct {
	source Source
	store  storage.Backend
	index  search.Indexer
	bus    eventbus.Bus
	log    *debuglog.FieldLogger

	retryAttempts int
	retryDelay    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Option customizes a Service.
type Option func(*Service)

// WithIndex keeps index up to date with every place the service sees.
func WithIndex(index search.Indexer) Option {
	return func(s *Service) { s.index = index }
}

// WithRetry sets how store writes are retried.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(s *Service) {
		s.retryAttempts = attempts
		s.retryDelay = baseDelay
	}
}

func NewService(source Source, store storage.Backend, bus eventbus.Bus, opts ...Option) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		source:        source,
		store:         store,
		bus:           bus,
		log:           debuglog.Component("provider"),
		retryAttempts: 3,
		retryDelay:    100 * time.Millisecond,
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search looks phrase up and publishes an events.SearchResult, unless ctx is
// cancelled first.
func (s *Service) Search(ctx context.Context, phrase string, opts places.SearchOptions) error {
	return s.spawn(ctx, func(ctx context.Context) {
		found, err := s.source.Search(ctx, phrase, opts)
		if ctx.Err() != nil {
			s.log.Debugf("search %q abandoned: %v", phrase, ctx.Err())
			return
		}
		if err != nil {
			s.bus.Publish(events.SearchResult{Query: phrase, Err: fmt.Errorf("search %q: %w", phrase, err)})
			return
		}
		s.remember(phrase, opts.Near, found)
		s.bus.Publish(events.SearchResult{Query: phrase, Places: found})
	})
}

// LoadFavorites reads favorites from the store and publishes an
// events.FavoritesLoaded for token. Nothing is published once ctx is cancelled.
func (s *Service) LoadFavorites(ctx context.Context, token events.Token) error {
	return s.spawn(ctx, func(ctx context.Context) {
		favs, err := s.store.GetFavorites()
		if ctx.Err() != nil {
			s.log.Debugf("favorites load %s cancelled", token)
			return
		}
		s.bus.Publish(events.FavoritesLoaded{Token: token, Places: favs, Err: err})
	})
}

// PersistFavorite saves or deletes place according to its flag. Failures are
// retried, then logged.
func (s *Service) PersistFavorite(place *storage.Place) {
	_ = s.spawn(s.ctx, func(ctx context.Context) {
		err := retryOperation(ctx, s.retryAttempts, s.retryDelay, func() error {
			if place.IsFavorite {
				return s.store.SaveFavorite(place)
			}
			return s.store.DeleteFavorite(place.ID)
		})
		if err != nil {
			s.log.Errorf("persisting favorite %s (favorite=%t) failed: %v", place.ID, place.IsFavorite, err)
		}
	})
}

// FetchDetails loads the full record for id and publishes it as an
// events.PlaceModified.
func (s *Service) FetchDetails(ctx context.Context, id string) error {
	return s.spawn(ctx, func(ctx context.Context) {
		place, err := s.details(ctx, id)
		if err != nil {
			s.log.Warnf("details for %s: %v", id, err)
			return
		}
		if err := s.store.SavePlaces([]*storage.Place{place}); err != nil {
			s.log.Warnf("caching details for %s: %v", id, err)
		}
		if ctx.Err() == nil {
			s.bus.Publish(events.PlaceModified{Place: place})
		}
	})
}

// details asks the source, except for imported places which only the store knows.
func (s *Service) details(ctx context.Context, id string) (*storage.Place, error) {
	if !storage.IsImported(id) {
		return s.source.Details(ctx, id)
	}
	place, err := s.store.GetPlace(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", places.ErrRejected, err)
	}
	place.ShowWebsite = place.Website != ""
	return place, nil
}

// Close cancels outstanding requests and waits for their goroutines.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Service) spawn(ctx context.Context, fn func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return places.ErrClosed
	}

	ctx, cancel := mergeCancel(ctx, s.ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		fn(ctx)
	}()
	return nil
}

// remember caches search results so they can be found offline later.
func (s *Service) remember(phrase, near string, found []*storage.Place) {
	ids := make([]string, 0, len(found))
	for _, p := range found {
		ids = append(ids, p.ID)
		if fav, err := s.store.IsFavorite(p.ID); err == nil && fav {
			p.IsFavorite = true
		}
	}
	if err := s.store.SavePlaces(found); err != nil {
		s.log.Warnf("caching %d places: %v", len(found), err)
	}
	if err := s.store.SaveSearch(&storage.SearchMetadata{Phrase: phrase, Near: near, ResultIDs: ids, SearchedAt: time.Now()}); err != nil {
		s.log.Warnf("recording search %q: %v", phrase, err)
	}
	if s.index != nil {
		if err := s.index.Index(found); err != nil {
			s.log.Warnf("indexing %d places: %v", len(found), err)
		}
	}
}

// mergeCancel returns a context cancelled when either parent is done.
func mergeCancel(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
