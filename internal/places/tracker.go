package places

import (
	"context"

	"github.com/pders01/nearby/internal/events"
)

// FavoritesLoader starts an asynchronous favorites load that completes with an
// events.FavoritesLoaded carrying token.
type FavoritesLoader interface {
	LoadFavorites(ctx context.Context, token events.Token) error
}

// AsyncHandle identifies one outstanding favorites load.
type AsyncHandle struct {
	Token  events.Token
	cancel context.CancelFunc
}

// Tracker keeps at most one outstanding favorites load.
type Tracker struct {
	current *AsyncHandle
}

// StartFavoritesLoad cancels any outstanding load and issues a new one.
func (t *Tracker) StartFavoritesLoad(parent context.Context, loader FavoritesLoader) (AsyncHandle, error) {
	t.Cancel()

	ctx, cancel := context.WithCancel(parent)
	h := AsyncHandle{Token: events.NewToken(), cancel: cancel}
	if err := loader.LoadFavorites(ctx, h.Token); err != nil {
		cancel()
		return AsyncHandle{}, err
	}
	t.current = &h
	return h, nil
}

// Cancel requests cancellation of the outstanding load and forgets it.
func (t *Tracker) Cancel() {
	if t.current == nil {
		return
	}
	t.current.cancel()
	t.current = nil
}

// IsCurrent reports whether token belongs to the outstanding load.
func (t *Tracker) IsCurrent(token events.Token) bool {
	return t.current != nil && t.current.Token == token
}

// Outstanding reports whether a load is in progress.
func (t *Tracker) Outstanding() bool {
	return t.current != nil
}

// finish releases the handle for token after its completion was applied.
func (t *Tracker) finish(token events.Token) {
	if t.IsCurrent(token) {
		t.current.cancel()
		t.current = nil
	}
}
