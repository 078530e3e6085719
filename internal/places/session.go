package places

import (
	"github.com/pders01/nearby/internal/eventbus"
	"github.com/pders01/nearby/internal/events"
)

// Session owns the bus registrations feeding one engine. Every subscribed
// event is handed to inbox, which must serialize delivery onto the goroutine
// that drives the engine.
type Session struct {
	engine *Engine
	unsubs []func()
	closed bool
}

// NewSession subscribes inbox to every event kind the engine handles.
func NewSession(bus eventbus.Bus, engine *Engine, inbox func(events.Event)) *Session {
	s := &Session{engine: engine}
	for _, kind := range events.All() {
		s.unsubs = append(s.unsubs, bus.Subscribe(kind, eventbus.Handler(inbox)))
	}
	return s
}

func (s *Session) Engine() *Engine {
	return s.engine
}

// Close tears the session down: the outstanding load is cancelled first, then
// every registration is removed, then the engine state is cleared.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true

	s.engine.CancelPending()
	for _, unsubscribe := range s.unsubs {
		unsubscribe()
	}
	s.unsubs = nil
	s.engine.Close()
}
