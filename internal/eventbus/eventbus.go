package eventbus

import (
	"runtime/debug"
	"sync"

	"github.com/pders01/nearby/internal/debuglog"
	"github.com/pders01/nearby/internal/events"
)

// Handler receives events of the kind it subscribed to.
type Handler func(events.Event)

// Bus is an in-process publish/subscribe channel keyed by event kind.
type Bus interface {
	Publish(event events.Event)
	Subscribe(kind events.Kind, handler Handler) func()
	Close()
}

type subscription struct {
	id      uint64
	handler Handler
}

// bus delivers events from a single dispatcher goroutine, so handlers observe
// events in publish order and never run concurrently with each other.
type bus struct {
	mu       sync.Mutex
	handlers map[events.Kind][]subscription
	nextID   uint64

	queue  []events.Event
	signal chan struct{}
	quit   chan struct{}
	closed bool
	wg     sync.WaitGroup
}

// New creates a bus and starts its dispatcher.
func New() Bus {
	b := &bus{
		handlers: make(map[events.Kind][]subscription),
		signal:   make(chan struct{}, 1),
		quit:     make(chan struct{}),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish enqueues event without blocking. Events published after Close are dropped.
func (b *bus) Publish(event events.Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		debuglog.Debugf("eventbus: dropping %s after close", event.Kind())
		return
	}
	b.queue = append(b.queue, event)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Subscribe registers handler for kind and returns its unsubscribe func.
// Unsubscribe is idempotent.
func (b *bus) Subscribe(kind events.Kind, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[kind] = append(b.handlers[kind], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[kind]
		for i, s := range subs {
			if s.id == id {
				b.handlers[kind] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher after it finishes the event in progress.
// Queued events that were not yet dispatched are discarded.
func (b *bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.queue = nil
	b.mu.Unlock()

	close(b.quit)
	b.wg.Wait()
}

func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case <-b.quit:
			return
		case <-b.signal:
		}

		for {
			event, handlers, ok := b.next()
			if !ok {
				break
			}
			for _, h := range handlers {
				b.call(h, event)
			}
		}
	}
}

// next pops the oldest event along with a snapshot of its current handlers.
func (b *bus) next() (events.Event, []Handler, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || len(b.queue) == 0 {
		return nil, nil, false
	}
	event := b.queue[0]
	b.queue[0] = nil
	b.queue = b.queue[1:]

	subs := b.handlers[event.Kind()]
	handlers := make([]Handler, len(subs))
	for i, s := range subs {
		handlers[i] = s.handler
	}
	return event, handlers, true
}

func (b *bus) call(h Handler, event events.Event) {
	defer func() {
		if r := recover(); r != nil {
			debuglog.Errorf("eventbus: handler for %s panicked: %v\n%s", event.Kind(), r, debug.Stack())
		}
	}()
	h(event)
}
