// Package netwatch polls a probe URL and reports reachability changes.
package netwatch

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pders01/nearby/internal/debuglog"
	"github.com/pders01/nearby/internal/events"
)

const defaultProbeInterval = 30 * time.Second

// Publisher is the part of the event bus the watcher needs.
type Publisher interface {
	Publish(event events.Event)
}

// Prober checks whether the network is usable. A nil error means reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) error

func (f ProberFunc) Probe(ctx context.Context) error { return f(ctx) }

// HTTPProber issues a HEAD request against URL. Any HTTP response counts as
// reachable; only transport failures do not.
type HTTPProber struct {
	URL    string
	Client *http.Client
}

func NewHTTPProber(url string, timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProber{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (p *HTTPProber) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, http.NoBody)
	if err != nil {
		return fmt.Errorf("building probe request: %w", err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Watcher publishes events.NetworkAvailability whenever reachability changes.
// The first observation always counts as a change.
type Watcher struct {
	bus      Publisher
	prober   Prober
	interval time.Duration
	log      *debuglog.FieldLogger

	mu        sync.Mutex
	known     bool
	reachable bool
}

func New(bus Publisher, prober Prober, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	return &Watcher{
		bus:      bus,
		prober:   prober,
		interval: interval,
		log:      debuglog.Component("netwatch"),
	}
}

// Start launches the polling goroutine. It returns immediately and stops
// when ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			w.Check(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Check probes once and publishes on a transition. It reports the observed state.
func (w *Watcher) Check(ctx context.Context) bool {
	err := w.prober.Probe(ctx)
	if ctx.Err() != nil {
		// Shutting down; a cancelled probe says nothing about the network.
		return w.Reachable()
	}
	reachable := err == nil
	if err != nil {
		w.log.Debugf("probe failed: %v", err)
	}

	w.mu.Lock()
	changed := !w.known || w.reachable != reachable
	w.known = true
	w.reachable = reachable
	w.mu.Unlock()

	if changed {
		w.log.Infof("network reachable=%t", reachable)
		w.bus.Publish(events.NetworkAvailability{Reachable: reachable})
	}
	return reachable
}

// Reachable returns the last observed state; false before the first probe.
func (w *Watcher) Reachable() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.known && w.reachable
}
