package main

import (
	"fmt"

	"github.com/pders01/nearby/internal/config"
	"github.com/pders01/nearby/internal/debuglog"
	"github.com/pders01/nearby/internal/eventbus"
	"github.com/pders01/nearby/internal/places"
	"github.com/pders01/nearby/internal/provider"
	"github.com/pders01/nearby/internal/search"
	"github.com/pders01/nearby/internal/storage"
)

// runtime holds the long-lived collaborators shared by every command.
type runtime struct {
	cfg     *config.Config
	store   storage.Backend
	index   *search.BleveIndex
	bus     eventbus.Bus
	service *provider.Service
}

func newRuntime(cfg *config.Config) (*runtime, error) {
	store, err := storage.Open(cfg.Database.Driver, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	rt := &runtime{cfg: cfg, store: store, bus: eventbus.New()}

	var searcher search.Searcher = search.NewEngine(store)
	if cfg.Database.SearchIndex != "" {
		idx, err := search.NewBleveIndex(store, cfg.Database.SearchIndex)
		if err != nil {
			debuglog.Warnf("search index unavailable, using in-memory ranking: %v", err)
		} else {
			rt.index = idx
			searcher = idx
			logIndexSize(idx)
		}
	}

	source, err := newSource(cfg, searcher, store)
	if err != nil {
		rt.Close()
		return nil, err
	}

	var opts []provider.Option
	if rt.index != nil {
		opts = append(opts, provider.WithIndex(rt.index))
	}
	rt.service = provider.NewService(source, store, rt.bus, opts...)
	return rt, nil
}

func newSource(cfg *config.Config, searcher search.Searcher, store storage.Backend) (provider.Source, error) {
	if cfg.Places.Source == "local" {
		return provider.NewLocalSource(searcher, store), nil
	}
	if cfg.Provider.APIKey == "" {
		debuglog.Warnf("provider.api_key is empty; remote searches will likely be rejected")
	}
	client, err := provider.NewClient(provider.ClientConfig{
		BaseURL:      cfg.Provider.BaseURL,
		APIKey:       cfg.Provider.APIKey,
		UserAgent:    cfg.Provider.UserAgent,
		Timeout:      cfg.Provider.HTTPTimeout,
		AllowPrivate: cfg.Provider.AllowPrivate,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func logIndexSize(s search.DebugStatser) {
	if n, err := s.DocCount(); err == nil {
		debuglog.Debugf("search index holds %d places", n)
	}
}

// poi builds the point of interest searches are centered on.
func (rt *runtime) poi() places.POI {
	return places.POI{
		Label:     rt.cfg.Places.POI,
		Lat:       rt.cfg.Places.Lat,
		Lon:       rt.cfg.Places.Lon,
		HasCoords: rt.cfg.Places.HasCoords(),
	}
}

func (rt *runtime) searchOptions() places.SearchOptions {
	poi := rt.poi()
	return places.SearchOptions{
		Near:      poi.Label,
		Lat:       poi.Lat,
		Lon:       poi.Lon,
		HasCoords: poi.HasCoords,
		Limit:     rt.cfg.Places.FetchLimit,
	}
}

func (rt *runtime) newEngine() *places.Engine {
	return places.NewEngine(rt.service, places.Options{
		POI:        rt.poi(),
		FetchLimit: rt.cfg.Places.FetchLimit,
	})
}

// Close tears down in reverse order of construction.
func (rt *runtime) Close() {
	if rt.service != nil {
		rt.service.Close()
	}
	rt.bus.Close()
	if rt.index != nil {
		if err := rt.index.Close(); err != nil {
			debuglog.Warnf("closing search index: %v", err)
		}
	}
	if err := rt.store.Close(); err != nil {
		debuglog.Warnf("closing database: %v", err)
	}
}
