// Package plugins resolves links that are not feeds themselves, such as a
// map page, into a feed the importer can read places from.
package plugins

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/pders01/nearby/internal/debuglog"
)

// FeedInfo describes where the places behind a URL can be fetched.
type FeedInfo struct {
	OriginalURL string
	FeedURL     string
	// Title is used when the feed itself has none.
	Title    string
	Metadata map[string]string
}

// Plugin turns URLs from one site into feed URLs.
type Plugin interface {
	Name() string
	CanHandle(url string) bool
	// ResolveFeed may issue requests with client to discover the feed.
	ResolveFeed(ctx context.Context, url string, client *http.Client) (*FeedInfo, error)
	// Priority breaks ties when several plugins handle a URL; higher wins.
	Priority() int
}

type Registry struct {
	plugins []Plugin
	client  *http.Client
	log     *debuglog.FieldLogger
}

func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		client: &http.Client{Timeout: timeout},
		log:    debuglog.Component("plugins"),
	}
}

func (r *Registry) Register(plugin Plugin) {
	r.plugins = append(r.plugins, plugin)
}

// FindPlugin returns the highest priority plugin that handles url, or nil.
func (r *Registry) FindPlugin(url string) Plugin {
	var best Plugin
	highest := -1
	for _, p := range r.plugins {
		if p.CanHandle(url) && p.Priority() > highest {
			best = p
			highest = p.Priority()
		}
	}
	return best
}

// ResolveFeed asks the matching plugin for the feed behind url. Without one,
// url is assumed to be a feed already.
func (r *Registry) ResolveFeed(ctx context.Context, url string) (*FeedInfo, error) {
	p := r.FindPlugin(url)
	if p == nil {
		return &FeedInfo{OriginalURL: url, FeedURL: url, Metadata: map[string]string{}}, nil
	}
	info, err := p.ResolveFeed(ctx, url, r.client)
	if err != nil {
		return nil, err
	}
	r.log.Debugf("%s resolved %s to %s", p.Name(), url, info.FeedURL)
	return info, nil
}

// ListPlugins returns the registered plugins sorted by name.
func (r *Registry) ListPlugins() []Plugin {
	out := append([]Plugin(nil), r.plugins...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
