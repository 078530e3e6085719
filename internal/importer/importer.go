// Package importer loads places from GeoRSS, Atom and RSS feeds into the
// store and the local search index.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pders01/nearby/internal/debuglog"
	"github.com/pders01/nearby/internal/plugins"
	"github.com/pders01/nearby/internal/search"
	"github.com/pders01/nearby/internal/storage"
	"github.com/pders01/nearby/internal/validation"
)

// Store is the part of storage.Backend the importer writes to.
type Store interface {
	SavePlaces(places []*storage.Place) error
	IsFavorite(id string) (bool, error)
}

// FeedResolver maps a link to the feed that lists its places.
type FeedResolver interface {
	ResolveFeed(ctx context.Context, url string) (*plugins.FeedInfo, error)
}

type Options struct {
	UserAgent    string
	Timeout      time.Duration
	AllowPrivate bool
	Index        search.Indexer
	Resolver     FeedResolver
}

type Importer struct {
	store        Store
	index        search.Indexer
	resolver     FeedResolver
	fetcher      *Fetcher
	parser       *Parser
	urlValidator *validation.URLValidator
	log          *debuglog.FieldLogger
}

// Result summarizes one import.
type Result struct {
	Source  string
	Title   string
	Places  []*storage.Place
	Skipped int
}

func New(store Store, opts Options) *Importer {
	validator := validation.NewURLValidator()
	if opts.AllowPrivate {
		validator = validation.NewPermissiveURLValidator()
	}
	return &Importer{
		store:        store,
		index:        opts.Index,
		resolver:     opts.Resolver,
		fetcher:      NewFetcher(opts.UserAgent, opts.Timeout),
		parser:       NewParser(),
		urlValidator: validator,
		log:          debuglog.Component("importer"),
	}
}

// Import fetches feedURL and stores every place it describes. Links a
// resolver recognizes are replaced by the feed it names first.
func (im *Importer) Import(ctx context.Context, feedURL string) (*Result, error) {
	var fallbackTitle string
	if im.resolver != nil {
		info, err := im.resolver.ResolveFeed(ctx, feedURL)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", feedURL, err)
		}
		feedURL, fallbackTitle = info.FeedURL, info.Title
	}

	normalized, err := im.urlValidator.ValidateAndNormalize(feedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed URL: %w", err)
	}

	body, err := im.fetcher.Fetch(ctx, normalized)
	if err != nil {
		return nil, err
	}
	res, err := im.ImportReader(bytes.NewReader(body), normalized)
	if err != nil {
		return nil, err
	}
	if res.Title == "" {
		res.Title = fallbackTitle
	}
	return res, nil
}

// ImportReader parses a feed from r. source scopes the generated place IDs.
func (im *Importer) ImportReader(r io.Reader, source string) (*Result, error) {
	parsed, err := im.parser.Parse(r, source)
	if err != nil {
		return nil, err
	}

	for _, p := range parsed.Places {
		fav, err := im.store.IsFavorite(p.ID)
		if err != nil {
			return nil, fmt.Errorf("checking favorite %s: %w", p.ID, err)
		}
		p.IsFavorite = fav
	}

	if len(parsed.Places) > 0 {
		if err := im.store.SavePlaces(parsed.Places); err != nil {
			return nil, fmt.Errorf("saving places: %w", err)
		}
		if im.index != nil {
			if err := im.index.Index(parsed.Places); err != nil {
				// The store stays authoritative.
				im.log.Warnf("indexing %d imported places: %v", len(parsed.Places), err)
			}
		}
	}

	im.log.Infof("imported %d places from %s (%d skipped)", len(parsed.Places), source, parsed.Skipped)
	return &Result{
		Source:  source,
		Title:   parsed.Title,
		Places:  parsed.Places,
		Skipped: parsed.Skipped,
	}, nil
}
