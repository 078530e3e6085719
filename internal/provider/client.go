package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/nearby/internal/places"
	"github.com/pders01/nearby/internal/storage"
	"github.com/pders01/nearby/internal/validation"
)

const (
	defaultUserAgent = "nearby/1.0 (places search; github.com/pders01/nearby)"
	defaultTimeout   = 10 * time.Second
)

// Source looks places up somewhere, remote or local.
type Source interface {
	Search(ctx context.Context, phrase string, opts places.SearchOptions) ([]*storage.Place, error)
	Details(ctx context.Context, id string) (*storage.Place, error)
}

var (
	_ Source = (*Client)(nil)
	_ Source = (*LocalSource)(nil)
)

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
	// AllowPrivate permits localhost and private network base URLs.
	AllowPrivate bool
}

// Client talks to the places HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	apiKey    string
	userAgent string
}

// NewClient validates the base URL and builds a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	v := validation.NewURLValidator()
	if cfg.AllowPrivate {
		v = validation.NewPermissiveURLValidator()
	}
	base, err := v.ValidateBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("provider base_url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: cfg.Timeout},
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
	}, nil
}

// Search queries /places/search scoped by coordinates when known, else by the POI label.
func (c *Client) Search(ctx context.Context, phrase string, opts places.SearchOptions) ([]*storage.Place, error) {
	values := url.Values{}
	values.Set("query", phrase)
	if opts.HasCoords {
		values.Set("ll", strconv.FormatFloat(opts.Lat, 'f', 6, 64)+","+strconv.FormatFloat(opts.Lon, 'f', 6, 64))
	} else if near := strings.TrimSpace(strings.ReplaceAll(opts.Near, "+", " ")); near != "" {
		values.Set("near", near)
	}
	if opts.Limit > 0 {
		values.Set("limit", strconv.Itoa(opts.Limit))
	}

	var payload searchResponse
	if err := c.doURL(ctx, &url.URL{Path: "places/search", RawQuery: values.Encode()}, &payload); err != nil {
		return nil, err
	}

	out := make([]*storage.Place, 0, len(payload.Results))
	for _, dto := range payload.Results {
		if dto.ID == "" {
			continue
		}
		out = append(out, dto.toPlace())
	}
	return out, nil
}

// Details fetches a single place with its full attribute set.
func (c *Client) Details(ctx context.Context, id string) (*storage.Place, error) {
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, "/?#") {
		return nil, fmt.Errorf("%w: invalid place id %q", places.ErrRejected, id)
	}
	var dto placeDTO
	if err := c.doURL(ctx, &url.URL{Path: "places/" + id}, &dto); err != nil {
		return nil, err
	}
	if dto.ID == "" {
		dto.ID = id
	}
	p := dto.toPlace()
	p.ShowWebsite = p.Website != ""
	return p, nil
}

func (c *Client) doURL(ctx context.Context, rel *url.URL, dest any) error {
	base := *c.baseURL
	base.Path = strings.TrimRight(base.Path, "/") + "/"
	reqURL := base.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", places.ErrRejected, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		statusErr := &places.StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
		if statusErr.Temporary() {
			return fmt.Errorf("api %s: %w", rel.Path, statusErr)
		}
		return fmt.Errorf("api %s: %w: %w", rel.Path, places.ErrRejected, statusErr)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: decode response: %w", places.ErrRejected, err)
	}
	return nil
}
