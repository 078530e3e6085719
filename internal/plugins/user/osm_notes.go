package user

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pders01/nearby/internal/plugins"
)

const (
	osmAPIBase = "https://api.openstreetmap.org"
	// The notes API refuses boxes larger than 25 square degrees.
	maxHalfSpan = 2.0
)

// OSMNotesPlugin turns an openstreetmap.org map link into the GeoRSS feed of
// map notes around the viewed position.
type OSMNotesPlugin struct {
	apiBase string
}

func NewOSMNotesPlugin() *OSMNotesPlugin {
	return &OSMNotesPlugin{apiBase: osmAPIBase}
}

func (p *OSMNotesPlugin) Name() string { return "osm-notes" }

func (p *OSMNotesPlugin) Priority() int { return 50 }

func (p *OSMNotesPlugin) CanHandle(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != "openstreetmap.org" {
		return false
	}
	_, _, _, ok := viewport(u)
	return ok
}

func (p *OSMNotesPlugin) ResolveFeed(_ context.Context, raw string, _ *http.Client) (*plugins.FeedInfo, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("osm-notes: %w", err)
	}
	zoom, lat, lon, ok := viewport(u)
	if !ok {
		return nil, fmt.Errorf("osm-notes: no map position in %s", raw)
	}

	half := math.Min(360/math.Pow(2, zoom), maxHalfSpan)
	bbox := fmt.Sprintf("%.5f,%.5f,%.5f,%.5f",
		clamp(lon-half, -180, 180), clamp(lat-half, -90, 90),
		clamp(lon+half, -180, 180), clamp(lat+half, -90, 90))

	feed := p.apiBase + "/api/0.6/notes/feed?bbox=" + url.QueryEscape(bbox)
	return &plugins.FeedInfo{
		OriginalURL: raw,
		FeedURL:     feed,
		Title:       fmt.Sprintf("OpenStreetMap notes near %.4f, %.4f", lat, lon),
		Metadata: map[string]string{
			"plugin": p.Name(),
			"bbox":   bbox,
		},
	}, nil
}

// viewport reads "#map=zoom/lat/lon", falling back to mlat/mlon query
// parameters at street zoom.
func viewport(u *url.URL) (zoom, lat, lon float64, ok bool) {
	for _, part := range strings.Split(u.Fragment, "&") {
		value, found := strings.CutPrefix(part, "map=")
		if !found {
			continue
		}
		fields := strings.Split(value, "/")
		if len(fields) != 3 {
			return 0, 0, 0, false
		}
		z, errZ := strconv.ParseFloat(fields[0], 64)
		la, errLat := strconv.ParseFloat(fields[1], 64)
		lo, errLon := strconv.ParseFloat(fields[2], 64)
		if errZ != nil || errLat != nil || errLon != nil {
			return 0, 0, 0, false
		}
		return z, la, lo, validCoords(la, lo)
	}

	q := u.Query()
	la, errLat := strconv.ParseFloat(q.Get("mlat"), 64)
	lo, errLon := strconv.ParseFloat(q.Get("mlon"), 64)
	if errLat != nil || errLon != nil {
		return 0, 0, 0, false
	}
	return 17, la, lo, validCoords(la, lo)
}

func validCoords(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
