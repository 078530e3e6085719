// Package launcher opens place websites and map links with external programs.
package launcher

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/pders01/nearby/internal/config"
	"github.com/pders01/nearby/internal/places"
	"github.com/pders01/nearby/internal/storage"
	"github.com/pders01/nearby/internal/validation"
)

var (
	ErrNoWebsite = errors.New("place has no website")
	ErrNoOpener  = errors.New("no application found to open URL")
)

const fallbackMapURL = "https://www.openstreetmap.org/?mlat={lat}&mlon={lon}#map=17/{lat}/{lon}"
const mapSearchURL = "https://www.openstreetmap.org/search?query={query}"

// Invocation is a prepared command. Terminal invocations take over the
// terminal and must be run in the foreground.
type Invocation struct {
	Cmd      *exec.Cmd
	Opener   string
	URL      string
	Terminal bool
}

type Launcher struct {
	registry      *Registry
	browser       string
	defaultOpener string
	mapURL        string
	urlValidator  *validation.URLValidator
}

func New(cfg config.LauncherConfig) *Launcher {
	registry, err := NewRegistry()
	if err != nil {
		registry = &Registry{openers: make(map[string]OpenerDefinition)}
	}
	_ = registry.LoadUserConfig("~/.config/nearby/openers.toml")

	l := &Launcher{
		registry:      registry,
		defaultOpener: cfg.DefaultOpener,
		mapURL:        cfg.MapURL,
		urlValidator:  validation.NewPermissiveURLValidator(),
	}
	if l.defaultOpener == "" {
		l.defaultOpener = platformOpener()
	}
	if l.mapURL == "" {
		l.mapURL = fallbackMapURL
	}
	for _, b := range cfg.Browsers {
		if registry.Available(b) {
			l.browser = b
			break
		}
	}
	if l.browser == "" {
		l.browser = l.defaultOpener
	}
	return l
}

func platformOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "start"
	default:
		return "xdg-open"
	}
}

// Browser is the program URLs are handed to.
func (l *Launcher) Browser() string { return l.browser }

// Prepare builds the command opening rawURL. A URL without a scheme gets https.
func (l *Launcher) Prepare(rawURL string) (*Invocation, error) {
	normalized, err := l.urlValidator.ValidateAndNormalize(rawURL)
	if err != nil {
		return nil, err
	}
	if l.browser == "" {
		return nil, ErrNoOpener
	}
	cmd, err := l.registry.Command(l.browser, normalized)
	if err != nil && l.browser != l.defaultOpener {
		cmd, err = l.registry.Command(l.defaultOpener, normalized)
	}
	if err != nil {
		return nil, err
	}
	def, _ := l.registry.Lookup(l.browser)
	return &Invocation{Cmd: cmd, Opener: l.browser, URL: normalized, Terminal: def.Terminal}, nil
}

// Start runs a non-terminal invocation detached.
func Start(inv *Invocation) error {
	if err := inv.Cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", inv.Opener, err)
	}
	go func() {
		_ = inv.Cmd.Wait()
	}()
	return nil
}

// WebsiteURL returns the place's website or ErrNoWebsite.
func WebsiteURL(place *storage.Place) (string, error) {
	if place == nil || strings.TrimSpace(place.Website) == "" {
		return "", ErrNoWebsite
	}
	return strings.TrimSpace(place.Website), nil
}

// MapURL centers the map on the first of: the selected place, the POI, or
// the first listed place with coordinates. Without any coordinates it
// searches for the POI label.
func (l *Launcher) MapURL(nav places.Navigation) string {
	if p := nav.Place; p != nil && hasCoords(p.Lat, p.Lon) {
		return l.expand(p.Lat, p.Lon)
	}
	if nav.POI.HasCoords {
		return l.expand(nav.POI.Lat, nav.POI.Lon)
	}
	for _, p := range nav.Places {
		if hasCoords(p.Lat, p.Lon) {
			return l.expand(p.Lat, p.Lon)
		}
	}
	return strings.ReplaceAll(mapSearchURL, "{query}", url.QueryEscape(nav.POI.DisplayLabel()))
}

func (l *Launcher) expand(lat, lon float64) string {
	r := strings.NewReplacer(
		"{lat}", strconv.FormatFloat(lat, 'f', 6, 64),
		"{lon}", strconv.FormatFloat(lon, 'f', 6, 64),
	)
	return r.Replace(l.mapURL)
}

func hasCoords(lat, lon float64) bool {
	return lat != 0 || lon != 0
}
