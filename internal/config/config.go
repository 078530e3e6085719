package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pders01/nearby/internal/validation"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Places   PlacesConfig   `mapstructure:"places"`
	Provider ProviderConfig `mapstructure:"provider"`
	Network  NetworkConfig  `mapstructure:"network"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	UI       UIConfig       `mapstructure:"ui"`
	Launcher LauncherConfig `mapstructure:"launcher"`
	Keys     KeyConfig      `mapstructure:"keys"`
}

type DatabaseConfig struct {
	Driver      string        `mapstructure:"driver"`
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

// PlacesConfig describes the point of interest the session searches around.
type PlacesConfig struct {
	POI        string  `mapstructure:"poi"`
	Lat        float64 `mapstructure:"lat"`
	Lon        float64 `mapstructure:"lon"`
	FetchLimit int     `mapstructure:"fetch_limit"`
	Source     string  `mapstructure:"source"`
}

// HasCoords reports whether lat/lon were configured.
func (p PlacesConfig) HasCoords() bool {
	return p.Lat != 0 || p.Lon != 0
}

type ProviderConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	AllowPrivate bool          `mapstructure:"allow_private"`
}

type NetworkConfig struct {
	ProbeURL      string        `mapstructure:"probe_url"`
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type UIConfig struct {
	Colors UIColors     `mapstructure:"colors"`
	Detail DetailConfig `mapstructure:"detail"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type DetailConfig struct {
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

// LauncherConfig controls how websites and maps are opened outside the terminal.
type LauncherConfig struct {
	DefaultOpener string   `mapstructure:"default_opener"`
	Browsers      []string `mapstructure:"browsers"`
	MapURL        string   `mapstructure:"map_url"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit           string `mapstructure:"quit"`
	Search         string `mapstructure:"search"`
	Filter         string `mapstructure:"filter"`
	Favorites      string `mapstructure:"favorites"`
	Results        string `mapstructure:"results"`
	ToggleFavorite string `mapstructure:"toggle_favorite"`
	OpenWebsite    string `mapstructure:"open_website"`
	OpenMap        string `mapstructure:"open_map"`
	CopyAddress    string `mapstructure:"copy_address"`
	CancelSearch   string `mapstructure:"cancel_search"`
	Back           string `mapstructure:"back"`
	Help           string `mapstructure:"help"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".nearby")

	return &Config{
		Database: DatabaseConfig{
			Driver:      "bolt",
			Path:        filepath.Join(dataDir, "places.db"),
			Timeout:     1 * time.Second,
			SearchIndex: filepath.Join(dataDir, "index.bleve"),
		},
		Places: PlacesConfig{
			POI:        "Berlin",
			FetchLimit: 50,
			Source:     "remote",
		},
		Provider: ProviderConfig{
			BaseURL:     "https://api.foursquare.com/v3",
			HTTPTimeout: 15 * time.Second,
			UserAgent:   "nearby/1.0 (https://github.com/pders01/nearby)",
		},
		Network: NetworkConfig{
			ProbeURL:      "https://api.foursquare.com",
			ProbeInterval: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "off",
			File:  filepath.Join(dataDir, "nearby.log"),
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Detail: DetailConfig{
				WordWrapMaxWidth: 100,
				WordWrapMinWidth: 40,
			},
		},
		Launcher: LauncherConfig{
			DefaultOpener: getDefaultOpener(),
			Browsers:      defaultBrowsers(),
			MapURL:        "https://www.openstreetmap.org/?mlat={lat}&mlon={lon}#map=17/{lat}/{lon}",
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:           "q",
				Search:         "s",
				Filter:         "/",
				Favorites:      "f",
				Results:        "r",
				ToggleFavorite: "t",
				OpenWebsite:    "o",
				OpenMap:        "g",
				CopyAddress:    "y",
				CancelSearch:   "x",
				Back:           "esc",
				Help:           "?",
			},
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

func defaultBrowsers() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"start"}
	default:
		return []string{"firefox", "chromium", "google-chrome", "xdg-open"}
	}
}

// setDefaults registers every leaf key so env overrides such as
// NEARBY_PROVIDER_API_KEY reach nested values.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("database.driver", cfg.Database.Driver)
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.timeout", cfg.Database.Timeout)
	v.SetDefault("database.search_index", cfg.Database.SearchIndex)

	v.SetDefault("places.poi", cfg.Places.POI)
	v.SetDefault("places.lat", cfg.Places.Lat)
	v.SetDefault("places.lon", cfg.Places.Lon)
	v.SetDefault("places.fetch_limit", cfg.Places.FetchLimit)
	v.SetDefault("places.source", cfg.Places.Source)

	v.SetDefault("provider.base_url", cfg.Provider.BaseURL)
	v.SetDefault("provider.api_key", cfg.Provider.APIKey)
	v.SetDefault("provider.http_timeout", cfg.Provider.HTTPTimeout)
	v.SetDefault("provider.user_agent", cfg.Provider.UserAgent)
	v.SetDefault("provider.allow_private", cfg.Provider.AllowPrivate)

	v.SetDefault("network.probe_url", cfg.Network.ProbeURL)
	v.SetDefault("network.probe_interval", cfg.Network.ProbeInterval)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)

	c := cfg.UI.Colors
	for key, val := range map[string]string{
		"primary": c.Primary, "secondary": c.Secondary, "accent": c.Accent,
		"background": c.Background, "surface": c.Surface, "text": c.Text,
		"muted": c.Muted, "error": c.Error, "success": c.Success,
	} {
		v.SetDefault("ui.colors."+key, val)
	}
	v.SetDefault("ui.detail.word_wrap_max_width", cfg.UI.Detail.WordWrapMaxWidth)
	v.SetDefault("ui.detail.word_wrap_min_width", cfg.UI.Detail.WordWrapMinWidth)

	v.SetDefault("launcher.default_opener", cfg.Launcher.DefaultOpener)
	v.SetDefault("launcher.browsers", cfg.Launcher.Browsers)
	v.SetDefault("launcher.map_url", cfg.Launcher.MapURL)

	b := cfg.Keys.Bindings
	v.SetDefault("keys.modifier", cfg.Keys.Modifier)
	for key, val := range map[string]string{
		"quit": b.Quit, "search": b.Search, "filter": b.Filter,
		"favorites": b.Favorites, "results": b.Results, "toggle_favorite": b.ToggleFavorite,
		"open_website": b.OpenWebsite, "open_map": b.OpenMap, "copy_address": b.CopyAddress,
		"cancel_search": b.CancelSearch, "back": b.Back, "help": b.Help,
	} {
		v.SetDefault("keys.bindings."+key, val)
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "nearby")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("NEARBY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	expandPaths(&config)

	return &config, nil
}

// Validate rejects values the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "", "bolt", "bbolt", "sqlite":
	default:
		return fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver)
	}
	switch c.Places.Source {
	case "", "remote", "local":
	default:
		return fmt.Errorf("places.source: unsupported source %q", c.Places.Source)
	}
	if c.Places.FetchLimit < 0 {
		return fmt.Errorf("places.fetch_limit: must not be negative")
	}
	return nil
}

func expandPath(path string) string {
	if path == "" || path == ":memory:" {
		return path
	}
	if expanded, err := validation.ExpandHome(path); err == nil {
		path = expanded
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Logging.File = expandPath(cfg.Logging.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings for TOML readability
	v.Set("database", map[string]interface{}{
		"driver":       config.Database.Driver,
		"path":         config.Database.Path,
		"timeout":      config.Database.Timeout.String(),
		"search_index": config.Database.SearchIndex,
	})
	v.Set("places", map[string]interface{}{
		"poi":         config.Places.POI,
		"lat":         config.Places.Lat,
		"lon":         config.Places.Lon,
		"fetch_limit": config.Places.FetchLimit,
		"source":      config.Places.Source,
	})
	v.Set("provider", map[string]interface{}{
		"base_url":      config.Provider.BaseURL,
		"api_key":       config.Provider.APIKey,
		"http_timeout":  config.Provider.HTTPTimeout.String(),
		"user_agent":    config.Provider.UserAgent,
		"allow_private": config.Provider.AllowPrivate,
	})
	v.Set("network", map[string]interface{}{
		"probe_url":      config.Network.ProbeURL,
		"probe_interval": config.Network.ProbeInterval.String(),
	})
	v.Set("logging", map[string]interface{}{
		"level": config.Logging.Level,
		"file":  config.Logging.File,
	})
	v.Set("ui", config.UI)
	v.Set("launcher", config.Launcher)
	v.Set("keys", config.Keys)

	if _, err := validation.FilePath(path); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
