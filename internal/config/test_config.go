package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	defaults := defaultConfig()
	return &Config{
		Database: DatabaseConfig{
			Driver:  "bolt",
			Path:    ":memory:",
			Timeout: 1 * time.Second,
		},
		Places: PlacesConfig{
			POI:        "Test+City",
			FetchLimit: 10,
			Source:     "local",
		},
		Provider: ProviderConfig{
			BaseURL:      "http://127.0.0.1",
			HTTPTimeout:  5 * time.Second,
			UserAgent:    "nearby-test/1.0",
			AllowPrivate: true,
		},
		Network: NetworkConfig{
			ProbeInterval: 0,
		},
		Logging:  LoggingConfig{Level: "off"},
		UI:       defaults.UI,
		Launcher: defaults.Launcher,
		Keys:     defaults.Keys,
	}
}
