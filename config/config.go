// Package config loads client configuration from TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full client configuration.
type Config struct {
	API    APIConfig    `toml:"api"`
	Notify NotifyConfig `toml:"notify"`
	Log    LogConfig    `toml:"log"`
}

// APIConfig configures the review service endpoint.
type APIConfig struct {
	// BaseURL is the service API base, e.g. "https://example.org/api/v2".
	BaseURL string `toml:"base_url"`

	// APIKey is sent as the apiKey header when set.
	APIKey string `toml:"api_key"`

	// Timeout bounds a single request. Default 30s.
	Timeout duration `toml:"timeout"`

	// ClusterPointLimit caps the points returned per cluster fetch.
	// Default 25.
	ClusterPointLimit int `toml:"cluster_point_limit"`
}

// NotifyConfig configures the staleness invalidation source. At most one
// of NATS, websocket, or poll should be set; all empty disables push
// invalidation.
type NotifyConfig struct {
	// NATSURL enables the NATS source when set.
	NATSURL string `toml:"nats_url"`

	// Subject is the NATS subject to subscribe to.
	Subject string `toml:"subject"`

	// WebsocketURL enables the websocket source when set.
	WebsocketURL string `toml:"websocket_url"`

	// PollInterval enables the ticker source when positive.
	PollInterval duration `toml:"poll_interval"`
}

// LogConfig configures console logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default info.
	Level string `toml:"level"`
}

// duration wraps time.Duration for TOML string values like "30s".
type duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		API: APIConfig{
			Timeout:           duration(30 * time.Second),
			ClusterPointLimit: 25,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// StandardPaths returns the config file locations in priority order.
func StandardPaths() []string {
	paths := []string{"reviewkit.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "reviewkit", "config.toml"))
	}
	return paths
}

// Load reads configuration from the given path, applying defaults for
// absent fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadStandard tries the standard paths in order, returning defaults if
// no file exists.
func LoadStandard() (Config, error) {
	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

// Validate checks the configuration for inconsistencies.
func (c Config) Validate() error {
	if c.API.ClusterPointLimit < 0 {
		return fmt.Errorf("cluster_point_limit must not be negative")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.Notify.NATSURL != "" && c.Notify.WebsocketURL != "" {
		return fmt.Errorf("configure at most one of nats_url and websocket_url")
	}
	if c.Notify.NATSURL != "" && c.Notify.Subject == "" {
		return fmt.Errorf("nats_url requires a subject")
	}
	return nil
}
