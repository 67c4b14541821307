// Package config holds the persistent application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/osintwatch/vigil/internal/feeds"
)

// Config is the persistent application configuration.
type Config struct {
	Poll    PollConfig    `yaml:"poll"`
	Sources SourcesConfig `yaml:"sources"`
	Alerts  AlertsConfig  `yaml:"alerts"`
}

// PollConfig controls per-source fetch cadence.
type PollConfig struct {
	EarthquakeInterval Duration `yaml:"earthquake_interval"`
	EventInterval      Duration `yaml:"event_interval"`
	SocialInterval     Duration `yaml:"social_interval"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "5m", "1h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// SourcesConfig selects what gets fetched.
type SourcesConfig struct {
	// USGS summary feed selection, e.g. "2.5" over "day".
	USGSMinMagnitude string `yaml:"usgs_min_magnitude"`
	USGSPeriod       string `yaml:"usgs_period"`

	// GDELT GEO query window.
	GdeltMaxPoints int    `yaml:"gdelt_max_points"`
	GdeltTimespan  string `yaml:"gdelt_timespan"`

	// Monitored Bluesky accounts. Empty means the built-in OSINT list.
	BlueskyAccounts []feeds.Account `yaml:"bluesky_accounts"`

	// RSS feeds treated as social accounts.
	RSSMirrors []RSSMirrorConfig `yaml:"rss_mirrors"`
}

// RSSMirrorConfig is one RSS feed monitored as a social account.
type RSSMirrorConfig struct {
	Name   string `yaml:"name"`
	Handle string `yaml:"handle"`
	URL    string `yaml:"url"`
}

// AlertsConfig controls alert delivery.
type AlertsConfig struct {
	StartMuted bool `yaml:"start_muted"`

	// NtfyURL is a full ntfy topic URL for push delivery. Empty
	// disables push.
	NtfyURL string `yaml:"ntfy_url"`

	// ArchivePath is the SQLite alert history location. Empty means
	// ~/.vigil/alerts.db.
	ArchivePath string `yaml:"archive_path"`
}

// Default returns sensible defaults.
func Default() *Config {
	return &Config{
		Poll: PollConfig{
			EarthquakeInterval: Duration{time.Minute},
			EventInterval:      Duration{10 * time.Minute},
			SocialInterval:     Duration{2 * time.Minute},
		},
		Sources: SourcesConfig{
			USGSMinMagnitude: "2.5",
			USGSPeriod:       "day",
			GdeltMaxPoints:   75,
			GdeltTimespan:    "24h",
		},
	}
}

// Path returns the config file location.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".vigil", "config.yaml")
}

// Load reads the config from the default location, falling back to
// defaults when the file does not exist.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads a config file. Missing file returns defaults; a file
// that fails to parse is an error rather than silently ignored.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// Save writes the config to its default location.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config to the given path, creating parent
// directories as needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Accounts returns the configured Bluesky accounts, or the built-in
// OSINT list when none are configured.
func (c *Config) Accounts() []feeds.Account {
	if len(c.Sources.BlueskyAccounts) > 0 {
		return c.Sources.BlueskyAccounts
	}
	return feeds.DefaultAccounts
}

// ArchivePath returns the alert history location with the default
// applied.
func (c *Config) ArchivePath() string {
	if c.Alerts.ArchivePath != "" {
		return c.Alerts.ArchivePath
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".vigil", "alerts.db")
}

// fillDefaults repairs zero values after a partial config file.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Poll.EarthquakeInterval.Duration <= 0 {
		c.Poll.EarthquakeInterval = def.Poll.EarthquakeInterval
	}
	if c.Poll.EventInterval.Duration <= 0 {
		c.Poll.EventInterval = def.Poll.EventInterval
	}
	if c.Poll.SocialInterval.Duration <= 0 {
		c.Poll.SocialInterval = def.Poll.SocialInterval
	}
	if c.Sources.USGSMinMagnitude == "" {
		c.Sources.USGSMinMagnitude = def.Sources.USGSMinMagnitude
	}
	if c.Sources.USGSPeriod == "" {
		c.Sources.USGSPeriod = def.Sources.USGSPeriod
	}
	if c.Sources.GdeltMaxPoints <= 0 {
		c.Sources.GdeltMaxPoints = def.Sources.GdeltMaxPoints
	}
	if c.Sources.GdeltTimespan == "" {
		c.Sources.GdeltTimespan = def.Sources.GdeltTimespan
	}
}
