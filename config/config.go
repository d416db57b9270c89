// Package config loads the vibetrail configuration file, falling back
// to sensible defaults when it is absent.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jackwu/vibetrail/scanner"
)

// envPath overrides the config file location when set.
const envPath = "VIBETRAIL_CONFIG"

// Config is the on-disk configuration. Every field is optional; zero
// values are replaced by defaults after loading.
type Config struct {
	Sessions struct {
		Claude   string `yaml:"claude"`
		Pi       string `yaml:"pi"`
		OpenCode string `yaml:"opencode"`
	} `yaml:"sessions"`

	StorePath string `yaml:"store_path"`

	Sync struct {
		URL   string `yaml:"url"`
		Token string `yaml:"token"`
	} `yaml:"sync"`

	// LinkWindow is how far back of a commit a session counts as
	// active, e.g. "30m".
	LinkWindow Duration `yaml:"link_window"`
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "30m" or "1h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Path returns the config file location: $VIBETRAIL_CONFIG when set,
// otherwise ~/.config/vibetrail/config.yaml.
func Path() string {
	if p := os.Getenv(envPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "vibetrail", "config.yaml")
}

// Load reads the config file at Path. A missing file yields defaults;
// a malformed file is an error.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads a config file from an explicit path, applying
// defaults for anything unset.
func LoadFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	home, _ := os.UserHomeDir()
	if c.Sessions.Claude == "" {
		c.Sessions.Claude = filepath.Join(home, ".claude", "projects")
	}
	if c.Sessions.Pi == "" {
		c.Sessions.Pi = filepath.Join(home, ".pi", "sessions")
	}
	if c.Sessions.OpenCode == "" {
		c.Sessions.OpenCode = filepath.Join(home, ".local", "share", "opencode", "storage")
	}
	if c.StorePath == "" {
		c.StorePath = filepath.Join(home, ".local", "share", "vibetrail", "vibetrail.db")
	}
	if c.LinkWindow <= 0 {
		c.LinkWindow = Duration(30 * time.Minute)
	}
}

// Dirs returns the scanner directories from this config.
func (c Config) Dirs() scanner.Dirs {
	return scanner.Dirs{
		Claude:   c.Sessions.Claude,
		Pi:       c.Sessions.Pi,
		OpenCode: c.Sessions.OpenCode,
	}
}
