// Package config resolves restfinder settings. Later sources win:
// built-in defaults, config.toml, .env and RESTFINDER_* environment
// variables, then command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/rendis/restfinder/internal/engine/api"
)

const (
	appDir     = "restfinder"
	fileName   = "config.toml"
	historyFile = "history.json"
	logFile    = "restfinder.log"
)

// Config fields map to config.toml keys and RESTFINDER_* variables.
type Config struct {
	APIURL      string   `toml:"api_url" envconfig:"RESTFINDER_API_URL"`
	PerPage     int      `toml:"per_page" envconfig:"RESTFINDER_PER_PAGE"`
	Timeout     Duration `toml:"timeout" envconfig:"RESTFINDER_TIMEOUT"`
	Fingerprint string   `toml:"fingerprint" envconfig:"RESTFINDER_FINGERPRINT"`
	Proxy       string   `toml:"proxy" envconfig:"RESTFINDER_PROXY"`
	HistoryPath string   `toml:"history_path" envconfig:"RESTFINDER_HISTORY_PATH"`
	ArchivePath string   `toml:"archive_path" envconfig:"RESTFINDER_ARCHIVE_PATH"` // empty disables the archive
	LogPath     string   `toml:"log_path" envconfig:"RESTFINDER_LOG_PATH"`
	Debug       bool     `toml:"debug" envconfig:"RESTFINDER_DEBUG"`
}

// Duration reads "30s" style values from both TOML and the environment.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Dir is <UserConfigDir>/restfinder.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting user config dir: %w", err)
	}
	return filepath.Join(base, appDir), nil
}

// DefaultPath is the config file location used when none is given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func Default() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return &Config{
		APIURL:      api.DefaultBaseURL,
		PerPage:     api.DefaultPerPage,
		Timeout:     Duration{30 * time.Second},
		Fingerprint: api.FingerprintNone,
		HistoryPath: filepath.Join(dir, historyFile),
		LogPath:     filepath.Join(dir, logFile),
	}, nil
}

// Load builds the configuration from defaults, the TOML file at path (the
// default location when empty), .env and the environment. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	_ = godotenv.Load()

	// Tags carry the full variable names, so no prefix is passed.
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("unmarshaling config %s: %w", path, err)
	}
	return nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("api_url must not be empty")
	}
	if c.PerPage <= 0 {
		return fmt.Errorf("per_page must be positive, got %d", c.PerPage)
	}
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Fingerprint {
	case api.FingerprintChrome, api.FingerprintNone:
	default:
		return fmt.Errorf("fingerprint must be %q or %q, got %q", api.FingerprintChrome, api.FingerprintNone, c.Fingerprint)
	}
	return nil
}

// ArchiveEnabled reports whether results should be archived locally.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchivePath != ""
}

// Save writes c as TOML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
