// Package config loads tempo's YAML settings file and applies environment
// overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfig   = "TEMPO_CONFIG"
	EnvDB       = "TEMPO_DB"
	EnvLogCalls = "TEMPO_LOG_CALLS"

	dirName  = ".tempo"
	fileName = "config.yaml"
	dbName   = "tempo.db"
)

// Config holds the user settings. Navigation values are fractions of the
// viewport unless noted.
type Config struct {
	// DBPath is the SQLite file. Empty means tempo.db next to the config file.
	DBPath string `yaml:"db_path"`

	// ChildFraction is the width share of the child pane in a split view.
	ChildFraction float64 `yaml:"child_fraction"`
	// TopMargin and BottomMargin extend task prefetching before and after
	// the visible range, as a share of its length.
	TopMargin    float64 `yaml:"top_margin"`
	BottomMargin float64 `yaml:"bottom_margin"`
	// VelocityThreshold is the fling speed, in surface units per second,
	// above which a release moves to the next anchor.
	VelocityThreshold float64 `yaml:"velocity_threshold"`
	// DragStep is how far one key press drags the surface.
	DragStep float64 `yaml:"drag_step"`

	// LogCalls logs every store call to stderr.
	LogCalls bool `yaml:"log_calls"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		ChildFraction:     0.3,
		TopMargin:         1,
		BottomMargin:      1,
		VelocityThreshold: 400,
		DragStep:          0.25,
	}
}

// Normalize replaces missing or out-of-range values with defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.ChildFraction <= 0 || c.ChildFraction >= 1 {
		c.ChildFraction = def.ChildFraction
	}
	if c.TopMargin < 0 {
		c.TopMargin = def.TopMargin
	}
	if c.BottomMargin < 0 {
		c.BottomMargin = def.BottomMargin
	}
	if c.VelocityThreshold <= 0 {
		c.VelocityThreshold = def.VelocityThreshold
	}
	if c.DragStep <= 0 || c.DragStep > 1 {
		c.DragStep = def.DragStep
	}
}

// DefaultPath returns ~/.tempo/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, dirName, fileName), nil
}

// Resolve loads the config file named by TEMPO_CONFIG (or the default
// path), then applies TEMPO_DB and TEMPO_LOG_CALLS. The returned path is the
// config file that was read.
func Resolve() (*Config, string, error) {
	path := os.Getenv(EnvConfig)
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, "", err
		}
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	cfg.applyEnv()
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(path), dbName)
	}
	return cfg, path, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvLogCalls); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.LogCalls = b
		}
	}
}

// Load reads the YAML file at path. A missing file is created with the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes cfg to path with 0600 permissions, replacing the file
// atomically.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tempo-config-*.tmp")
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
