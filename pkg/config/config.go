// Package config loads the snapjoin settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/chazu/snapjoin/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk settings file.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Scene  SceneConfig  `yaml:"scene"`
	Window WindowConfig `yaml:"window"`
}

// LogConfig selects the logger level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// SceneConfig points at the scene script and controls hot reload.
type SceneConfig struct {
	Path     string        `yaml:"path"`
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

// WindowConfig sizes the desktop window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Scene: SceneConfig{
			Path:     "examples/stack.snap",
			Watch:    true,
			Debounce: 100 * time.Millisecond,
		},
		Window: WindowConfig{Title: "snapjoin", Width: 1280, Height: 800},
	}
}

// Load reads path over the defaults. A missing file yields the defaults;
// an unreadable or malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the rest of the program cannot use.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log format %q must be text or json", c.Log.Format)
	}
	if c.Scene.Debounce < 0 {
		return fmt.Errorf("scene debounce %s is negative", c.Scene.Debounce)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	return nil
}

// Logging converts the log section into a logging.Config.
func (c Config) Logging() logging.Config {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	return logging.Config{Level: level, JSON: c.Log.Format == "json"}
}
