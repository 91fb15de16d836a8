// Package config defines sixseven's runtime configuration and how it is loaded.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ayusman/sixseven/internal/gesture"
)

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir holds the SQLite database.
	DataDir string `koanf:"data_dir"`

	// StaticDir, when set, is served at "/".
	StaticDir string `koanf:"static_dir"`

	// CameraID is the capture device index.
	CameraID int `koanf:"camera_id"`

	// Mirror flips frames horizontally before detection, as a selfie view.
	Mirror bool `koanf:"mirror"`

	// FPS is the frame pump rate. The motion window holds 30 frames, so 30
	// fps gives a window of about one second.
	FPS int `koanf:"fps"`

	// PluginDir is scanned for plugin.json manifests.
	PluginDir string `koanf:"plugin_dir"`

	// PluginTimeoutMS bounds one plugin execution.
	PluginTimeoutMS int `koanf:"plugin_timeout_ms"`

	// DefaultPlugin and DefaultAction run on detection when no binding is stored.
	DefaultPlugin string `koanf:"default_plugin"`
	DefaultAction string `koanf:"default_action"`

	// Tray enables the system tray menu.
	Tray bool `koanf:"tray"`

	// Seesaw pattern detector thresholds.
	MinSamples       int     `koanf:"min_samples"`
	MinZeroCrossings int     `koanf:"min_zero_crossings"`
	MinAmplitude     float64 `koanf:"min_amplitude"`
	OppositeRatio    float64 `koanf:"opposite_ratio"`
}

// New returns a Config populated with defaults.
func New() *Config {
	base := ".sixseven"
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, ".sixseven")
	}

	th := gesture.DefaultThresholds()
	return &Config{
		Addr:             ":8080",
		DataDir:          base,
		CameraID:         0,
		Mirror:           true,
		FPS:              30,
		PluginDir:        filepath.Join(base, "plugins"),
		PluginTimeoutMS:  5000,
		DefaultPlugin:    "system-control",
		DefaultAction:    "volume-up",
		MinSamples:       th.MinSamples,
		MinZeroCrossings: th.MinZeroCrossings,
		MinAmplitude:     th.MinAmplitude,
		OppositeRatio:    th.OppositeRatio,
	}
}

// Thresholds returns the detector thresholds described by c.
func (c *Config) Thresholds() gesture.Thresholds {
	return gesture.Thresholds{
		MinSamples:       c.MinSamples,
		MinZeroCrossings: c.MinZeroCrossings,
		MinAmplitude:     c.MinAmplitude,
		OppositeRatio:    c.OppositeRatio,
	}
}

// DBPath returns the path of the SQLite database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "sixseven.db")
}

// Validate checks c for values the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataDir == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.FPS)
	case c.PluginTimeoutMS <= 0:
		return fmt.Errorf("%w: plugin_timeout_ms must be positive, got %d", ErrInvalidConfig, c.PluginTimeoutMS)
	case c.MinSamples < 2 || c.MinSamples > gesture.HistoryCapacity:
		return fmt.Errorf("%w: min_samples must be between 2 and %d, got %d", ErrInvalidConfig, gesture.HistoryCapacity, c.MinSamples)
	case c.MinZeroCrossings < 0:
		return fmt.Errorf("%w: min_zero_crossings must not be negative, got %d", ErrInvalidConfig, c.MinZeroCrossings)
	case c.MinAmplitude < 0:
		return fmt.Errorf("%w: min_amplitude must not be negative, got %g", ErrInvalidConfig, c.MinAmplitude)
	case c.OppositeRatio < 0 || c.OppositeRatio > 1:
		return fmt.Errorf("%w: opposite_ratio must be within [0, 1], got %g", ErrInvalidConfig, c.OppositeRatio)
	}
	return nil
}
