// Package config provides configuration loading and access for the overlay
// engine.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Engine    EngineConfig    `yaml:"engine"`
	Presets   PresetsConfig   `yaml:"presets"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Debug     DebugConfig     `yaml:"debug"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds frame pacing settings.
type ScreenConfig struct {
	TargetFPS int `yaml:"target_fps"`
}

// EngineConfig holds loop and platform-boundary parameters.
type EngineConfig struct {
	QueueSize      int     `yaml:"queue_size"`      // cursor sample ring capacity
	MaxFrameDT     float64 `yaml:"max_frame_dt"`    // seconds; longer stalls are clamped
	SurfaceTimeout float64 `yaml:"surface_timeout"` // seconds per surface creation attempt
	InputTimeout   float64 `yaml:"input_timeout"`   // seconds for input hook registration
	Seed           int64   `yaml:"seed"`            // jitter noise seed (0 = fixed default)
}

// PresetsConfig holds preset library settings.
type PresetsConfig struct {
	Dir    string `yaml:"dir"`
	Active string `yaml:"active"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds between stats emissions
	OutputDir   string  `yaml:"output_dir"`   // CSV output directory ("" = disabled)
}

// DebugConfig holds debug rendering toggles.
type DebugConfig struct {
	HUD bool `yaml:"hud"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	FrameInterval  time.Duration
	StatsInterval  time.Duration
	SurfaceTimeout time.Duration
	InputTimeout   time.Duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	fps := c.Screen.TargetFPS
	if fps < 1 {
		fps = 60
	}
	c.Derived.FrameInterval = time.Second / time.Duration(fps)

	window := c.Telemetry.StatsWindow
	if window <= 0 {
		window = 5
	}
	c.Derived.StatsInterval = time.Duration(window * float64(time.Second))

	surface := c.Engine.SurfaceTimeout
	if surface <= 0 {
		surface = 2
	}
	c.Derived.SurfaceTimeout = time.Duration(surface * float64(time.Second))

	input := c.Engine.InputTimeout
	if input <= 0 {
		input = 2
	}
	c.Derived.InputTimeout = time.Duration(input * float64(time.Second))

	if c.Engine.QueueSize < 16 {
		c.Engine.QueueSize = 16
	}
	if c.Engine.MaxFrameDT <= 0 {
		c.Engine.MaxFrameDT = 0.1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
