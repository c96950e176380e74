// Package config loads framecore's runtime configuration through viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"framecore/pkg/darkmode"
)

// EnvPrefix is prepended to every environment override, e.g.
// FRAMECORE_DARK_MODE_ALGORITHM.
const EnvPrefix = "FRAMECORE"

// Config holds the entire configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	DarkMode  DarkModeConfig  `mapstructure:"dark_mode" yaml:"dark_mode"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle" yaml:"lifecycle"`
	Viewport  ViewportConfig  `mapstructure:"viewport" yaml:"viewport"`
}

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig maps log levels to terminal color names.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// DarkModeConfig is the user-facing form of darkmode.Settings.
type DarkModeConfig struct {
	Algorithm                     string  `mapstructure:"algorithm" yaml:"algorithm"`
	ImagePolicy                   string  `mapstructure:"image_policy" yaml:"image_policy"`
	ForegroundBrightnessThreshold int     `mapstructure:"foreground_brightness_threshold" yaml:"foreground_brightness_threshold"`
	BackgroundBrightnessThreshold int     `mapstructure:"background_brightness_threshold" yaml:"background_brightness_threshold"`
	Contrast                      float64 `mapstructure:"contrast" yaml:"contrast"`
	Grayscale                     bool    `mapstructure:"grayscale" yaml:"grayscale"`
	ImageGrayscalePercent         float64 `mapstructure:"image_grayscale_percent" yaml:"image_grayscale_percent"`
}

// LifecycleConfig tunes the frame view update loop.
type LifecycleConfig struct {
	ResizeObserverLoopLimit int  `mapstructure:"resize_observer_loop_limit" yaml:"resize_observer_loop_limit"`
	ThrottlingEnabled       bool `mapstructure:"throttling_enabled" yaml:"throttling_enabled"`
}

// ViewportConfig holds page scale defaults and the rotation anchor point.
type ViewportConfig struct {
	ShrinksViewportContentToFit bool    `mapstructure:"shrinks_viewport_content_to_fit" yaml:"shrinks_viewport_content_to_fit"`
	DefaultMinimumScale         float64 `mapstructure:"default_minimum_scale" yaml:"default_minimum_scale"`
	DefaultMaximumScale         float64 `mapstructure:"default_maximum_scale" yaml:"default_maximum_scale"`
	AnchorX                     float64 `mapstructure:"anchor_x" yaml:"anchor_x"`
	AnchorY                     float64 `mapstructure:"anchor_y" yaml:"anchor_y"`
}

// NewDefaultConfig returns a configuration populated only from defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "framecore")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "red")

	// -- Dark mode --
	v.SetDefault("dark_mode.algorithm", "off")
	v.SetDefault("dark_mode.image_policy", "smart")
	v.SetDefault("dark_mode.foreground_brightness_threshold", 150)
	v.SetDefault("dark_mode.background_brightness_threshold", 205)
	v.SetDefault("dark_mode.contrast", 0.0)
	v.SetDefault("dark_mode.grayscale", false)
	v.SetDefault("dark_mode.image_grayscale_percent", 0.0)

	// -- Lifecycle --
	v.SetDefault("lifecycle.resize_observer_loop_limit", 16)
	v.SetDefault("lifecycle.throttling_enabled", true)

	// -- Viewport --
	v.SetDefault("viewport.shrinks_viewport_content_to_fit", false)
	v.SetDefault("viewport.default_minimum_scale", 1.0)
	v.SetDefault("viewport.default_maximum_scale", 1.0)
	v.SetDefault("viewport.anchor_x", 0.5)
	v.SetDefault("viewport.anchor_y", 0.0)
}

// BindEnv makes every key overridable through FRAMECORE_* environment
// variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// NewConfigFromViper unmarshals and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load reads the optional config file at path (skipped when empty), applies
// defaults and environment overrides, and returns the validated result.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return NewConfigFromViper(v)
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if err := c.DarkMode.Validate(); err != nil {
		return fmt.Errorf("dark_mode configuration invalid: %w", err)
	}
	if c.Lifecycle.ResizeObserverLoopLimit <= 0 {
		return fmt.Errorf("lifecycle.resize_observer_loop_limit must be a positive integer")
	}
	if c.Viewport.DefaultMinimumScale <= 0 || c.Viewport.DefaultMaximumScale < c.Viewport.DefaultMinimumScale {
		return fmt.Errorf("viewport scale defaults must satisfy 0 < min <= max")
	}
	if c.Viewport.AnchorX < 0 || c.Viewport.AnchorX > 1 || c.Viewport.AnchorY < 0 || c.Viewport.AnchorY > 1 {
		return fmt.Errorf("viewport anchor coordinates must be within [0, 1]")
	}
	return nil
}

// Validate checks the dark mode section.
func (d *DarkModeConfig) Validate() error {
	if _, err := darkmode.ParseInversionAlgorithm(d.Algorithm); err != nil {
		return err
	}
	if _, err := darkmode.ParseImagePolicy(d.ImagePolicy); err != nil {
		return err
	}
	if d.Contrast < -1 || d.Contrast > 1 {
		return fmt.Errorf("contrast must be between -1.0 and 1.0")
	}
	if d.ImageGrayscalePercent < 0 || d.ImageGrayscalePercent > 1 {
		return fmt.Errorf("image_grayscale_percent must be between 0.0 and 1.0")
	}
	return nil
}

// DarkModeSettings converts the dark mode section into the immutable
// settings snapshot a darkmode.Filter is built from. The section must have
// passed Validate.
func (c *Config) DarkModeSettings() darkmode.Settings {
	algo, _ := darkmode.ParseInversionAlgorithm(c.DarkMode.Algorithm)
	policy, _ := darkmode.ParseImagePolicy(c.DarkMode.ImagePolicy)
	return darkmode.Settings{
		Mode:                          algo,
		ImagePolicy:                   policy,
		ForegroundBrightnessThreshold: c.DarkMode.ForegroundBrightnessThreshold,
		BackgroundBrightnessThreshold: c.DarkMode.BackgroundBrightnessThreshold,
		Contrast:                      float32(c.DarkMode.Contrast),
		Grayscale:                     c.DarkMode.Grayscale,
		ImageGrayscalePercent:         float32(c.DarkMode.ImageGrayscalePercent),
	}
}
