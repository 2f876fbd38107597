// Package config loads and validates the application configuration from a
// YAML file, with defaults and SNOWSTACK_* environment variable overrides.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"snowstack/internal/band"
)

// Config represents the complete application configuration.
type Config struct {
	Input   InputConfig   `mapstructure:"input"`
	Results ResultsConfig `mapstructure:"results"`
	Render  RenderConfig  `mapstructure:"render"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// InputConfig locates the source imagery.
type InputConfig struct {
	// DataDir is the root holding one subdirectory per month.
	DataDir string `mapstructure:"data_dir"`
	// BandFiles optionally overrides the source file name per band,
	// keyed by band name (blue, green, red, nir, swir).
	BandFiles map[string]string `mapstructure:"band_files"`
}

// ResultsConfig locates the pipeline outputs.
type ResultsConfig struct {
	StackDir      string `mapstructure:"stack_dir"`
	TrueColorDir  string `mapstructure:"true_color_dir"`
	FalseColorDir string `mapstructure:"false_color_dir"`
	ManifestPath  string `mapstructure:"manifest_path"`
}

// RenderConfig holds the true-color tone-mapping parameters.
type RenderConfig struct {
	BrightnessFactor float64 `mapstructure:"brightness_factor"`
	Gamma            float64 `mapstructure:"gamma"`
}

// ViewerConfig holds the viewer HTTP server configuration.
type ViewerConfig struct {
	ListenAddr     string   `mapstructure:"listen_addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// NotifyConfig holds the optional run-summary notification configuration.
type NotifyConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	setDefaults(v)

	v.SetEnvPrefix("SNOWSTACK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
// Directory defaults mirror the layout the viewer expects.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input.data_dir", "./data/Sentinel")

	v.SetDefault("results.stack_dir", "./Results")
	v.SetDefault("results.true_color_dir", "./Results/RGB")
	v.SetDefault("results.false_color_dir", "./Results/FalseColor")
	v.SetDefault("results.manifest_path", "./Results/manifest.json")

	v.SetDefault("render.brightness_factor", 1.2)
	v.SetDefault("render.gamma", 2.2)

	v.SetDefault("viewer.listen_addr", ":8080")
	v.SetDefault("viewer.allowed_origins", []string{"*"})

	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.max_retries", 3)
	v.SetDefault("notify.retry_delay_base", "1s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.Input.DataDir == "" {
		return fmt.Errorf("input.data_dir is required")
	}
	for name := range c.Input.BandFiles {
		if _, err := band.Parse(name); err != nil {
			return fmt.Errorf("input.band_files: %w", err)
		}
	}

	if c.Results.StackDir == "" {
		return fmt.Errorf("results.stack_dir is required")
	}
	if c.Results.TrueColorDir == "" {
		return fmt.Errorf("results.true_color_dir is required")
	}
	if c.Results.FalseColorDir == "" {
		return fmt.Errorf("results.false_color_dir is required")
	}
	if c.Results.ManifestPath == "" {
		return fmt.Errorf("results.manifest_path is required")
	}

	if c.Render.BrightnessFactor <= 0 {
		return fmt.Errorf("render.brightness_factor must be positive")
	}
	if c.Render.Gamma <= 0 {
		return fmt.Errorf("render.gamma must be positive")
	}

	if c.Viewer.ListenAddr == "" {
		return fmt.Errorf("viewer.listen_addr is required")
	}

	if c.Notify.Enabled {
		if c.Notify.BotToken == "" {
			return fmt.Errorf("notify.bot_token is required when notify is enabled")
		}
		if c.Notify.ChatID == "" {
			return fmt.Errorf("notify.chat_id is required when notify is enabled")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// BandFilenames converts the configured band file overrides into the typed
// map the compositor consumes.
func (c *Config) BandFilenames() map[band.Band]string {
	out := make(map[band.Band]string, len(c.Input.BandFiles))
	for name, file := range c.Input.BandFiles {
		b, err := band.Parse(name)
		if err != nil {
			continue // Validate rejects unknown names before this runs
		}
		out[b] = file
	}
	return out
}
