package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Palette PaletteConfig `mapstructure:"palette"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SourceConfig selects where raw detection events come from
type SourceConfig struct {
	Kind     string `mapstructure:"kind"` // "sqlite" or "file"
	DBPath   string `mapstructure:"db_path"`
	FilePath string `mapstructure:"file_path"`
	Timezone string `mapstructure:"timezone"`
}

// PaletteConfig holds the colour ramp, lightest first
type PaletteConfig struct {
	Colors []string `mapstructure:"colors"`
}

// StorageConfig holds detection store maintenance settings
type StorageConfig struct {
	Retention time.Duration `mapstructure:"retention"` // 0 disables pruning
	Cameras   []string      `mapstructure:"cameras"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	// SMARTCAM_SOURCE_DB_PATH overrides source.db_path, etc.
	v.SetEnvPrefix("SMARTCAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
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

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("source.kind", "sqlite")
	v.SetDefault("source.db_path", "./data/smartcam.db")
	v.SetDefault("source.file_path", "./data/raw.json")
	v.SetDefault("source.timezone", "Local")

	v.SetDefault("palette.colors", []string{"#E8E8F0", "#b3cde0", "#6497b1", "#005b96", "#03396c"})

	v.SetDefault("storage.retention", "0s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "sqlite":
		if c.Source.DBPath == "" {
			return fmt.Errorf("source.db_path is required when source.kind is sqlite")
		}
	case "file":
		if c.Source.FilePath == "" {
			return fmt.Errorf("source.file_path is required when source.kind is file")
		}
	default:
		return fmt.Errorf("source.kind must be one of: sqlite, file")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("source.timezone is invalid: %w", err)
	}

	if len(c.Palette.Colors) < 2 {
		return fmt.Errorf("palette.colors must contain at least 2 colours")
	}

	if c.Storage.Retention < 0 || (c.Storage.Retention > 0 && c.Storage.Retention < 24*time.Hour) {
		return fmt.Errorf("storage.retention must be 0 or at least 24h")
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

// Location resolves source.timezone. An empty value means Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Source.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Source.Timezone)
}
