package config

import (
	"os"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpfile.Name()
}

func validConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:     "sqlite",
			DBPath:   "./data/test.db",
			Timezone: "UTC",
		},
		Palette: PaletteConfig{Colors: []string{"#fff", "#000"}},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
source:
  kind: sqlite
  db_path: "./data/cams.db"
  timezone: "UTC"

palette:
  colors: ["#ffffff", "#888888", "#000000"]

storage:
  retention: 720h
  cameras:
    - Front door
    - Garage

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Source.DBPath != "./data/cams.db" {
		t.Errorf("Unexpected db path: %s", cfg.Source.DBPath)
	}
	if len(cfg.Palette.Colors) != 3 {
		t.Errorf("Expected 3 colours, got %d", len(cfg.Palette.Colors))
	}
	if cfg.Storage.Retention != 720*time.Hour {
		t.Errorf("Unexpected retention: %v", cfg.Storage.Retention)
	}
	if len(cfg.Storage.Cameras) != 2 || cfg.Storage.Cameras[1] != "Garage" {
		t.Errorf("Unexpected cameras: %v", cfg.Storage.Cameras)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Location() = %v, %v, want UTC", loc, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: warn\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Source.Kind != "sqlite" {
		t.Errorf("default source.kind = %q, want sqlite", cfg.Source.Kind)
	}
	if len(cfg.Palette.Colors) != 5 || cfg.Palette.Colors[0] != "#E8E8F0" {
		t.Errorf("default palette = %v", cfg.Palette.Colors)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("default logging.format = %q, want text", cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "source:\n  kind: sqlite\n")
	t.Setenv("SMARTCAM_SOURCE_DB_PATH", "/tmp/override.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Source.DBPath != "/tmp/override.db" {
		t.Errorf("source.db_path = %q, want env override", cfg.Source.DBPath)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/smartcam.yaml"); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "unknown source kind", mutate: func(c *Config) { c.Source.Kind = "kafka" }, wantErr: true},
		{name: "missing db path", mutate: func(c *Config) { c.Source.DBPath = "" }, wantErr: true},
		{
			name: "file source without path",
			mutate: func(c *Config) {
				c.Source.Kind = "file"
				c.Source.FilePath = ""
			},
			wantErr: true,
		},
		{name: "bad timezone", mutate: func(c *Config) { c.Source.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "single colour palette", mutate: func(c *Config) { c.Palette.Colors = []string{"#fff"} }, wantErr: true},
		{name: "short retention", mutate: func(c *Config) { c.Storage.Retention = time.Hour }, wantErr: true},
		{name: "negative retention", mutate: func(c *Config) { c.Storage.Retention = -24 * time.Hour }, wantErr: true},
		{name: "daily retention", mutate: func(c *Config) { c.Storage.Retention = 24 * time.Hour }, wantErr: false},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
