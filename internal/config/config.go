// Package config loads the server configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// GoogleConfig holds the remote calendar provider settings.
type GoogleConfig struct {
	// CredentialsFile is the path to the service account credentials JSON.
	CredentialsFile string `yaml:"credentials_file"`
	// CalendarID is the provider calendar all events live on.
	CalendarID string `yaml:"calendar_id"`
}

// Config is the top-level server configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// DataDir holds the SQLite database.
	DataDir string `yaml:"data_dir"`

	// StaticDir holds the frontend files served at /.
	StaticDir string `yaml:"static_dir"`

	// SyncSchedule is a cron expression or "@every" interval for the
	// periodic reconciliation pass.
	SyncSchedule string `yaml:"sync_schedule"`

	// DevMode swaps the Google client for the in-process calendar, so the
	// server runs without provider credentials.
	DevMode bool `yaml:"dev_mode"`

	Google GoogleConfig `yaml:"google"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Listen:       ":8090",
		DataDir:      "/data",
		StaticDir:    "./static",
		SyncSchedule: "@every 15m",
	}
}

// Load reads the configuration from path. A missing file is not an error;
// defaults are returned so first runs work without any setup.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Listen == "" {
		return errors.New("config: listen address is required")
	}
	if !c.DevMode && (c.Google.CredentialsFile == "" || c.Google.CalendarID == "") {
		return errors.New("config: google credentials_file and calendar_id are required unless dev_mode is set")
	}
	return nil
}
