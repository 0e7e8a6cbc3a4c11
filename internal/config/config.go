package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Mutation MutationConfig `toml:"mutation"`
	Autosave AutosaveConfig `toml:"autosave"`
	Web      WebConfig      `toml:"web"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	DataDir      string `toml:"data_dir"`
	DatabasePath string `toml:"database_path"`
	SeedDir      string `toml:"seed_dir"`
}

// MutationConfig holds mutation pipeline settings
type MutationConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Timeout returns the configured bound as a duration; zero disables it
func (m MutationConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// AutosaveConfig holds the periodic durability sweep settings
type AutosaveConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"`
}

// WebConfig holds web server settings
type WebConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".journeyd")
	return &Config{
		General: GeneralConfig{
			DataDir:      dataDir,
			DatabasePath: filepath.Join(dataDir, "journeys.db"),
			SeedDir:      filepath.Join(dataDir, "agents"),
		},
		Mutation: MutationConfig{
			TimeoutSeconds: 10,
		},
		Autosave: AutosaveConfig{
			Enabled:  true,
			Schedule: "*/5 * * * *",
		},
		Web: WebConfig{
			Port: 8080,
			Host: "127.0.0.1",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Expand paths
	cfg.General.DataDir = ExpandPath(cfg.General.DataDir)
	cfg.General.DatabasePath = ExpandPath(cfg.General.DatabasePath)
	cfg.General.SeedDir = ExpandPath(cfg.General.SeedDir)

	return cfg, nil
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "journeyd", "config.toml")
}
