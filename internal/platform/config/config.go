// Package config loads service configuration from a TOML file with
// environment overrides so main stays lean.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Project is one provisioned project in the config file.
type Project struct {
	ID          string `toml:"id"`
	APIToken    string `toml:"api_token"`
	Enabled     bool   `toml:"enabled"`
	ForceUpdate bool   `toml:"force_update"`
}

// Config captures everything the server and sweep commands need.
type Config struct {
	ListenAddr string `toml:"listen_addr"`
	RedcapURL  string `toml:"redcap_url"`
	BatchSize  int    `toml:"batch_size"`
	HookSecret string `toml:"hook_secret"`
	LogLevel   string `toml:"log_level"`

	// Optional backing stores; empty means in-memory.
	PostgresDSN string `toml:"postgres_dsn"`
	RedisURL    string `toml:"redis_url"`

	// ServerURL is the base URL the sweep command calls.
	ServerURL string `toml:"server_url"`

	Projects []Project `toml:"project"`
}

func defaults() Config {
	return Config{
		ListenAddr: ":8080",
		BatchSize:  50,
		LogLevel:   "info",
		ServerURL:  "http://localhost:8080",
	}
}

// Load reads the TOML file at path (skipped when path is empty) and applies
// environment overrides.
func Load(path string) (Config, error) {
	cfg := defaults()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("EPICSYNC_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("EPICSYNC_REDCAP_URL"); v != "" {
		cfg.RedcapURL = v
	}
	if v := os.Getenv("EPICSYNC_HOOK_SECRET"); v != "" {
		cfg.HookSecret = v
	}
	if v := os.Getenv("EPICSYNC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("EPICSYNC_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("EPICSYNC_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("EPICSYNC_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
}
