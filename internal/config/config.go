// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath     = "config.toml"
	DefaultHTTPAddr       = "127.0.0.1:8080"
	DefaultStorePath      = "contacts.db"
	DefaultBridgeWorkers  = 10
	DefaultBridgeQueue    = 1000
	DefaultRequestTimeout = "30s"
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Bridge BridgeConfig `toml:"bridge"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP listen address and the optional JWT secret.
// An empty secret leaves the API unauthenticated.
type ServerConfig struct {
	Addr      string `toml:"addr"`
	JWTSecret string `toml:"jwt_secret"`
}

// StoreConfig holds the contact database path.
type StoreConfig struct {
	Path string `toml:"path"`
}

// BridgeConfig bounds the dispatcher pool. RequestTimeout is a duration
// string (e.g. 30s); empty disables per-call deadlines.
type BridgeConfig struct {
	Workers        int    `toml:"workers"`
	QueueSize      int    `toml:"queue_size"`
	RequestTimeout string `toml:"request_timeout"`
}

// Load reads and parses the TOML config file at path and applies default
// values for missing fields. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Store: StoreConfig{
			Path: DefaultStorePath,
		},
		Bridge: BridgeConfig{
			Workers:        DefaultBridgeWorkers,
			QueueSize:      DefaultBridgeQueue,
			RequestTimeout: DefaultRequestTimeout,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
