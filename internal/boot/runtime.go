// Package boot provides runtime configuration and dependency wiring for the
// bridge process.
package boot

import (
	"fmt"
	"os"
	"time"

	"github.com/memohai/contactbridge/internal/config"
)

// RuntimeConfig holds parsed runtime settings. Values may be overridden by
// environment variables (HTTP_ADDR, STORE_PATH, JWT_SECRET).
type RuntimeConfig struct {
	ServerAddr     string
	JWTSecret      string
	StorePath      string
	BridgeWorkers  int
	BridgeQueue    int
	RequestTimeout time.Duration
}

// ProvideRuntimeConfig builds RuntimeConfig from the given config and
// applies env overrides.
func ProvideRuntimeConfig(cfg config.Config) (*RuntimeConfig, error) {
	ret := &RuntimeConfig{
		ServerAddr:    cfg.Server.Addr,
		JWTSecret:     cfg.Server.JWTSecret,
		StorePath:     cfg.Store.Path,
		BridgeWorkers: cfg.Bridge.Workers,
		BridgeQueue:   cfg.Bridge.QueueSize,
	}

	if cfg.Bridge.RequestTimeout != "" {
		timeout, err := time.ParseDuration(cfg.Bridge.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid bridge request timeout: %w", err)
		}
		ret.RequestTimeout = timeout
	}

	if value := os.Getenv("HTTP_ADDR"); value != "" {
		ret.ServerAddr = value
	}
	if value := os.Getenv("STORE_PATH"); value != "" {
		ret.StorePath = value
	}
	if value := os.Getenv("JWT_SECRET"); value != "" {
		ret.JWTSecret = value
	}
	return ret, nil
}
