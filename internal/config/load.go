package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"go-order-hub/internal/infrastructure/logger"
)

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. An empty path or a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Server.Addr = getEnv("ORDERHUB_HTTP_ADDR", cfg.Server.Addr)
	cfg.Server.ReadTimeout = getEnvDuration("ORDERHUB_HTTP_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.ShutdownTimeout = getEnvDuration("ORDERHUB_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	cfg.Store.Driver = getEnv("ORDERHUB_DB_DRIVER", cfg.Store.Driver)
	cfg.Store.DSN = getEnv("ORDERHUB_DB_DSN", cfg.Store.DSN)
	cfg.Store.MaxOpenConns = getEnvInt("ORDERHUB_DB_MAX_OPEN_CONNS", cfg.Store.MaxOpenConns)

	cfg.Hub.KeepAliveInterval = getEnvDuration("ORDERHUB_HUB_KEEPALIVE", cfg.Hub.KeepAliveInterval)
	cfg.Hub.SendBuffer = getEnvInt("ORDERHUB_HUB_SEND_BUFFER", cfg.Hub.SendBuffer)

	if v := os.Getenv("ORDERHUB_LOG_LEVEL"); v != "" {
		level, err := logger.ParseLevel(v)
		if err != nil {
			return err
		}
		cfg.Logger.Level = level
	}
	cfg.Logger.Format = getEnv("ORDERHUB_LOG_FORMAT", cfg.Logger.Format)
	cfg.Logger.Output = getEnv("ORDERHUB_LOG_OUTPUT", cfg.Logger.Output)
	cfg.Logger.FilePath = getEnv("ORDERHUB_LOG_FILE", cfg.Logger.FilePath)
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
