package config

import (
	"fmt"
	"time"

	"go-order-hub/internal/infrastructure/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server *ServerConfig  `yaml:"server"`
	Store  *StoreConfig   `yaml:"store"`
	Hub    *HubConfig     `yaml:"hub"`
	Logger *logger.Config `yaml:"logger"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StoreConfig struct {
	Driver          string        `yaml:"driver"` // sqlite, postgres
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	PingTimeout     time.Duration `yaml:"ping_timeout"`
}

type HubConfig struct {
	CleanupInterval   time.Duration `yaml:"cleanup_interval"`
	KeepAliveInterval time.Duration `yaml:"keepalive_interval"`
	SendBuffer        int           `yaml:"send_buffer"`
}

func Default() *Config {
	return &Config{
		Server: &ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Store: &StoreConfig{
			Driver:          DriverSQLite,
			DSN:             "orders.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 15 * time.Minute,
			PingTimeout:     5 * time.Second,
		},
		Hub: &HubConfig{
			CleanupInterval:   30 * time.Second,
			KeepAliveInterval: 15 * time.Second,
			SendBuffer:        16,
		},
		Logger: logger.NewDefaultConfig(),
	}
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return fmt.Errorf("store dsn is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	if c.Hub.SendBuffer <= 0 {
		return fmt.Errorf("hub send_buffer must be positive, got %d", c.Hub.SendBuffer)
	}
	if c.Hub.CleanupInterval <= 0 || c.Hub.KeepAliveInterval <= 0 {
		return fmt.Errorf("hub intervals must be positive")
	}
	return nil
}
