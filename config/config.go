// Package config loads and validates karsi configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration
type Config struct {
	Backend   Backend   `yaml:"backend"`
	Server    Server    `yaml:"server,omitempty"`
	Refresh   Refresh   `yaml:"refresh,omitempty"`
	Storage   Storage   `yaml:"storage,omitempty"`
	Telemetry Telemetry `yaml:"telemetry,omitempty"`
	LogLevel  string    `yaml:"log_level,omitempty"`
}

// Backend configures the optimization API client
type Backend struct {
	BaseURL       string        `yaml:"base_url"`
	SessionCookie string        `yaml:"session_cookie,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
}

// Server configures the dashboard HTTP listener
type Server struct {
	ListenAddr string `yaml:"listen_addr,omitempty"`
}

// Refresh configures the background snapshot daemon
type Refresh struct {
	Interval time.Duration `yaml:"interval,omitempty"`
}

// Storage configures the local snapshot store
type Storage struct {
	Dir string `yaml:"dir,omitempty"`
}

// Telemetry configures OTEL export
type Telemetry struct {
	Endpoint    string `yaml:"endpoint,omitempty"`
	Insecure    bool   `yaml:"insecure,omitempty"`
	ServiceName string `yaml:"service_name,omitempty"`
	Traces      bool   `yaml:"traces,omitempty"`
	Metrics     bool   `yaml:"metrics,omitempty"`
}

// LoadConfig loads configuration from file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with all defaults applied and no backend set.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 30 * time.Second
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Refresh.Interval == 0 {
		c.Refresh.Interval = 5 * time.Minute
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = ".karsi"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "karsi"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate ensures config has required fields
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative")
	}
	if c.Refresh.Interval < time.Second {
		return fmt.Errorf("refresh.interval must be at least 1s")
	}
	if (c.Telemetry.Traces || c.Telemetry.Metrics) && c.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint is required when traces or metrics are enabled")
	}
	return nil
}
