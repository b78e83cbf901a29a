// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from environment
// variables and an optional YAML config file.
//
// Loading order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all settings
//  2. Config file: optional YAML file for persistent settings
//  3. Environment variables: override any setting
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	API      APIConfig      `koanf:"api"`
	Alerting AlertingConfig `koanf:"alerting"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment variables:
//   - HTTP_PORT: Listen port (default: 3001)
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - KEEPALIVE_INTERVAL: SSE keepalive comment interval (default: 30s)
type ServerConfig struct {
	Port              int           `koanf:"port"`
	Host              string        `koanf:"host"`
	Timeout           time.Duration `koanf:"timeout"`
	KeepaliveInterval time.Duration `koanf:"keepalive_interval"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds DuckDB settings.
//
// Environment variables:
//   - DUCKDB_PATH: Database file path (default: /data/guardit.duckdb)
//   - DUCKDB_MAX_MEMORY: Memory limit (default: 1GB)
//   - DUCKDB_THREADS: Worker threads, 0 = NumCPU (default: 0)
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// APIConfig holds pagination limits for list endpoints.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// AlertingConfig holds keyword alerting and webhook notification settings.
//
// Environment variables:
//   - ALERT_WEBHOOK_URL: Webhook endpoint for escalated alerts (default: disabled)
//   - ALERT_WEBHOOK_TIMEOUT: Webhook request timeout (default: 10s)
//   - ALERT_WEBHOOK_MIN_INTERVAL: Rate limit between webhook calls (default: 1m)
type AlertingConfig struct {
	WebhookURL         string        `koanf:"webhook_url"`
	WebhookTimeout     time.Duration `koanf:"webhook_timeout"`
	WebhookMinInterval time.Duration `koanf:"webhook_min_interval"`
}

// SecurityConfig holds rate limiting and CORS settings.
//
// Environment variables:
//   - RATE_LIMIT_REQUESTS: Requests per window per IP (default: 100)
//   - RATE_LIMIT_WINDOW: Rate limit window (default: 1m)
//   - DISABLE_RATE_LIMIT: Turn rate limiting off (default: false)
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
//
// Environment variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: Include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
