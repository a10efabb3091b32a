package app

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Default configuration values (spec §6 "Environment").
const (
	DefaultConfigLogFormat       = LogFormatText
	DefaultConfigServerHost      = "0.0.0.0"
	DefaultConfigServerPort      = 3000
	DefaultConfigShutdownTimeout = 5 * time.Second
	DefaultConfigServiceName     = "llm-openai-proxy"
	DefaultConfigServiceVersion  = "v1"
	DefaultConfigModels          = "custom-llm"

	// DefaultConfigIdleTimeout must be at least 255s to accommodate slow
	// "thinking" models that keep a streaming connection quiet for tens of
	// seconds without closing it (spec §5).
	DefaultConfigIdleTimeout = 255 * time.Second
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Host string `json:"host" validate:"hostname_rfc1123|ip"`
	Port uint16 `json:"port"`
}

// ShutdownConfig holds shutdown behavior configuration.
type ShutdownConfig struct {
	Timeout time.Duration `json:"timeout"`
}

// UpstreamConfig holds the single configured Chat Completions upstream
// (spec §4.1). An empty BaseURL signals echo mode.
type UpstreamConfig struct {
	BaseURL string `json:"base_url"`
	Key     string `json:"key,omitempty"`
}

// Config holds the application's configuration.
type Config struct {
	LogLevel  slog.Level     `json:"log_level"`
	LogFormat LogFormat      `json:"log_format" validate:"oneof=text json"`
	Server    ServerConfig   `json:"server"`
	Shutdown  ShutdownConfig `json:"shutdown"`
	Upstream  UpstreamConfig `json:"upstream"`

	// ServiceName is echoed back by GET / and GET /health, ServiceVersion
	// by GET / only (spec §6).
	ServiceName    string `json:"service_name" validate:"required"`
	ServiceVersion string `json:"service_version" validate:"required"`

	// Models backs GET /v1/models in echo mode (spec §6).
	Models []string `json:"models" validate:"min=1"`

	// ProxyKey, configured, requires x-proxy-key (OpenAI-shaped endpoints)
	// or x-api-key/Bearer (the Anthropic endpoint). Empty disables auth
	// entirely (spec §6 "Authentication").
	ProxyKey string `json:"proxy_key,omitempty"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultConfigServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultConfigServerPort
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultConfigShutdownTimeout
	}
	if c.ServiceName == "" {
		c.ServiceName = DefaultConfigServiceName
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = DefaultConfigServiceVersion
	}
	if len(c.Models) == 0 {
		c.Models = SplitModels(DefaultConfigModels)
	}
	return nil
}

// SplitModels parses the comma-separated MODELS environment value (spec §6).
func SplitModels(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the configuration using struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
