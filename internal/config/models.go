package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	GitHub      ProviderConfig    `mapstructure:"github"`
	GitLab      ProviderConfig    `mapstructure:"gitlab"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.HTTP.RequestTimeout <= 0 {
		return errors.New("http.request_timeout must be positive")
	}
	if c.GitHub.URL == "" {
		return errors.New("github.url is required")
	}
	if c.GitLab.URL == "" {
		return errors.New("gitlab.url is required")
	}
	return nil
}

// ServerAddr returns host:port for HTTP server binding.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ServerConfig contains HTTP server options.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HTTPConfig contains transport settings.
// RequestTimeout bounds every upstream provider call.
type HTTPConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// ProviderConfig holds the endpoint and credentials of one upstream provider.
type ProviderConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// HasToken returns true if a token is configured.
func (p ProviderConfig) HasToken() bool {
	return p.Token != ""
}

// AggregationConfig points at the aggregation targets file.
type AggregationConfig struct {
	TargetsFile string `mapstructure:"targets_file"`
}
