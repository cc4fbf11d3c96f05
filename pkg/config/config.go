// Package config loads daemon configuration from TOML with environment
// variable expansion.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the daemon configuration
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Memory     MemoryConfig     `toml:"memory"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Tracing    TracingConfig    `toml:"tracing"`
	Logging    LoggingConfig    `toml:"logging"`
	Summarizer SummarizerConfig `toml:"summarizer"`
}

// ServerConfig configures the HTTP listener. An empty AuthToken leaves the
// endpoint open.
type ServerConfig struct {
	Listen    string `toml:"listen"`
	AuthToken string `toml:"auth_token"`
}

// MemoryConfig configures the conversation store
type MemoryConfig struct {
	RecentWindow int `toml:"recent_window"`
}

// MetricsConfig configures the Prometheus scrape endpoint
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// TracingConfig configures OTLP trace export
type TracingConfig struct {
	Enabled     bool              `toml:"enabled"`
	Exporter    string            `toml:"exporter"` // otlp-grpc, otlp-http, noop
	Endpoint    string            `toml:"endpoint"`
	Insecure    bool              `toml:"insecure"`
	SampleRate  float64           `toml:"sample_rate"`
	Environment string            `toml:"environment"`
	Headers     map[string]string `toml:"headers"`
}

// LoggingConfig configures the structured logger
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
}

// SummarizerConfig configures the conversation summarizer backend
type SummarizerConfig struct {
	Provider string `toml:"provider"` // openai, anthropic or empty to disable
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	Language string `toml:"language"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Listen: ":8080"},
		Memory:  MemoryConfig{RecentWindow: 6},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
		Tracing: TracingConfig{Exporter: "noop", SampleRate: 1.0},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads config from the given path, expanding ${VAR} references
// against the environment. Missing fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if _, err := toml.Decode(expandEnvVars(string(data)), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// Validate checks that required config fields are present and valid.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if c.Memory.RecentWindow < 1 {
		return fmt.Errorf("memory.recent_window must be at least 1")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json")
	}
	switch c.Tracing.Exporter {
	case "otlp-grpc", "otlp-http", "noop", "":
	default:
		return fmt.Errorf("tracing.exporter must be otlp-grpc, otlp-http or noop")
	}
	if c.Tracing.Enabled && c.Tracing.Exporter != "noop" && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
	}
	switch c.Summarizer.Provider {
	case "", "openai", "anthropic":
	default:
		return fmt.Errorf("summarizer.provider must be openai or anthropic")
	}
	if c.Summarizer.Provider != "" && c.Summarizer.APIKey == "" {
		return fmt.Errorf("summarizer.api_key is required when a provider is set")
	}
	return nil
}
