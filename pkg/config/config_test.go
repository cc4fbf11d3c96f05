package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mcpbus.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 6, cfg.Memory.RecentWindow)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[server]
listen = ":9000"

[memory]
recent_window = 10

[logging]
level = "debug"
format = "json"

[tracing]
enabled = true
exporter = "otlp-grpc"
endpoint = "collector:4317"
insecure = true
`))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, 10, cfg.Memory.RecentWindow)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "collector:4317", cfg.Tracing.Endpoint)
	assert.True(t, cfg.Tracing.Insecure)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("MCPBUS_TEST_KEY", "sk-secret")

	cfg, err := Load(writeConfig(t, `
[summarizer]
provider = "openai"
api_key = "${MCPBUS_TEST_KEY}"
`))
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.Summarizer.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty listen", func(c *Config) { c.Server.Listen = "" }, "server.listen"},
		{"zero window", func(c *Config) { c.Memory.RecentWindow = 0 }, "recent_window"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad exporter", func(c *Config) { c.Tracing.Exporter = "zipkin" }, "tracing.exporter"},
		{"tracing without endpoint", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "otlp-grpc"
		}, "tracing.endpoint"},
		{"bad provider", func(c *Config) { c.Summarizer.Provider = "cohere" }, "summarizer.provider"},
		{"provider without key", func(c *Config) { c.Summarizer.Provider = "openai" }, "api_key"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	assert.NoError(t, Default().Validate())
}
