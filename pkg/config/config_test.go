package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"GITHUB_TOKEN",
	"GITHUB_API_URL",
	"ACTIONS_USAGE_COST_FILE",
	"ACTIONS_USAGE_WORKERS",
	"ACTIONS_USAGE_REQUEST_TIMEOUT",
	"ACTIONS_USAGE_REQUESTS_PER_SECOND",
}

// clearEnv unsets the configuration variables for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range envVars {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestNewConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Empty(t, cfg.GitHubToken)
	assert.Equal(t, "https://api.github.com", cfg.APIURL)
	assert.Equal(t, "config.yaml", cfg.CostFile)
	assert.Equal(t, 10, cfg.Workers)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Zero(t, cfg.RequestsPerSecond)
}

func TestConfigFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/v3")
	t.Setenv("ACTIONS_USAGE_WORKERS", "4")
	t.Setenv("ACTIONS_USAGE_REQUEST_TIMEOUT", "1m")
	t.Setenv("ACTIONS_USAGE_REQUESTS_PER_SECOND", "2.5")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "ghp_test", cfg.GitHubToken)
	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.APIURL)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.RequestTimeout)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfigInvalidValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACTIONS_USAGE_WORKERS", "many")

	_, err := NewConfig()
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACTIONS_USAGE_WORKERS", "3")

	path := filepath.Join(t.TempDir(), ".env")
	content := "GITHUB_TOKEN=from-file\nACTIONS_USAGE_WORKERS=20\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.GitHubToken)
	assert.Equal(t, 3, cfg.Workers, "existing environment wins over the env file")
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "ghp_test", cfg.GitHubToken)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			GitHubToken:    "ghp_test",
			APIURL:         "https://api.github.com",
			Workers:        10,
			RequestTimeout: 30 * time.Second,
		}
	}

	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "missing token", modify: func(c *Config) { c.GitHubToken = "" }, errMsg: "GITHUB_TOKEN must be set"},
		{name: "bad url", modify: func(c *Config) { c.APIURL = "api.github.com" }, errMsg: "invalid GitHub API URL"},
		{name: "no workers", modify: func(c *Config) { c.Workers = 0 }, errMsg: "workers must be >= 1"},
		{name: "zero timeout", modify: func(c *Config) { c.RequestTimeout = 0 }, errMsg: "request timeout must be positive"},
		{name: "negative rps", modify: func(c *Config) { c.RequestsPerSecond = -1 }, errMsg: "requests per second must be >= 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	err := (&Config{APIURL: "https://api.github.com"}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN must be set")
	assert.Contains(t, err.Error(), "workers must be >= 1")
	assert.Contains(t, err.Error(), "request timeout must be positive")
}
