package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	// GitHub
	GitHubToken string `envconfig:"GITHUB_TOKEN"`
	APIURL      string `envconfig:"GITHUB_API_URL" default:"https://api.github.com"`

	// Pricing
	CostFile string `envconfig:"ACTIONS_USAGE_COST_FILE" default:"config.yaml"`

	// Collection
	Workers           int           `envconfig:"ACTIONS_USAGE_WORKERS" default:"10"`
	RequestTimeout    time.Duration `envconfig:"ACTIONS_USAGE_REQUEST_TIMEOUT" default:"30s"`
	RequestsPerSecond float64       `envconfig:"ACTIONS_USAGE_REQUESTS_PER_SECOND" default:"0"`
}

// NewConfig creates a new configuration from the environment
func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

// Load reads envFile into the environment, without overriding variables that
// are already set, and builds the configuration. A missing envFile is ignored.
func Load(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	return NewConfig()
}

func loadEnvFile(filename string) error {
	if filename == "" {
		return nil
	}

	env, err := godotenv.Read(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read env file: %w", err)
	}

	for key, value := range env {
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set environment variable %s: %w", key, err)
		}
	}

	return nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.GitHubToken == "" {
		errs = append(errs, errors.New("GITHUB_TOKEN must be set"))
	}
	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid GitHub API URL: %q", c.APIURL))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("requests per second must be >= 0, got %v", c.RequestsPerSecond))
	}

	return errors.Join(errs...)
}
