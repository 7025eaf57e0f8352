package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/burrow/internal/auth"
)

// BurrowConfig represents the top-level burrow.yml configuration
type BurrowConfig struct {
	ListenAddr    string `yaml:"listen_addr,omitempty"`    // Default: 127.0.0.1:8484
	RedisURL      string `yaml:"redis_url,omitempty"`      // Default: redis://localhost:6379
	TokenSecret   string `yaml:"token_secret"`             // Required: shared secret for identity tokens
	TokenLifetime string `yaml:"token_lifetime,omitempty"` // Duration string, default 24h
}

// DefaultListenAddr is used when listen_addr is omitted.
const DefaultListenAddr = "127.0.0.1:8484"

// DefaultRedisURL is used when redis_url is omitted.
const DefaultRedisURL = "redis://localhost:6379"

// Validate performs strict validation on the configuration and fills in
// defaults for omitted fields.
func (c *BurrowConfig) Validate() error {
	// Required: token secret
	if c.TokenSecret == "" {
		return fmt.Errorf("token_secret is required")
	}

	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}

	if c.RedisURL == "" {
		c.RedisURL = DefaultRedisURL
	}

	if c.TokenLifetime == "" {
		c.TokenLifetime = auth.DefaultTokenLifetime.String()
	}

	if _, err := time.ParseDuration(c.TokenLifetime); err != nil {
		return fmt.Errorf("invalid token_lifetime %q: %w", c.TokenLifetime, err)
	}

	return nil
}

// Lifetime returns the parsed token lifetime. Call after Validate.
func (c *BurrowConfig) Lifetime() time.Duration {
	d, err := time.ParseDuration(c.TokenLifetime)
	if err != nil {
		return auth.DefaultTokenLifetime
	}
	return d
}

// Load reads and validates burrow.yml from the specified path
func Load(path string) (*BurrowConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config BurrowConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// FromEnv builds a configuration from environment variables, used by the
// burrowd daemon. BURROW_TOKEN_SECRET is required; the rest default the
// same way the YAML path does.
func FromEnv() (*BurrowConfig, error) {
	config := &BurrowConfig{
		ListenAddr:    os.Getenv("BURROW_LISTEN_ADDR"),
		RedisURL:      os.Getenv("REDIS_URL"),
		TokenSecret:   os.Getenv("BURROW_TOKEN_SECRET"),
		TokenLifetime: os.Getenv("BURROW_TOKEN_LIFETIME"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
