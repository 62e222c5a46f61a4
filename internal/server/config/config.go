// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime settings for the userauth server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing tokens (HS256). Required, no default.
//   - TokenTTL: token lifetime, whole seconds. Required, no default.
//   - BcryptCost: work factor for password hashing.
//   - LogFormat / LogLevel: see logging.New.
//   - CORSAllowedOrigins: browser origins allowed to call the API; empty disables CORS.
//   - AdminUsers: usernames granted the ADMIN role when they register.
type Config struct {
	EndpointAddrHTTP   string
	DatabaseDSN        string
	SecretKey          string
	TokenTTL           time.Duration
	BcryptCost         int
	LogFormat          string
	LogLevel           string
	CORSAllowedOrigins []string
	AdminUsers         []string
}

// LoadDefaults populates Config with development defaults. The secret key and
// token TTL are deliberately left empty so a misconfigured deployment fails
// at startup instead of signing tokens with a known key.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.BcryptCost = bcrypt.DefaultCost
	c.LogFormat = "json"
	c.LogLevel = "info"
}

// Validate reports the first setting that prevents the server from starting.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("config: secret key is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: token ttl must be positive, got %s", c.TokenTTL)
	}
	if c.TokenTTL%time.Second != 0 {
		return fmt.Errorf("config: token ttl must be a whole number of seconds, got %s", c.TokenTTL)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: bcrypt cost must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.EndpointAddrHTTP == "" {
		return errors.New("config: http endpoint address is required")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (optionally seeded from a
// dotenv file) and finally from command-line flags. The result is validated.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
