/*
Package config loads server configuration from an optional YAML file with
environment-variable overrides.

PRECEDENCE:
  defaults < YAML file < environment.

ENVIRONMENT:
  HR_ADDR        listen address (":8080")
  HR_DB_PATH     SQLite database path ("hr.db", ":memory:" for in-memory)
  HR_JWT_SECRET  HMAC signing secret for session tokens
  HR_LOG_LEVEL   zerolog level name ("info")

SEE ALSO:
  - cmd/server/main.go: the only consumer
*/
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	IdleTimeout     time.Duration `yaml:"-"`
	ReadTimeoutRaw  string        `yaml:"read_timeout"`
	WriteTimeoutRaw string        `yaml:"write_timeout"`
	IdleTimeoutRaw  string        `yaml:"idle_timeout"`

	// CORS origins allowed to call the API.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DBConfig struct {
	// Path is the SQLite file path; ":memory:" for an in-memory database.
	Path string `yaml:"path"`
}

type AuthConfig struct {
	// JWTSecret signs session tokens. Must be set outside of dev.
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"-"`
	TokenTTLRaw string        `yaml:"token_ttl"`
}

type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		DB:   DBConfig{Path: "hr.db"},
		Auth: AuthConfig{JWTSecret: "dev-secret-change-me", TokenTTL: 24 * time.Hour},
		Log:  LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HR_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("HR_DB_PATH"); v != "" {
		c.DB.Path = v
	}
	if v := os.Getenv("HR_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("HR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) validateAndNormalize() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr must be set")
	}
	if c.DB.Path == "" {
		return fmt.Errorf("config: db.path must be set")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret must be set")
	}

	var err error
	if c.Server.ReadTimeout, err = durationOr(c.Server.ReadTimeoutRaw, c.Server.ReadTimeout); err != nil {
		return fmt.Errorf("config: server.read_timeout: %w", err)
	}
	if c.Server.WriteTimeout, err = durationOr(c.Server.WriteTimeoutRaw, c.Server.WriteTimeout); err != nil {
		return fmt.Errorf("config: server.write_timeout: %w", err)
	}
	if c.Server.IdleTimeout, err = durationOr(c.Server.IdleTimeoutRaw, c.Server.IdleTimeout); err != nil {
		return fmt.Errorf("config: server.idle_timeout: %w", err)
	}
	if c.Auth.TokenTTL, err = durationOr(c.Auth.TokenTTLRaw, c.Auth.TokenTTL); err != nil {
		return fmt.Errorf("config: auth.token_ttl: %w", err)
	}
	return nil
}

func durationOr(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
