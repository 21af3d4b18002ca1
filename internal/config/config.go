package config

import (
	"errors"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full backend configuration.
type Config struct {
	Database DatabaseConfig `json:"database"`
	HTTP     HTTPConfig     `json:"http"`
	Tenant   TenantConfig   `json:"tenant"`
	Auth     AuthConfig     `json:"auth"`
	Logging  LoggingConfig  `json:"logging"`
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	DSN string `json:"dsn"`
}

// HTTPConfig holds the listener settings.
type HTTPConfig struct {
	Addr string `json:"addr"`
}

// TenantConfig holds the fallback tenant scope and currency for
// single-tenant deployments.
type TenantConfig struct {
	ID       string `json:"id"`
	Currency string `json:"currency"`
}

// AuthConfig holds the JWT settings. An empty secret disables auth (dev only).
type AuthConfig struct {
	JWTSecret string `json:"jwtSecret"`
}

// LoggingConfig holds the log level.
type LoggingConfig struct {
	Level string `json:"level"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Tenant.ID == "" {
		c.Tenant.ID = "tenant-demo"
	}
	if c.Tenant.Currency == "" {
		c.Tenant.Currency = "EUR"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("config: database.dsn is required")
	}
	return nil
}

// Load reads an optional YAML file and applies WPC_-prefixed environment
// overrides (WPC_DATABASE__DSN maps to database.dsn).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider("WPC_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "wpc_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
