// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

// Package config loads LitterPick configuration from flags, an optional
// YAML file and the environment.
//
// Precedence, lowest first: flag defaults, config file, environment,
// flags set on the command line.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the full LitterPick configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	HTTP     HTTPConfig     `koanf:"http"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Log      LogConfig      `koanf:"log"`
}

// DatabaseConfig configures the Postgres connection.
type DatabaseConfig struct {
	URL         string `koanf:"url"`
	AutoMigrate bool   `koanf:"auto_migrate"`
	MaxConns    int32  `koanf:"max_conns"`
}

// AuthConfig configures token issuance. TTLs are kept as raw strings and
// parsed leniently by AccessTokenTTL and RefreshTokenTTL.
type AuthConfig struct {
	JWTSecret           string `koanf:"jwt_secret"`
	AccessTokenTTL      string `koanf:"access_token_ttl"`
	RefreshTokenTTLDays string `koanf:"refresh_token_ttl_days"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr               string `koanf:"addr"`
	SecureCookies      bool   `koanf:"secure_cookies"`
	LoginRatePerMinute int    `koanf:"login_rate_per_minute"`
	LoginBurst         int    `koanf:"login_burst"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// Flag defaults.
const (
	DefaultHTTPAddr           = ":3000"
	DefaultMetricsAddr        = "127.0.0.1:9100"
	DefaultLogFormat          = "json"
	DefaultLogLevel           = "info"
	DefaultAccessTokenTTL     = "1h"
	DefaultRefreshTokenDays   = "7"
	DefaultLoginRatePerMinute = 10
	DefaultLoginBurst         = 5
)

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"database-url":           "database.url",
	"auto-migrate":           "database.auto_migrate",
	"db-max-conns":           "database.max_conns",
	"access-token-ttl":       "auth.access_token_ttl",
	"refresh-token-ttl-days": "auth.refresh_token_ttl_days",
	"http-addr":              "http.addr",
	"secure-cookies":         "http.secure_cookies",
	"login-rate-per-minute":  "http.login_rate_per_minute",
	"login-burst":            "http.login_burst",
	"metrics-addr":           "metrics.addr",
	"log-format":             "log.format",
	"log-level":              "log.level",
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("database-url", "", "PostgreSQL connection URL")
	fs.Bool("auto-migrate", false, "apply pending migrations on startup")
	fs.Int32("db-max-conns", 0, "maximum pool connections (0 = pgx default)")
	fs.String("access-token-ttl", DefaultAccessTokenTTL, "access token lifetime (e.g. 15m, 1h, 1d)")
	fs.String("refresh-token-ttl-days", DefaultRefreshTokenDays, "refresh token lifetime in days")
	fs.String("http-addr", DefaultHTTPAddr, "HTTP API listen address")
	fs.Bool("secure-cookies", false, "mark the refresh cookie Secure")
	fs.Int("login-rate-per-minute", DefaultLoginRatePerMinute, "login attempts per client IP per minute")
	fs.Int("login-burst", DefaultLoginBurst, "login burst per client IP")
	fs.String("metrics-addr", DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", DefaultLogFormat, "log format (json or text)")
	fs.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
}

// Load builds a Config from the given flag set, optional YAML file and the
// process environment.
func Load(fs *pflag.FlagSet, path string) (*Config, error) {
	return LoadWithEnv(fs, path, os.LookupEnv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(fs *pflag.FlagSet, path string, lookup func(string) (string, bool)) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	for key, value := range envOverrides(lookup) {
		if err := k.Set(key, value); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("key", key).Wrap(err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := Defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "unmarshal").Wrap(err)
	}
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	return cfg, nil
}

// Defaults returns a Config populated with default values.
func Defaults() *Config {
	return &Config{
		Auth: AuthConfig{
			AccessTokenTTL:      DefaultAccessTokenTTL,
			RefreshTokenTTLDays: DefaultRefreshTokenDays,
		},
		HTTP: HTTPConfig{
			Addr:               DefaultHTTPAddr,
			LoginRatePerMinute: DefaultLoginRatePerMinute,
			LoginBurst:         DefaultLoginBurst,
		},
		Metrics: MetricsConfig{Addr: DefaultMetricsAddr},
		Log:     LogConfig{Format: DefaultLogFormat, Level: DefaultLogLevel},
	}
}

// Validate checks settings every command relies on.
func (c *Config) Validate() error {
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			With("key", "log.format").
			Errorf("log format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if c.HTTP.LoginRatePerMinute <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("key", "http.login_rate_per_minute").
			Errorf("login rate must be positive, got %d", c.HTTP.LoginRatePerMinute)
	}
	if c.HTTP.LoginBurst <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("key", "http.login_burst").
			Errorf("login burst must be positive, got %d", c.HTTP.LoginBurst)
	}
	return nil
}

// RequireDatabase fails when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").
			With("key", "database.url").
			Errorf("database url is required (set DATABASE_URL or --database-url)")
	}
	return nil
}

// RequireServe checks everything the API server needs before any
// listener opens.
func (c *Config) RequireServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.RequireDatabase(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		return oops.Code("AUTH_SIGNING_SECRET_MISSING").
			With("key", "auth.jwt_secret").
			Errorf("jwt secret is required (set JWT_SECRET)")
	}
	if c.HTTP.Addr == "" {
		return oops.Code("CONFIG_INVALID").With("key", "http.addr").Errorf("http address is required")
	}
	return nil
}
