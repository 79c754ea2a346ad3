// Package config loads application settings from defaults, an optional
// config file, environment variables and command-line flags, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// JWTConfig configures session token signing. Secret is required.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	Audience   string        `mapstructure:"audience"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type AuthConfig struct {
	BcryptCost   int  `mapstructure:"bcrypt_cost"`
	CookieSecure bool `mapstructure:"cookie_secure"`
}

// RedisConfig enables the Redis revocation store when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// envBindings maps config keys to the environment variables that override
// them. Keys not listed here use the upper-cased key with dots replaced by
// underscores.
var envBindings = map[string]string{
	"http.port":          "PORT",
	"database.path":      "DATABASE_PATH",
	"auth.bcrypt_cost":   "BCRYPT_COST",
	"auth.cookie_secure": "COOKIE_SECURE",
}

// flagBindings maps config keys to command-line flag names.
var flagBindings = map[string]string{
	"http.port":     "port",
	"database.path": "database-path",
	"log.level":     "log-level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8080")
	v.SetDefault("database.path", "taskmanager.db")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "taskmanager")
	v.SetDefault("jwt.audience", "taskmanager-clients")
	v.SetDefault("jwt.expiration", "60m")
	v.SetDefault("auth.bcrypt_cost", 12)
	// Secure cookies by default; disable only for local development.
	v.SetDefault("auth.cookie_secure", true)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
}

// RegisterFlags adds the flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file (yaml, json or toml)")
	fs.String("port", "", "HTTP listen port")
	fs.String("database-path", "", "SQLite database file")
	fs.String("log-level", "", "log level: debug, info, warn or error")
}

// Load builds a Config. path may be empty, in which case no file is read.
// flags may be nil; only flags that were explicitly set override.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil && f.Changed {
				v.Set(key, f.Value.String())
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used to start the server.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required (set JWT_SECRET)")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("jwt secret must be at least 32 characters for HMAC-SHA256 security")
	}
	if c.JWT.Expiration <= 0 {
		return fmt.Errorf("jwt expiration must be positive, got %s", c.JWT.Expiration)
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost must be between 4 and 14, got %d", c.Auth.BcryptCost)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses Level into a slog.Level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.Level)
	}
	return level, nil
}
