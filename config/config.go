// Package config loads the service configuration from config.yaml, a local
// .env file and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
	CORS   CORSConfig   `yaml:"cors"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Metrics exposes /metrics when true.
	Metrics bool `yaml:"metrics"`
}

// DBConfig selects the store. Driver is "postgres" or "sqlite".
type DBConfig struct {
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate"`
	// LogSQL logs every statement at debug level.
	LogSQL bool `yaml:"log_sql"`
}

// AuthConfig guards the /api routes with bearer tokens when Enabled.
type AuthConfig struct {
	Enabled       bool   `yaml:"enabled"`
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8081", Metrics: true},
		DB:     DBConfig{Driver: "postgres", AutoMigrate: true},
		Auth: AuthConfig{
			JWTSecret:     "dev-insecure-secret-change",
			TokenTTLHours: 24,
			AdminUsername: "admin",
			AdminPassword: "admin123",
		},
		Log:  LogConfig{Level: "info"},
		CORS: CORSConfig{AllowOrigins: []string{"http://localhost:3000"}},
	}
}

// Load reads path (missing file is fine), then .env, then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
	}
	// .env never overrides variables that are already set
	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.DB.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("DB_AUTO_MIGRATE: %w", err)
		}
		cfg.DB.AutoMigrate = b
	}
	if v := os.Getenv("AUTH_ENABLED"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = b
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// parseBool also accepts yes/no, as the old DB_AUTO_MIGRATE switch did.
func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	return strconv.ParseBool(v)
}

// Validate checks the settings that would otherwise fail late.
func (c Config) Validate() error {
	switch c.DB.Driver {
	case "postgres":
		if c.DB.DSN == "" {
			return errors.New("db.dsn (DB_DSN) is required for the postgres driver")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unknown db driver %q", c.DB.Driver)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) is required when auth is enabled")
	}
	return nil
}
