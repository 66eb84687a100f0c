// Package config loads gateway configuration with three layers of
// precedence: defaults, then an optional YAML file, then environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API       APIConfig       `yaml:"api"`
	HTTP      HTTPConfig      `yaml:"http"`
	Session   SessionConfig   `yaml:"session"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type APIConfig struct {
	// BaseURL is the root of the remote storefront API, including any
	// path prefix (e.g. http://shop.example.com/api).
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type SessionConfig struct {
	// Backend selects the token store: memory, sqlite or redis.
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlite_path"`
	RedisAddr  string `yaml:"redis_addr"`
}

type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name"`
	TracingEnabled bool   `yaml:"tracing_enabled"`
}

func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: 15 * time.Second,
		},
		HTTP: HTTPConfig{
			Addr: ":3000",
		},
		Session: SessionConfig{
			Backend:    "sqlite",
			SQLitePath: "storefront-session.db",
			RedisAddr:  "localhost:6379",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "storefront-gateway",
		},
	}
}

// Load builds the configuration. path may be empty; a missing file is
// only an error when a path was explicitly given.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.API.BaseURL == "" {
		return Config{}, fmt.Errorf("config: api.base_url is required")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.API.BaseURL, "STOREFRONT_API_URL")
	setString(&cfg.HTTP.Addr, "STOREFRONT_HTTP_ADDR")
	setString(&cfg.Session.Backend, "STOREFRONT_SESSION_BACKEND")
	setString(&cfg.Session.SQLitePath, "STOREFRONT_SESSION_SQLITE_PATH")
	setString(&cfg.Session.RedisAddr, "STOREFRONT_REDIS_ADDR")
	setString(&cfg.Telemetry.ServiceName, "STOREFRONT_SERVICE_NAME")

	if v := os.Getenv("STOREFRONT_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
		}
	}
	if v := os.Getenv("STOREFRONT_TRACING_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Telemetry.TracingEnabled = b
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
