// Package config loads the host configuration for the windrose commands:
// a YAML file overlaid with WINDROSE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "90m" or "24h" decode.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full host configuration.
type Config struct {
	Listen string `yaml:"listen"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	// SessionTTL is how long an idle conversation snapshot survives.
	SessionTTL Duration `yaml:"session_ttl"`

	// CallTimeout bounds each model or tool call.
	CallTimeout Duration `yaml:"call_timeout"`

	// MaxRetries is how many times a failed model call is retried.
	MaxRetries int `yaml:"max_retries"`

	MCP struct {
		// Command launches the MCP tool server over stdio.
		Command string   `yaml:"command"`
		Args    []string `yaml:"args"`
	} `yaml:"mcp"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	cfg := Config{
		Listen:      ":8080",
		SessionTTL:  Duration(24 * time.Hour),
		CallTimeout: Duration(30 * time.Second),
		MaxRetries:  1,
		LogLevel:    "info",
	}
	cfg.Redis.Addr = "localhost:6379"
	return cfg
}

// Load reads the YAML file at path (skipped when path is empty or missing)
// and applies environment overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing file is fine; env and defaults carry it.
		case err != nil:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("WINDROSE_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("WINDROSE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("WINDROSE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("WINDROSE_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("WINDROSE_SESSION_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.SessionTTL = Duration(ttl)
		}
	}
	if v := os.Getenv("WINDROSE_CALL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CallTimeout = Duration(d)
		}
	}
	if v := os.Getenv("WINDROSE_MCP_COMMAND"); v != "" {
		cfg.MCP.Command = v
	}
	if v := os.Getenv("WINDROSE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
