// Package config loads application settings from an optional YAML file,
// with environment variables taking precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr         string `yaml:"addr"`
		TemplateDir  string `yaml:"template_dir"`
		StaticDir    string `yaml:"static_dir"`
		CookieSecure bool   `yaml:"cookie_secure"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Session struct {
		Expiration time.Duration `yaml:"expiration"`
	} `yaml:"session"`
	Store struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"store"`
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.TemplateDir = "web/templates"
	cfg.Server.StaticDir = "web/static"
	cfg.Database.Path = "postgen.db"
	cfg.Session.Expiration = 24 * time.Hour
	cfg.Store.Timeout = 10 * time.Second
	return cfg
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is empty, POSTGEN_CONFIG or no file at all), then env overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("POSTGEN_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("POSTGEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("POSTGEN_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("POSTGEN_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("POSTGEN_SESSION_TTL: %w", err)
		}
		cfg.Session.Expiration = d
	}
	if v := os.Getenv("POSTGEN_STORE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("POSTGEN_STORE_TIMEOUT: %w", err)
		}
		cfg.Store.Timeout = d
	}
	if v := os.Getenv("POSTGEN_COOKIE_SECURE"); v != "" {
		cfg.Server.CookieSecure = v == "true"
	}
	return cfg, nil
}
