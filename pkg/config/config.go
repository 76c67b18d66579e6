package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries everything the client needs to talk to a backend.
// APIBaseURL has no default on purpose: the base URL is deployment
// configuration and must be supplied explicitly.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	StatePath      string
	CacheTTL       time.Duration
}

// fileConfig is the YAML shape; durations are "3s"-style strings.
type fileConfig struct {
	APIBaseURL     string `yaml:"api_base_url"`
	RequestTimeout string `yaml:"request_timeout"`
	StatePath      string `yaml:"state_path"`
	CacheTTL       string `yaml:"cache_ttl"`
}

func defaults() Config {
	return Config{
		RequestTimeout: 15 * time.Second,
		StatePath:      ".storefront/state.json",
		CacheTTL:       30 * time.Second,
	}
}

// Load reads an optional YAML file, then applies STOREFRONT_* env
// overrides on top. A missing file is fine; a present-but-broken file
// is not.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			var fc fileConfig
			if err := yaml.Unmarshal(raw, &fc); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
			if fc.APIBaseURL != "" {
				cfg.APIBaseURL = fc.APIBaseURL
			}
			if fc.StatePath != "" {
				cfg.StatePath = fc.StatePath
			}
			if fc.RequestTimeout != "" {
				d, err := time.ParseDuration(fc.RequestTimeout)
				if err != nil {
					return cfg, fmt.Errorf("parse config %s: request_timeout: %w", path, err)
				}
				cfg.RequestTimeout = d
			}
			if fc.CacheTTL != "" {
				d, err := time.ParseDuration(fc.CacheTTL)
				if err != nil {
					return cfg, fmt.Errorf("parse config %s: cache_ttl: %w", path, err)
				}
				cfg.CacheTTL = d
			}
		}
	}

	if v := os.Getenv("STOREFRONT_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("STOREFRONT_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("STOREFRONT_STATE_PATH"); v != "" {
		cfg.StatePath = v
	}
	if v := os.Getenv("STOREFRONT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}

	if cfg.APIBaseURL == "" {
		return cfg, errors.New("api_base_url is required (set STOREFRONT_API_BASE_URL or the config file)")
	}
	return cfg, nil
}

// StubConfig is the stub backend's listen config, env-only in the same
// style as the client config.
type StubConfig struct {
	Port      int
	JWTSecret string
}

func LoadStub() StubConfig {
	cfg := StubConfig{Port: 8080, JWTSecret: "dev-secret"}
	if v := os.Getenv("STUB_API_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("STUB_API_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	return cfg
}
