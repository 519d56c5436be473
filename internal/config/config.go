// Package config loads tracklens settings from an optional YAML file and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Server        ServerConfig `yaml:"server"`
	Elasticsearch EngineConfig `yaml:"elasticsearch"`
	Ingest        IngestConfig `yaml:"ingest"`
	Log           LogConfig    `yaml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
}

// EngineConfig configures the Elasticsearch client.
type EngineConfig struct {
	Addresses      []string      `yaml:"addresses"`
	Index          string        `yaml:"index"`
	Username       string        `yaml:"username,omitempty"`
	// Secrets are read from the environment only.
	Password       string        `yaml:"-"`
	APIKey         string        `yaml:"-"`
	BearerToken    string        `yaml:"-"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryBackoff   time.Duration `yaml:"retry_backoff"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// IngestConfig configures bulk imports.
type IngestConfig struct {
	BatchSize  int    `yaml:"batch_size"`
	Workers    int    `yaml:"workers"`
	LedgerPath string `yaml:"ledger_path"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 15 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			AllowedOrigins:    []string{"http://localhost:5173"},
		},
		Elasticsearch: EngineConfig{
			Addresses:      []string{"http://localhost:9200"},
			Index:          "spotify_tracks",
			MaxRetries:     3,
			RetryBackoff:   500 * time.Millisecond,
			RequestTimeout: 10 * time.Second,
		},
		Ingest: IngestConfig{
			BatchSize:  1000,
			Workers:    2,
			LedgerPath: "tracklens.db",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg, os.Getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if raw := getenv("ELASTICSEARCH_HOST"); raw != "" {
		cfg.Elasticsearch.Addresses = splitList(raw)
	}
	if raw := getenv("ELASTICSEARCH_INDEX"); raw != "" {
		cfg.Elasticsearch.Index = raw
	}
	if raw := getenv("ELASTICSEARCH_USERNAME"); raw != "" {
		cfg.Elasticsearch.Username = raw
	}
	cfg.Elasticsearch.Password = getenv("ELASTICSEARCH_PASSWORD")
	cfg.Elasticsearch.APIKey = getenv("ELASTICSEARCH_API_KEY")
	cfg.Elasticsearch.BearerToken = getenv("ELASTICSEARCH_BEARER_TOKEN")

	if raw := getenv("ELASTICSEARCH_MAX_RETRIES"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			cfg.Elasticsearch.MaxRetries = parsed
		}
	}
	if raw := getenv("ELASTICSEARCH_RETRY_BACKOFF_MS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			cfg.Elasticsearch.RetryBackoff = time.Duration(parsed) * time.Millisecond
		}
	}

	if raw := getenv("TRACKLENS_ADDR"); raw != "" {
		cfg.Server.Addr = raw
	}
	if raw := getenv("TRACKLENS_LOG_LEVEL"); raw != "" {
		cfg.Log.Level = raw
	}
	if raw := getenv("TRACKLENS_LEDGER_PATH"); raw != "" {
		cfg.Ingest.LedgerPath = raw
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the configuration for values the application cannot run with.
func (c Config) Validate() error {
	if len(c.Elasticsearch.Addresses) == 0 {
		return errors.New("elasticsearch.addresses is required")
	}
	if c.Elasticsearch.Index == "" {
		return errors.New("elasticsearch.index is required")
	}
	if c.Elasticsearch.MaxRetries < 0 {
		return errors.New("elasticsearch.max_retries must be non-negative")
	}
	if c.Elasticsearch.APIKey != "" && c.Elasticsearch.BearerToken != "" {
		return errors.New("set only one of ELASTICSEARCH_API_KEY and ELASTICSEARCH_BEARER_TOKEN")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Ingest.BatchSize < 1 {
		return errors.New("ingest.batch_size must be positive")
	}
	if c.Ingest.Workers < 1 {
		return errors.New("ingest.workers must be positive")
	}
	return nil
}
