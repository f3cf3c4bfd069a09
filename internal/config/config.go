// Package config loads docscan settings from defaults, an optional YAML file,
// a .env file and DOCSCAN_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "DOCSCAN_"

// Config holds all configuration for docscan.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	HTTP    HTTPConfig    `yaml:"http"`
	Scanner ScannerConfig `yaml:"scanner"`
	OCR     OCRConfig     `yaml:"ocr"`
	Batch   BatchConfig   `yaml:"batch"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// HTTPConfig holds upload server settings.
type HTTPConfig struct {
	Addr             string        `yaml:"addr"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
	CORSOrigins      []string      `yaml:"cors_origins"`
}

// ScannerConfig selects pipeline collaborators. The pipeline constants
// themselves are fixed.
type ScannerConfig struct {
	Backend     string `yaml:"backend"` // native or gocv
	Placeholder string `yaml:"placeholder"`
}

// OCRConfig holds text recognition settings.
type OCRConfig struct {
	Language string `yaml:"language"`
}

// BatchConfig bounds concurrent scans in batch tools.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig returns a configuration suitable for local use.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		HTTP: HTTPConfig{
			Addr:             ":8000",
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     60 * time.Second,
			RequestTimeout:   60 * time.Second,
			GracefulShutdown: 10 * time.Second,
			MaxUploadBytes:   20 << 20,
			CORSOrigins:      []string{"*"},
		},
		Scanner: ScannerConfig{
			Backend: "native",
		},
		OCR: OCRConfig{
			Language: "eng",
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
	}
}

// Load reads configuration from path (optional) and envFile (optional), then
// applies environment overrides and validates the result. A missing envFile
// is not an error.
func Load(path, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if envFile != "" {
		// godotenv.Load never overrides variables already set.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	if c.HTTP.Addr == "" {
		return errors.New("http addr is required")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.HTTP.MaxUploadBytes)
	}
	if c.HTTP.RequestTimeout < 0 || c.HTTP.ReadTimeout < 0 || c.HTTP.WriteTimeout < 0 {
		return errors.New("http timeouts must not be negative")
	}

	switch c.Scanner.Backend {
	case "native", "gocv":
	default:
		return fmt.Errorf("invalid vision backend: %s", c.Scanner.Backend)
	}

	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 64 {
		return fmt.Errorf("batch concurrency must be between 1 and 64, got %d", c.Batch.Concurrency)
	}
	return nil
}

// applyEnvOverrides applies DOCSCAN_* environment variables to cfg.
func applyEnvOverrides(cfg *Config) error {
	if v := env("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := env("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := env("CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v := env("BACKEND"); v != "" {
		cfg.Scanner.Backend = v
	}
	if v := env("PLACEHOLDER"); v != "" {
		cfg.Scanner.Placeholder = v
	}
	if v := env("OCR_LANGUAGE"); v != "" {
		cfg.OCR.Language = v
	}

	durations := map[string]*time.Duration{
		"READ_TIMEOUT":      &cfg.HTTP.ReadTimeout,
		"WRITE_TIMEOUT":     &cfg.HTTP.WriteTimeout,
		"REQUEST_TIMEOUT":   &cfg.HTTP.RequestTimeout,
		"GRACEFUL_SHUTDOWN": &cfg.HTTP.GracefulShutdown,
	}
	for key, dst := range durations {
		if v := env(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("parse %s%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}

	if v := env("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %sMAX_UPLOAD_BYTES: %w", EnvPrefix, err)
		}
		cfg.HTTP.MaxUploadBytes = n
	}
	if v := env("BATCH_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sBATCH_CONCURRENCY: %w", EnvPrefix, err)
		}
		cfg.Batch.Concurrency = n
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
