// Package config loads runtime settings for the invoice generator.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see Default).
//  2. Optional YAML file passed to Load.
//  3. Environment variables prefixed with INVOICE_, optionally read from a
//     .env file in the working directory.
//
// The result is validated before it is returned.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
	DriverRedis    = "redis"
)

// Config is the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	History HistoryConfig `yaml:"history"`
	Export  ExportConfig  `yaml:"export"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// StorageConfig selects the backend the history is persisted in.
type StorageConfig struct {
	Driver      string `yaml:"driver" validate:"oneof=memory sqlite postgres bolt redis"`
	Path        string `yaml:"path" validate:"required_if=Driver sqlite,required_if=Driver bolt"`
	DSN         string `yaml:"dsn" validate:"required_if=Driver postgres"`
	RedisAddr   string `yaml:"redis_addr" validate:"required_if=Driver redis"`
	RedisPrefix string `yaml:"redis_prefix"`
}

type HistoryConfig struct {
	// RetainOnExportFailure keeps a submitted draft in history even when
	// rendering or delivering the downloaded document failed. Archive copies
	// written to Export.Dir or Export.S3 do not take part in this decision.
	RetainOnExportFailure bool `yaml:"retain_on_export_failure"`
}

// ExportConfig sets the default document format and optional archive targets.
type ExportConfig struct {
	Format string   `yaml:"format" validate:"oneof=pdf xlsx"`
	Dir    string   `yaml:"dir"`
	S3     S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region" validate:"required_with=Bucket"`
	Endpoint string `yaml:"endpoint"`
	Prefix   string `yaml:"prefix"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Addr: ":8080"},
		Log:     LogConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{Driver: DriverSQLite, Path: "invoices.db", RedisPrefix: "invoicegen:"},
		History: HistoryConfig{RetainOnExportFailure: true},
		Export:  ExportConfig{Format: "pdf"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"INVOICE_SERVER_ADDR":    &cfg.Server.Addr,
		"INVOICE_LOG_LEVEL":      &cfg.Log.Level,
		"INVOICE_LOG_FORMAT":     &cfg.Log.Format,
		"INVOICE_STORAGE_DRIVER": &cfg.Storage.Driver,
		"INVOICE_STORAGE_PATH":   &cfg.Storage.Path,
		"INVOICE_STORAGE_DSN":    &cfg.Storage.DSN,
		"INVOICE_REDIS_ADDR":     &cfg.Storage.RedisAddr,
		"INVOICE_EXPORT_FORMAT":  &cfg.Export.Format,
		"INVOICE_EXPORT_DIR":     &cfg.Export.Dir,
		"INVOICE_S3_BUCKET":      &cfg.Export.S3.Bucket,
		"INVOICE_S3_REGION":      &cfg.Export.S3.Region,
		"INVOICE_S3_ENDPOINT":    &cfg.Export.S3.Endpoint,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("INVOICE_RETAIN_ON_EXPORT_FAILURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid INVOICE_RETAIN_ON_EXPORT_FAILURE: %w", err)
		}
		cfg.History.RetainOnExportFailure = b
	}
	return nil
}
