package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/RMahshie/roomtreat/internal/acoustics/modes"
	"github.com/RMahshie/roomtreat/internal/measurement"
	"github.com/RMahshie/roomtreat/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Storage  StorageConfig
	Analysis AnalysisConfig
}

// DatabaseConfig holds database configuration. An empty URL disables persistence.
type DatabaseConfig struct {
	URL            string
	ConnectTimeout time.Duration
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       zerolog.Level
	AllowedOrigins []string
}

// StorageConfig holds the measurement archive configuration
type StorageConfig struct {
	Backend         string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Endpoint        string
	UseSSL          bool
	BreakerFailures int
	BreakerTimeout  time.Duration
}

// AnalysisConfig bounds measurement imports and mode enumeration
type AnalysisConfig struct {
	MaxMeasurementBytes int64
	MaxMeasurementRows  int
	ModeCutoff          float64
}

// IsProduction reports whether the server runs with production settings.
func (s ServerConfig) IsProduction() bool {
	return s.Env == "prod" || s.Env == "production"
}

// Limits returns the parser limits derived from the configuration.
func (a AnalysisConfig) Limits() measurement.Limits {
	return measurement.Limits{
		MaxBytes: a.MaxMeasurementBytes,
		MaxRows:  a.MaxMeasurementRows,
	}
}

// ObjectStorage returns the settings shared by the storage backends.
func (s StorageConfig) ObjectStorage() storage.Config {
	return storage.Config{
		Bucket:    s.Bucket,
		Endpoint:  s.Endpoint,
		Region:    s.Region,
		AccessKey: s.AccessKeyID,
		SecretKey: s.SecretAccessKey,
		UseSSL:    s.UseSSL,
	}
}

// Breaker returns the circuit breaker settings for the archive.
func (s StorageConfig) Breaker() storage.BreakerSettings {
	return storage.BreakerSettings{
		Failures: s.BreakerFailures,
		Timeout:  s.BreakerTimeout,
	}
}

var keys = []string{
	"PORT",
	"ENVIRONMENT",
	"LOG_LEVEL",
	"ALLOWED_ORIGINS",
	"DATABASE_URL",
	"DATABASE_CONNECT_TIMEOUT",
	"STORAGE_BACKEND",
	"AWS_REGION",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"S3_BUCKET",
	"S3_ENDPOINT",
	"MINIO_USE_SSL",
	"MEASUREMENT_MAX_BYTES",
	"MEASUREMENT_MAX_ROWS",
	"MODE_CUTOFF_HZ",
	"BREAKER_FAILURES",
	"BREAKER_TIMEOUT",
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_CONNECT_TIMEOUT", "30s")
	v.SetDefault("STORAGE_BACKEND", storage.BackendNone)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_BUCKET", "roomtreat-measurements")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MEASUREMENT_MAX_BYTES", measurement.DefaultLimits.MaxBytes)
	v.SetDefault("MEASUREMENT_MAX_ROWS", measurement.DefaultLimits.MaxRows)
	v.SetDefault("MODE_CUTOFF_HZ", modes.DefaultCutoff)
	v.SetDefault("BREAKER_FAILURES", 5)
	v.SetDefault("BREAKER_TIMEOUT", "30s")

	// Environment variables override .env file values
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	env := v.GetString("ENVIRONMENT")
	if env == "" {
		env = "dev" // matches the .env.dev filename
	}

	// Read .env file for the current environment (it may not exist)
	v.SetConfigName(".env." + env)
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("LOG_LEVEL")))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	var cfg Config
	cfg.Server.Port = v.GetString("PORT")
	cfg.Server.Env = env
	cfg.Server.LogLevel = level
	cfg.Server.AllowedOrigins = splitList(v.GetString("ALLOWED_ORIGINS"))
	cfg.Database.URL = v.GetString("DATABASE_URL")
	cfg.Database.ConnectTimeout = v.GetDuration("DATABASE_CONNECT_TIMEOUT")
	cfg.Storage.Backend = strings.ToLower(v.GetString("STORAGE_BACKEND"))
	cfg.Storage.Region = v.GetString("AWS_REGION")
	cfg.Storage.AccessKeyID = v.GetString("AWS_ACCESS_KEY_ID")
	cfg.Storage.SecretAccessKey = v.GetString("AWS_SECRET_ACCESS_KEY")
	cfg.Storage.Bucket = v.GetString("S3_BUCKET")
	cfg.Storage.Endpoint = v.GetString("S3_ENDPOINT")
	cfg.Storage.UseSSL = v.GetBool("MINIO_USE_SSL")
	cfg.Storage.BreakerFailures = v.GetInt("BREAKER_FAILURES")
	cfg.Storage.BreakerTimeout = v.GetDuration("BREAKER_TIMEOUT")
	cfg.Analysis.MaxMeasurementBytes = v.GetInt64("MEASUREMENT_MAX_BYTES")
	cfg.Analysis.MaxMeasurementRows = v.GetInt("MEASUREMENT_MAX_ROWS")
	cfg.Analysis.ModeCutoff = v.GetFloat64("MODE_CUTOFF_HZ")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case storage.BackendNone, storage.BackendS3, storage.BackendMinIO:
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: must be none, s3 or minio", c.Storage.Backend)
	}
	if c.Storage.Backend == storage.BackendMinIO && c.Storage.Endpoint == "" {
		return fmt.Errorf("S3_ENDPOINT is required when STORAGE_BACKEND=minio")
	}
	if c.Analysis.MaxMeasurementBytes <= 0 {
		return fmt.Errorf("MEASUREMENT_MAX_BYTES must be positive, got %d", c.Analysis.MaxMeasurementBytes)
	}
	if c.Analysis.MaxMeasurementRows <= 0 {
		return fmt.Errorf("MEASUREMENT_MAX_ROWS must be positive, got %d", c.Analysis.MaxMeasurementRows)
	}
	if err := modes.ValidateCutoff(c.Analysis.ModeCutoff); err != nil {
		return fmt.Errorf("invalid MODE_CUTOFF_HZ: %w", err)
	}
	if c.Storage.BreakerFailures < 1 {
		return fmt.Errorf("BREAKER_FAILURES must be at least 1, got %d", c.Storage.BreakerFailures)
	}
	if c.Storage.BreakerTimeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive, got %s", c.Storage.BreakerTimeout)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
