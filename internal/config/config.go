// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported storage drivers.
const (
	DriverMinio = "minio"
	DriverS3    = "s3"
)

// Config holds all runtime configuration for the service.
// It is built once at startup and passed by pointer; nothing mutates it afterwards.
type Config struct {
	Port      string
	AppEnv    string
	LogLevel  string
	APIPrefix string

	// Tencent COS, spoken to through its S3-compatible endpoint.
	SecretID   string
	SecretKey  string
	Bucket     string
	Region     string
	Endpoint   string // defaults to "cos.<region>.myqcloud.com"
	UseSSL     bool
	PublicBase string // defaults to "https://<bucket>.cos.<region>.myqcloud.com"
	Driver     string // "minio" or "s3"

	KeyPrefix         string
	TempDir           string // base64 payloads are decoded here
	UploadDir         string // multipart bodies are staged here
	MaxUploadSize     int64
	SignExpirySeconds int

	CORSAllowedOrigins []string

	TracingEnabled    bool
	TracingEndpoint   string
	TracingSampleRate float64
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	region := getEnv("COS_REGION", "")
	bucket := getEnv("COS_BUCKET", "")

	cfg := &Config{
		Port:      getEnv("PORT", "3000"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		APIPrefix: getEnv("API_PREFIX", "/api"),

		SecretID:   getEnv("COS_SECRET_ID", ""),
		SecretKey:  getEnv("COS_SECRET_KEY", ""),
		Bucket:     bucket,
		Region:     region,
		Endpoint:   getEnv("COS_ENDPOINT", "cos."+region+".myqcloud.com"),
		UseSSL:     getEnvBool("COS_USE_SSL", true),
		PublicBase: getEnv("COS_PUBLIC_BASE", fmt.Sprintf("https://%s.cos.%s.myqcloud.com", bucket, region)),
		Driver:     strings.ToLower(getEnv("STORAGE_DRIVER", DriverMinio)),

		KeyPrefix:         getEnv("KEY_PREFIX", "uploads"),
		TempDir:           getEnv("TEMP_DIR", "temp"),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadSize:     getEnvInt64("MAX_UPLOAD_SIZE", 100<<20),
		SignExpirySeconds: int(getEnvInt64("SIGN_EXPIRY_SECONDS", 600)),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		TracingEnabled:    getEnvBool("OTEL_ENABLED", false),
		TracingEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("OTEL_SAMPLE_RATE", 1.0),
	}
	return cfg
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretID == "" {
		errs = append(errs, errors.New("COS_SECRET_ID is required"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("COS_SECRET_KEY is required"))
	}
	if c.Bucket == "" {
		errs = append(errs, errors.New("COS_BUCKET is required"))
	}
	if c.Region == "" {
		errs = append(errs, errors.New("COS_REGION is required"))
	}
	if c.Driver != DriverMinio && c.Driver != DriverS3 {
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Driver))
	}
	if c.SignExpirySeconds <= 0 {
		errs = append(errs, fmt.Errorf("invalid SIGN_EXPIRY_SECONDS: %d", c.SignExpirySeconds))
	}
	if c.MaxUploadSize <= 0 {
		errs = append(errs, fmt.Errorf("invalid MAX_UPLOAD_SIZE: %d", c.MaxUploadSize))
	}
	return errors.Join(errs...)
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
