package config

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// envConfig mirrors the environment variables understood by WithEnv.
// Empty values leave the current configuration untouched.
type envConfig struct {
	UploadPassword     string `env:"UPLOAD_PASSWORD" env-description:"Upload bearer secret and delete token key"`
	PublicURL          string `env:"PUBLIC_URL" env-description:"Externally visible base URL"`
	Host               string `env:"HOST" env-description:"Listen host"`
	Port               string `env:"PORT" env-description:"Listen port"`
	Environment        string `env:"ENVIRONMENT" env-description:"development, production or testing"`
	StorageURL         string `env:"STORAGE_URL" env-description:"memory://, file://<dir> or s3://<bucket>?<params>"`
	MaxUploadSize      string `env:"MAX_UPLOAD_SIZE" env-description:"Maximum upload size in bytes, 0 for unlimited"`
	LogLevel           string `env:"LOG_LEVEL" env-description:"debug, info, warn or error"`
	LogFormat          string `env:"LOG_FORMAT" env-description:"console, json or text"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" env-description:"Comma separated allowed origins"`
	ShutdownTimeout    string `env:"SHUTDOWN_TIMEOUT" env-description:"Graceful shutdown timeout, e.g. 10s"`

	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `env:"AWS_REGION"`
}

// WithDotEnv loads variables from a .env file into the process environment.
// A missing file is not an error. Variables already set take precedence.
func WithDotEnv(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			path = ".env"
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv applies environment variable overrides.
//
// Server:
//
//	UPLOAD_PASSWORD - Upload secret, also keys delete tokens (required)
//	PUBLIC_URL - Base URL used in returned links (required)
//	HOST - Listen host (default: "127.0.0.1")
//	PORT - Listen port (default: "8080")
//	ENVIRONMENT - Runtime environment (default: "development")
//	MAX_UPLOAD_SIZE - Upload limit in bytes (default: 0, unlimited)
//	LOG_LEVEL, LOG_FORMAT - Logger setup (default: "info", "console")
//	CORS_ALLOWED_ORIGINS - Comma separated origins, empty disables CORS
//	SHUTDOWN_TIMEOUT - Graceful shutdown timeout (default: "10s")
//
// Storage:
//
//	STORAGE_URL - Storage connection string (one of):
//	              - "memory://" - In-memory storage
//	              - "file://./uploads" - Filesystem storage (default)
//	              - "s3://bucket?region=us-east-1&endpoint=http://localhost:9000&path_style=true" - S3 storage
//	              S3 parameters: region, endpoint, path_style, create_bucket,
//	              sse (AES256 or aws:kms) and sse_kms_key_id
//	AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_REGION - S3 credentials
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return env.apply(c)
	}
}

func (e envConfig) apply(c *ServerConfig) error {
	setString(&c.UploadSecret, e.UploadPassword)
	setString(&c.PublicURL, e.PublicURL)
	setString(&c.Host, e.Host)
	setString(&c.Port, e.Port)
	setString(&c.Environment, e.Environment)
	setString(&c.LogLevel, strings.ToLower(e.LogLevel))
	setString(&c.LogFormat, strings.ToLower(e.LogFormat))

	if e.MaxUploadSize != "" {
		size, err := strconv.ParseInt(e.MaxUploadSize, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer for MAX_UPLOAD_SIZE: %w", err)
		}
		c.MaxUploadSize = size
	}

	if e.ShutdownTimeout != "" {
		timeout, err := time.ParseDuration(e.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid duration for SHUTDOWN_TIMEOUT: %w", err)
		}
		c.ShutdownTimeout = timeout
	}

	if e.CORSAllowedOrigins != "" {
		c.CORSAllowedOrigins = splitList(e.CORSAllowedOrigins)
	}

	if e.StorageURL != "" {
		storage, err := ParseStorageURL(e.StorageURL)
		if err != nil {
			return err
		}
		c.Storage = storage
	}

	if c.Storage.Type == "s3" {
		setString(&c.Storage.AccessKeyID, e.AWSAccessKeyID)
		setString(&c.Storage.SecretAccessKey, e.AWSSecretAccessKey)
		setString(&c.Storage.Region, e.AWSRegion)
	}

	return nil
}

// ParseStorageURL converts a STORAGE_URL value into a StorageConfig
func ParseStorageURL(raw string) (StorageConfig, error) {
	switch {
	case raw == "memory" || raw == "memory://":
		return StorageConfig{Type: "memory"}, nil

	case strings.HasPrefix(raw, "file://"):
		// file:///abs/path or file://./relative/path
		path := strings.TrimPrefix(raw, "file://")
		if path == "" {
			return StorageConfig{}, errors.New("filesystem path cannot be empty in STORAGE_URL")
		}
		return StorageConfig{Type: "fs", BaseDir: path}, nil

	case strings.HasPrefix(raw, "s3://"):
		return parseS3URL(raw)
	}

	return StorageConfig{}, fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", raw)
}

// parseS3URL handles s3://bucket/prefix?region=...&endpoint=...&path_style=...&create_bucket=...
func parseS3URL(raw string) (StorageConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return StorageConfig{}, fmt.Errorf("invalid S3 STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return StorageConfig{}, errors.New("S3 bucket name cannot be empty in STORAGE_URL")
	}

	cfg := StorageConfig{
		Type:   "s3",
		Bucket: u.Host,
		Region: "us-east-1",
	}

	if prefix := strings.Trim(u.Path, "/"); prefix != "" {
		cfg.Prefix = prefix + "/"
	}

	query := u.Query()
	if v := query.Get("region"); v != "" {
		cfg.Region = v
	}
	cfg.Endpoint = query.Get("endpoint")

	if cfg.UsePathStyle, err = parseBoolParam(query, "path_style"); err != nil {
		return StorageConfig{}, err
	}
	if cfg.CreateBucketIfNotExist, err = parseBoolParam(query, "create_bucket"); err != nil {
		return StorageConfig{}, err
	}

	cfg.SSEAlgorithm = query.Get("sse")
	cfg.SSEKMSKeyID = query.Get("sse_kms_key_id")
	switch cfg.SSEAlgorithm {
	case "", "AES256", "aws:kms":
	default:
		return StorageConfig{}, fmt.Errorf("invalid STORAGE_URL parameter sse %q: want AES256 or aws:kms", cfg.SSEAlgorithm)
	}
	if cfg.SSEKMSKeyID != "" && cfg.SSEAlgorithm != "aws:kms" {
		return StorageConfig{}, errors.New("STORAGE_URL parameter sse_kms_key_id requires sse=aws:kms")
	}

	return cfg, nil
}

func parseBoolParam(query url.Values, key string) (bool, error) {
	raw := query.Get(key)
	if raw == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for STORAGE_URL parameter %s: %w", key, err)
	}
	return parsed, nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
