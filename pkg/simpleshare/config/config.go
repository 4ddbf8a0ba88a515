package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/deletetoken"
	fsstorage "github.com/tendant/simple-share/pkg/simpleshare/storage/fs"
	memorystorage "github.com/tendant/simple-share/pkg/simpleshare/storage/memory"
	s3storage "github.com/tendant/simple-share/pkg/simpleshare/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Host:        "127.0.0.1",
		Port:        "8080",
		Environment: "development",
		Storage: StorageConfig{
			Type:    "fs",
			BaseDir: "./uploads",
			Region:  "us-east-1",
		},
		LogLevel:        "info",
		LogFormat:       "console",
		ShutdownTimeout: 10 * time.Second,
	}
}

// ServerConfig represents server configuration for the simple-share service
type ServerConfig struct {
	Host        string `validate:"required"`
	Port        string `validate:"required,numeric"`
	Environment string `validate:"oneof=development production testing"` // development, production, testing

	// PublicURL is the externally visible base used to build returned URLs
	PublicURL string `validate:"required,url"`
	// UploadSecret is the upload bearer credential and the delete token key
	UploadSecret string `validate:"required"`

	Storage StorageConfig

	// MaxUploadSize limits the request body in bytes. Zero means unlimited.
	MaxUploadSize int64 `validate:"gte=0"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=console json text"`

	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration `validate:"gt=0"`
}

// StorageConfig selects and configures the blob store
type StorageConfig struct {
	Type string `validate:"oneof=memory fs s3"` // "memory", "fs", "s3"

	// fs
	BaseDir string `validate:"required_if=Type fs"`

	// s3
	Bucket                 string `validate:"required_if=Type s3"`
	Prefix                 string
	Region                 string
	Endpoint               string
	AccessKeyID            string
	SecretAccessKey        string
	UsePathStyle           bool
	CreateBucketIfNotExist bool
	SSEAlgorithm           string `validate:"omitempty,oneof=AES256 aws:kms"` // empty disables server-side encryption
	SSEKMSKeyID            string
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// IsProduction reports whether the server runs in production mode
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return fmt.Errorf("invalid configuration: %s", describe(fieldErrs))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	u, err := url.Parse(c.PublicURL)
	if err != nil {
		return fmt.Errorf("invalid public URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("public URL must use http or https, got: %s", c.PublicURL)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("public URL must not carry a query or fragment: %s", c.PublicURL)
	}

	return nil
}

func describe(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// BuildBlobStore creates the BlobStore selected by the storage configuration
func (c *ServerConfig) BuildBlobStore() (simpleshare.BlobStore, error) {
	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir: c.Storage.BaseDir,
		})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.Storage.Region,
			Bucket:                 c.Storage.Bucket,
			Prefix:                 c.Storage.Prefix,
			AccessKeyID:            c.Storage.AccessKeyID,
			SecretAccessKey:        c.Storage.SecretAccessKey,
			Endpoint:               c.Storage.Endpoint,
			UsePathStyle:           c.Storage.UsePathStyle,
			CreateBucketIfNotExist: c.Storage.CreateBucketIfNotExist,
			EnableSSE:              c.Storage.SSEAlgorithm != "",
			SSEAlgorithm:           c.Storage.SSEAlgorithm,
			SSEKMSKeyID:            c.Storage.SSEKMSKeyID,
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.Storage.Type)
	}
}

// BuildSigner creates the delete token signer keyed by the upload secret
func (c *ServerConfig) BuildSigner() *deletetoken.Signer {
	return deletetoken.New(deletetoken.WithSecretKey(c.UploadSecret))
}

// BuildService creates a Service instance backed by store
func (c *ServerConfig) BuildService(store simpleshare.BlobStore, logger *slog.Logger) (simpleshare.Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	return simpleshare.New(
		simpleshare.WithBlobStore(store),
		simpleshare.WithTokenSigner(c.BuildSigner()),
		simpleshare.WithPublicURL(c.PublicURL),
		simpleshare.WithLogger(logger),
	)
}
