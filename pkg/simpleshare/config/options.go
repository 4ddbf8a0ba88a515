package config

import (
	"fmt"
	"time"
)

// WithHost sets the listen host
func WithHost(host string) Option {
	return func(c *ServerConfig) error {
		if host == "" {
			return fmt.Errorf("host cannot be empty")
		}
		c.Host = host
		return nil
	}
}

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithPublicURL sets the base URL used in returned links
func WithPublicURL(publicURL string) Option {
	return func(c *ServerConfig) error {
		if publicURL == "" {
			return fmt.Errorf("public URL cannot be empty")
		}
		c.PublicURL = publicURL
		return nil
	}
}

// WithUploadSecret sets the upload credential that also keys delete tokens
func WithUploadSecret(secret string) Option {
	return func(c *ServerConfig) error {
		if secret == "" {
			return fmt.Errorf("upload secret cannot be empty")
		}
		c.UploadSecret = secret
		return nil
	}
}

// WithStorageURL configures storage from a STORAGE_URL style string
func WithStorageURL(raw string) Option {
	return func(c *ServerConfig) error {
		storage, err := ParseStorageURL(raw)
		if err != nil {
			return err
		}
		c.Storage = storage
		return nil
	}
}

// WithFilesystemStorage stores uploads in baseDir
func WithFilesystemStorage(baseDir string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.Storage = StorageConfig{Type: "fs", BaseDir: baseDir}
		return nil
	}
}

// WithMemoryStorage keeps uploads in process memory
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.Storage = StorageConfig{Type: "memory"}
		return nil
	}
}

// WithMaxUploadSize limits upload request bodies to size bytes. Zero disables the limit.
func WithMaxUploadSize(size int64) Option {
	return func(c *ServerConfig) error {
		if size < 0 {
			return fmt.Errorf("max upload size cannot be negative, got: %d", size)
		}
		c.MaxUploadSize = size
		return nil
	}
}

// WithLogging sets the log level and output format
func WithLogging(level, format string) Option {
	return func(c *ServerConfig) error {
		if level != "" {
			c.LogLevel = level
		}
		if format != "" {
			c.LogFormat = format
		}
		return nil
	}
}

// WithCORSAllowedOrigins enables CORS for the given origins
func WithCORSAllowedOrigins(origins ...string) Option {
	return func(c *ServerConfig) error {
		c.CORSAllowedOrigins = origins
		return nil
	}
}

// WithShutdownTimeout sets how long in-flight requests get on shutdown
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(c *ServerConfig) error {
		if timeout <= 0 {
			return fmt.Errorf("shutdown timeout must be positive, got: %s", timeout)
		}
		c.ShutdownTimeout = timeout
		return nil
	}
}
