package simpleshare

import (
	"context"
	"io"
)

// Service defines the main interface for the simple-share library
type Service interface {
	// Upload stores a new file under a generated name and returns its URLs
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)

	// Stat returns information about a stored file
	Stat(ctx context.Context, name string) (*FileInfo, error)

	// Open returns the file contents together with its information.
	// The caller must close the reader.
	Open(ctx context.Context, name string) (io.ReadCloser, *FileInfo, error)

	// Delete removes a file after verifying its delete token
	Delete(ctx context.Context, token, name string) error

	// URL helpers
	FileURL(name string) string
	InfoURL(name string) string
	DeleteURL(name string) string
}
