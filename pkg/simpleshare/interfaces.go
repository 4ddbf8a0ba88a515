package simpleshare

import (
	"context"
	"io"
)

// BlobStore defines the interface for storage backends.
//
// Keys are flat stored filenames. Implementations must reject keys that fail
// filename.Validate and must report absent objects with an error wrapping
// ErrNotFound. Stored objects are immutable: Upload never replaces an existing
// object and reports a taken key with an error wrapping ErrAlreadyExists.
type BlobStore interface {
	// Upload streams reader into the object stored under key. A key that is
	// already taken when Upload starts is reported before reader is read.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Download opens the object for reading. The returned reader may also
	// implement io.ReadSeeker.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, key string) (*ObjectMeta, error)

	// Delete removes the object
	Delete(ctx context.Context, key string) error
}

// NameGenerator produces stored filenames for new uploads.
type NameGenerator interface {
	Generate(original string) (string, error)
}

// TokenSigner issues and checks delete capability tokens.
type TokenSigner interface {
	Generate(name string) string
	Validate(name, token string) error
	DeletePath(name string) string
}
