package simpleshare

import (
	"errors"
	"fmt"

	"github.com/tendant/simple-share/pkg/simpleshare/filename"
)

// Error types
var (
	// ErrNotFound indicates the requested file does not exist
	ErrNotFound = errors.New("file not found")

	// ErrInvalidName indicates a filename that could escape the storage namespace
	ErrInvalidName = filename.ErrInvalidName

	// ErrUnauthorized indicates a missing or mismatched credential or delete token
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoFile indicates an upload request without a file
	ErrNoFile = errors.New("no file provided")

	// ErrAlreadyExists indicates an upload to a name that is already taken
	ErrAlreadyExists = errors.New("file already exists")
)

// StorageError represents an error related to storage operations
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
