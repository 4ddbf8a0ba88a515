package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/filename"
	"github.com/tendant/simple-share/pkg/simpleshare/mediatype"
)

// tempPrefix marks in-progress uploads. filename.Validate rejects names with a
// leading dot, so temp files are never served.
const tempPrefix = ".upload-"

// Backend is a filesystem implementation of the simpleshare.BlobStore interface.
// All files live directly in BaseDir.
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Directory holding uploaded files
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	baseDir, err := filepath.Abs(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir: baseDir,
	}, nil
}

// BaseDir returns the absolute directory files are stored in
func (b *Backend) BaseDir() string {
	return b.baseDir
}

// resolve maps a key to a path inside baseDir
func (b *Backend) resolve(key string) (string, error) {
	if err := filename.Validate(key); err != nil {
		return "", err
	}

	path := filepath.Join(b.baseDir, key)
	if filepath.Dir(path) != b.baseDir {
		return "", fmt.Errorf("%w: %q resolves outside the upload directory", filename.ErrInvalidName, key)
	}
	return path, nil
}

// GetObjectMeta retrieves metadata for a file
func (b *Backend) GetObjectMeta(ctx context.Context, key string) (*simpleshare.ObjectMeta, error) {
	path, err := b.resolve(key)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", simpleshare.ErrNotFound, key)
	} else if err != nil {
		return nil, &simpleshare.StorageError{Op: "stat", Key: key, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", simpleshare.ErrNotFound, key)
	}

	return &simpleshare.ObjectMeta{
		Key:         key,
		Size:        info.Size(),
		ContentType: mediatype.TypeByName(key),
		UpdatedAt:   info.ModTime(),
	}, nil
}

// Upload streams reader into a temp file and links it into place once
// complete, so a partially written file is never visible under key. The link
// fails rather than replacing a file that appeared in the meantime.
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader) error {
	path, err := b.resolve(key)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("%w: %s", simpleshare.ErrAlreadyExists, key)
	} else if !errors.Is(err, iofs.ErrNotExist) {
		return &simpleshare.StorageError{Op: "stat", Key: key, Err: err}
	}

	tmpPath := filepath.Join(b.baseDir, tempPrefix+uuid.NewString())
	file, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return &simpleshare.StorageError{Op: "create", Key: key, Err: err}
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return &simpleshare.StorageError{Op: "write", Key: key, Err: err}
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &simpleshare.StorageError{Op: "write", Key: key, Err: err}
	}

	err = os.Link(tmpPath, path)
	_ = os.Remove(tmpPath)
	if errors.Is(err, iofs.ErrExist) {
		return fmt.Errorf("%w: %s", simpleshare.ErrAlreadyExists, key)
	} else if err != nil {
		return &simpleshare.StorageError{Op: "link", Key: key, Err: err}
	}

	return nil
}

// Download opens a file for reading. The returned *os.File supports seeking.
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := b.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", simpleshare.ErrNotFound, key)
	} else if err != nil {
		return nil, &simpleshare.StorageError{Op: "open", Key: key, Err: err}
	}

	return file, nil
}

// Delete removes a file
func (b *Backend) Delete(ctx context.Context, key string) error {
	path, err := b.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return fmt.Errorf("%w: %s", simpleshare.ErrNotFound, key)
		}
		return &simpleshare.StorageError{Op: "delete", Key: key, Err: err}
	}

	return nil
}

// CleanupTemp removes in-progress upload files left behind by a crash
func (b *Backend) CleanupTemp() (int, error) {
	entries, err := os.ReadDir(b.baseDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read base directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		if err := os.Remove(filepath.Join(b.baseDir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
