package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/filename"
	"github.com/tendant/simple-share/pkg/simpleshare/mediatype"
)

type object struct {
	data      []byte
	updatedAt time.Time
}

// Backend is an in-memory implementation of the simpleshare.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string]object),
	}
}

// GetObjectMeta retrieves metadata for an object in memory
func (b *Backend) GetObjectMeta(ctx context.Context, key string) (*simpleshare.ObjectMeta, error) {
	if err := filename.Validate(key); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[key]
	if !exists {
		return nil, fmt.Errorf("%w: %s", simpleshare.ErrNotFound, key)
	}

	return &simpleshare.ObjectMeta{
		Key:         key,
		Size:        int64(len(obj.data)),
		ContentType: mediatype.TypeByName(key),
		UpdatedAt:   obj.updatedAt,
	}, nil
}

// Upload reads the content fully and stores it under key. Existing objects
// are never replaced.
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader) error {
	if err := filename.Validate(key); err != nil {
		return err
	}

	if b.exists(key) {
		return fmt.Errorf("%w: %s", simpleshare.ErrAlreadyExists, key)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return &simpleshare.StorageError{Op: "write", Key: key, Err: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; exists {
		return fmt.Errorf("%w: %s", simpleshare.ErrAlreadyExists, key)
	}
	b.objects[key] = object{data: data, updatedAt: time.Now()}
	return nil
}

func (b *Backend) exists(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, exists := b.objects[key]
	return exists
}

// Download returns a seekable reader over the stored bytes
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := filename.Validate(key); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[key]
	if !exists {
		return nil, fmt.Errorf("%w: %s", simpleshare.ErrNotFound, key)
	}

	return readSeekNopCloser{bytes.NewReader(obj.data)}, nil
}

// Delete deletes an object
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := filename.Validate(key); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; !exists {
		return fmt.Errorf("%w: %s", simpleshare.ErrNotFound, key)
	}
	delete(b.objects, key)
	return nil
}

// Len returns the number of stored objects
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }
