package simpleshare

import (
	"io"
	"time"
)

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// FileInfo describes a stored file as exposed to clients
type FileInfo struct {
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
	URL         string
	InfoURL     string
}

// UploadRequest carries a single file upload
type UploadRequest struct {
	// FileName is the client supplied name; only its extension is kept.
	FileName string
	Reader   io.Reader
}

// UploadResult is returned after a successful upload
type UploadResult struct {
	Name      string
	Size      int64
	URL       string
	InfoURL   string
	DeleteURL string
}
