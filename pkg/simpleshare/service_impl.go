package simpleshare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/tendant/simple-share/pkg/simpleshare/filename"
	"github.com/tendant/simple-share/pkg/simpleshare/mediatype"
)

// maxNameAttempts bounds regeneration when a generated name is already taken
const maxNameAttempts = 3

// service is the main implementation of the Service interface
type service struct {
	store     BlobStore
	signer    TokenSigner
	generator NameGenerator
	publicURL string
	logger    *slog.Logger
}

// Option is a functional option for configuring the service
type Option func(*service)

// WithBlobStore sets the storage backend
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithTokenSigner sets the delete token signer
func WithTokenSigner(signer TokenSigner) Option {
	return func(s *service) {
		s.signer = signer
	}
}

// WithNameGenerator overrides the default stored filename generator
func WithNameGenerator(generator NameGenerator) Option {
	return func(s *service) {
		s.generator = generator
	}
}

// WithPublicURL sets the base URL used to build file, info and delete URLs
func WithPublicURL(publicURL string) Option {
	return func(s *service) {
		s.publicURL = strings.TrimRight(publicURL, "/")
	}
}

// WithLogger sets the logger used for upload and delete events
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		generator: filename.NewNanoIDGenerator(),
		logger:    slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.store == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.signer == nil {
		return nil, fmt.Errorf("token signer is required")
	}
	if s.publicURL == "" {
		return nil, fmt.Errorf("public URL is required")
	}
	if s.generator == nil {
		return nil, fmt.Errorf("name generator is required")
	}

	return s, nil
}

func (s *service) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if req.Reader == nil {
		return nil, ErrNoFile
	}

	counter := &countingReader{reader: req.Reader}
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		name, err := s.generator.Generate(req.FileName)
		if err != nil {
			return nil, fmt.Errorf("failed to generate filename: %w", err)
		}
		if err := filename.Validate(name); err != nil {
			return nil, err
		}

		err = s.store.Upload(ctx, name, counter)
		// A taken name is reported before the body is read, so the upload can
		// be retried under a fresh name.
		if errors.Is(err, ErrAlreadyExists) && counter.n == 0 {
			s.logger.WarnContext(ctx, "Generated filename already exists", "name", name, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.InfoContext(ctx, "File uploaded",
			"name", name,
			"original", req.FileName,
			"size", counter.n,
			"detected", counter.detected(),
		)

		return &UploadResult{
			Name:      name,
			Size:      counter.n,
			URL:       s.FileURL(name),
			InfoURL:   s.InfoURL(name),
			DeleteURL: s.DeleteURL(name),
		}, nil
	}

	return nil, fmt.Errorf("failed to generate a unique filename after %d attempts", maxNameAttempts)
}

func (s *service) Stat(ctx context.Context, name string) (*FileInfo, error) {
	if err := filename.Validate(name); err != nil {
		return nil, err
	}

	meta, err := s.store.GetObjectMeta(ctx, name)
	if err != nil {
		return nil, err
	}

	return s.fileInfo(name, meta), nil
}

func (s *service) Open(ctx context.Context, name string) (io.ReadCloser, *FileInfo, error) {
	info, err := s.Stat(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.store.Download(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	return reader, info, nil
}

// Delete verifies the token before the store is consulted, so an unauthorized
// caller cannot learn whether a file exists.
func (s *service) Delete(ctx context.Context, token, name string) error {
	if err := s.signer.Validate(name, token); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if err := filename.Validate(name); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, name); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "File deleted", "name", name)
	return nil
}

func (s *service) FileURL(name string) string {
	return s.publicURL + "/file/" + url.PathEscape(name)
}

func (s *service) InfoURL(name string) string {
	return s.publicURL + "/" + url.PathEscape(name)
}

func (s *service) DeleteURL(name string) string {
	return s.publicURL + s.signer.DeletePath(name)
}

func (s *service) fileInfo(name string, meta *ObjectMeta) *FileInfo {
	return &FileInfo{
		Name:        name,
		Size:        meta.Size,
		ModTime:     meta.UpdatedAt,
		ContentType: mediatype.TypeByName(name),
		URL:         s.FileURL(name),
		InfoURL:     s.InfoURL(name),
	}
}

// sniffLen is how much of an upload is kept for content detection
const sniffLen = 512

// countingReader counts bytes read and keeps the first sniffLen of them
type countingReader struct {
	reader io.Reader
	n      int64
	head   []byte
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.n += int64(n)
	if keep := min(n, sniffLen-len(c.head)); keep > 0 {
		c.head = append(c.head, p[:keep]...)
	}
	return n, err
}

func (c *countingReader) detected() string {
	typ, err := mediatype.Detect(bytes.NewReader(c.head))
	if err != nil {
		return mediatype.OctetStream
	}
	return typ
}
