package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/filename"
	"github.com/tendant/simple-share/pkg/simpleshare/mediatype"
)

// Supported server-side encryption algorithms
const (
	SSEAlgorithmAES256 = "AES256"
	SSEAlgorithmKMS    = "aws:kms"
)

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	Prefix          string // Optional key prefix, e.g. "uploads/"
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)

	// Server-side encryption options
	EnableSSE    bool   // Enable server-side encryption
	SSEAlgorithm string // SSE algorithm (AES256 or aws:kms)
	SSEKMSKeyID  string // Optional KMS key ID for aws:kms algorithm

	// MinIO/S3-compatible service options
	CreateBucketIfNotExist bool // Create bucket if it doesn't exist
}

// Backend is an S3-compatible implementation of the simpleshare.BlobStore interface
type Backend struct {
	client *s3.Client
	bucket string
	config Config
}

// New creates a new S3-compatible storage backend
func New(config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if config.Region == "" {
		config.Region = "us-east-1"
	}

	if config.EnableSSE {
		switch config.SSEAlgorithm {
		case "":
			config.SSEAlgorithm = SSEAlgorithmAES256
		case SSEAlgorithmAES256, SSEAlgorithmKMS:
		default:
			return nil, fmt.Errorf("unsupported SSE algorithm %q", config.SSEAlgorithm)
		}
	}

	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		// Use default credential chain
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)

	// Custom endpoint for S3-compatible services (MinIO, etc.)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	backend := &Backend{
		client: s3.NewFromConfig(awsCfg, s3Options...),
		bucket: config.Bucket,
		config: config,
	}

	if config.CreateBucketIfNotExist {
		if err := backend.createBucketIfNotExists(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return backend, nil
}

// createBucketIfNotExists creates the bucket if it doesn't exist
func (b *Backend) createBucketIfNotExists(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket

	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) &&
		!strings.Contains(err.Error(), "BadRequest") &&
		!strings.Contains(err.Error(), "NoSuchBucket") {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	createInput := &s3.CreateBucketInput{
		Bucket: aws.String(b.bucket),
	}

	// Add location constraint for regions other than us-east-1
	if b.config.Region != "us-east-1" {
		createInput.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.config.Region),
		}
	}

	_, err = b.client.CreateBucket(ctx, createInput)
	if err != nil {
		if strings.Contains(err.Error(), "BucketAlreadyExists") ||
			strings.Contains(err.Error(), "BucketAlreadyOwnedByYou") {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// objectKey maps a stored filename to its S3 key
func (b *Backend) objectKey(key string) (string, error) {
	if err := filename.Validate(key); err != nil {
		return "", err
	}
	return b.config.Prefix + key, nil
}

// GetObjectMeta retrieves metadata for an object in S3
func (b *Backend) GetObjectMeta(ctx context.Context, key string) (*simpleshare.ObjectMeta, error) {
	objectKey, err := b.objectKey(key)
	if err != nil {
		return nil, err
	}

	result, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", simpleshare.ErrNotFound, key)
		}
		return nil, &simpleshare.StorageError{Op: "head", Key: key, Err: err}
	}

	meta := &simpleshare.ObjectMeta{
		Key:         key,
		Size:        aws.ToInt64(result.ContentLength),
		ContentType: aws.ToString(result.ContentType),
		UpdatedAt:   aws.ToTime(result.LastModified),
		ETag:        strings.Trim(aws.ToString(result.ETag), "\""),
	}

	return meta, nil
}

// Upload streams content to S3 using the multipart upload manager. The object
// is written with If-None-Match so an existing key is never replaced.
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader) error {
	objectKey, err := b.objectKey(key)
	if err != nil {
		return err
	}

	if _, err := b.GetObjectMeta(ctx, key); err == nil {
		return fmt.Errorf("%w: %s", simpleshare.ErrAlreadyExists, key)
	} else if !errors.Is(err, simpleshare.ErrNotFound) {
		return err
	}

	uploader := manager.NewUploader(b.client)
	if _, err := uploader.Upload(ctx, b.putObjectInput(objectKey, key, reader)); err != nil {
		if isPreconditionFailed(err) {
			return fmt.Errorf("%w: %s", simpleshare.ErrAlreadyExists, key)
		}
		return &simpleshare.StorageError{Op: "write", Key: key, Err: err}
	}

	return nil
}

func (b *Backend) putObjectInput(objectKey, key string, reader io.Reader) *s3.PutObjectInput {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(objectKey),
		Body:        reader,
		ContentType: aws.String(mediatype.TypeByName(key)),
		IfNoneMatch: aws.String("*"),
	}

	if b.config.EnableSSE {
		switch b.config.SSEAlgorithm {
		case SSEAlgorithmAES256:
			input.ServerSideEncryption = types.ServerSideEncryptionAes256
		case SSEAlgorithmKMS:
			input.ServerSideEncryption = types.ServerSideEncryptionAwsKms
			if b.config.SSEKMSKeyID != "" {
				input.SSEKMSKeyId = aws.String(b.config.SSEKMSKeyID)
			}
		}
	}

	return input
}

// Download downloads content directly from S3
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	objectKey, err := b.objectKey(key)
	if err != nil {
		return nil, err
	}

	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", simpleshare.ErrNotFound, key)
		}
		return nil, &simpleshare.StorageError{Op: "open", Key: key, Err: err}
	}

	return result.Body, nil
}

// Delete deletes content from S3. DeleteObject succeeds for missing keys, so
// existence is checked first to report ErrNotFound.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if _, err := b.GetObjectMeta(ctx, key); err != nil {
		return err
	}

	objectKey, err := b.objectKey(key)
	if err != nil {
		return err
	}

	_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return &simpleshare.StorageError{Op: "delete", Key: key, Err: err}
	}

	return nil
}

// isNotFound reports whether err is an S3 missing object error. HeadObject
// responses carry no body, so the typed error is not always available.
func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

// isPreconditionFailed reports whether a conditional write lost to an
// existing object.
func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	return false
}
