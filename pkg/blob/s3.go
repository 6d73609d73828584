package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

var (
	// ErrInvalidConfig is returned when required S3 settings are missing.
	ErrInvalidConfig = errors.New("bucket and region are required")
	// ErrUploadFailed is returned when the blob cannot be stored.
	ErrUploadFailed = errors.New("failed to upload blob")
	// ErrDeleteFailed is returned when the blob cannot be removed.
	ErrDeleteFailed = errors.New("failed to delete blob")
)

// S3Client defines the S3 operations used by S3Storage. Kept narrow so tests
// can substitute a mock.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config contains configuration for S3-compatible blob storage.
type Config struct {
	Bucket         string        `env:"BLOB_BUCKET,required"`                 // Bucket is the target bucket name.
	Region         string        `env:"BLOB_REGION,required"`                 // Region is the bucket region.
	AccessKeyID    string        `env:"BLOB_ACCESS_KEY_ID"`                   // AccessKeyID for static credentials; falls back to the default chain if empty.
	SecretKey      string        `env:"BLOB_SECRET_KEY"`                      // SecretKey for static credentials.
	Endpoint       string        `env:"BLOB_ENDPOINT"`                        // Endpoint overrides the S3 endpoint for compatible services.
	BaseURL        string        `env:"BLOB_BASE_URL"`                        // BaseURL is the public URL base for serving blobs.
	ForcePathStyle bool          `env:"BLOB_FORCE_PATH_STYLE"`                // ForcePathStyle is needed for MinIO-style services.
	UploadTimeout  time.Duration `env:"BLOB_UPLOAD_TIMEOUT" envDefault:"30s"` // UploadTimeout bounds a single upload.
}

// S3Storage implements Storage on Amazon S3 and S3-compatible services.
// It is safe for concurrent use.
type S3Storage struct {
	client        S3Client
	bucket        string
	baseURL       string
	uploadTimeout time.Duration
}

// Option configures S3Storage construction.
type Option func(*options)

type options struct {
	client S3Client
}

// WithClient sets a pre-configured S3 client, useful for testing with mocks.
func WithClient(client S3Client) Option {
	return func(o *options) { o.client = client }
}

// NewS3Storage creates a new S3 storage instance.
func NewS3Storage(ctx context.Context, cfg Config, opts ...Option) (*S3Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		loadOpts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}

		client = s3.NewFromConfig(awsCfg, func(s3opts *s3.Options) {
			if cfg.Endpoint != "" {
				s3opts.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			s3opts.UsePathStyle = cfg.ForcePathStyle
		})
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Storage{
		client:        client,
		bucket:        cfg.Bucket,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		uploadTimeout: cfg.UploadTimeout,
	}, nil
}

// Upload stores the given bytes under "<folder>/<name>" and returns the
// public URL plus the storage key for later deletion.
func (s *S3Storage) Upload(ctx context.Context, data []byte, folder, name, contentType string) (*Object, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrUploadFailed)
	}

	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	key := path.Join(folder, name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, errors.Join(ErrUploadFailed, err)
	}

	return &Object{
		URL:      s.baseURL + "/" + key,
		PublicID: key,
	}, nil
}

// Delete removes a blob by its storage key. A missing key is treated as
// success so cleanup paths can be retried safely.
func (s *S3Storage) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil
		}
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}
