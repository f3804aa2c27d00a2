package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/cosrelay/service/internal/logger"
)

var _ Storage = (*MinioStorage)(nil)

// MinioStorage implements Storage with minio-go against COS's S3 endpoint
// ("cos.<region>.myqcloud.com"), using virtual-hosted bucket addressing.
type MinioStorage struct {
	client     *minio.Client
	bucket     string
	publicBase string
	now        func() time.Time
}

// NewMinioStorage creates a MinIO client. No network call is made; use
// HealthCheck to verify the bucket.
func NewMinioStorage(opts Options) (*MinioStorage, error) {
	endpoint := opts.Endpoint
	if i := strings.Index(endpoint, "://"); i >= 0 {
		endpoint = endpoint[i+3:]
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure:       opts.UseSSL,
		Region:       opts.Region,
		BucketLookup: minio.BucketLookupDNS,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStorage{
		client:     client,
		bucket:     opts.Bucket,
		publicBase: strings.TrimRight(opts.PublicBase, "/"),
		now:        time.Now,
	}, nil
}

// Upload streams reader to COS under key. size must be the exact byte count
// (pass -1 only if the size is genuinely unknown; minio will buffer it).
func (s *MinioStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if key == "" {
		return ErrInvalidKey
	}
	start := time.Now()

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}

	logger.FromContext(ctx).Debug("storage upload completed",
		"key", key, "size", size, "content_type", contentType, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Delete removes the object at key from the bucket.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return fmt.Errorf("delete object %q: %w: %w", key, ErrNotFound, err)
		}
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	logger.FromContext(ctx).Debug("storage object deleted", "key", key)
	return nil
}

// SignURL presigns method on key. The signature is computed locally.
func (s *MinioStorage) SignURL(ctx context.Context, key, method string, expiry time.Duration) (*SignedURL, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	method, err := NormalizeMethod(method)
	if err != nil {
		return nil, err
	}

	u, err := s.client.Presign(ctx, method, s.bucket, key, expiry, nil)
	if err != nil {
		return nil, fmt.Errorf("presign %s %q: %w", method, key, err)
	}

	logger.FromContext(ctx).Debug("storage presigned url generated", "key", key, "method", method, "expiry", expiry)
	return newSignedURL(u.String(), method, expiry, s.now()), nil
}

// PublicURL returns the unsigned URL for key,
// e.g. "https://demo-1250000000.cos.ap-guangzhou.myqcloud.com/uploads/1-a.png".
func (s *MinioStorage) PublicURL(key string) string {
	return joinURL(s.publicBase, key)
}

// HealthCheck verifies the bucket exists and the credentials can see it.
func (s *MinioStorage) HealthCheck(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", s.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}
