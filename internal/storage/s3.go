package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cosrelay/service/internal/logger"
)

var _ Storage = (*S3Storage)(nil)

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type s3Presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignDeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Storage implements Storage with the AWS SDK v2 pointed at COS's
// S3-compatible endpoint.
type S3Storage struct {
	client     s3API
	presigner  s3Presigner
	bucket     string
	publicBase string
	now        func() time.Time
}

// NewS3Storage builds the SDK client from static credentials. Shared AWS
// config files are read by the SDK but the explicit region, endpoint and
// credentials always win.
func NewS3Storage(ctx context.Context, opts Options) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpointURL(opts.Endpoint, opts.UseSSL))
		o.UsePathStyle = false
		// COS rejects the SDK's default trailing checksums.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &S3Storage{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     opts.Bucket,
		publicBase: strings.TrimRight(opts.PublicBase, "/"),
		now:        time.Now,
	}, nil
}

// Upload puts reader to COS under key with an explicit content length.
func (s *S3Storage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if key == "" {
		return ErrInvalidKey
	}
	start := time.Now()

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   reader,
	}
	if size >= 0 {
		in.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}

	logger.FromContext(ctx).Debug("storage upload completed",
		"key", key, "size", size, "content_type", contentType, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Delete removes the object at key from the bucket.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	logger.FromContext(ctx).Debug("storage object deleted", "key", key)
	return nil
}

// SignURL presigns method on key with the SDK presign client.
func (s *S3Storage) SignURL(ctx context.Context, key, method string, expiry time.Duration) (*SignedURL, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	method, err := NormalizeMethod(method)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(s.bucket)
	withExpiry := s3.WithPresignExpires(expiry)

	var req *v4.PresignedHTTPRequest
	switch method {
	case http.MethodPut:
		req, err = s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{Bucket: bucket, Key: aws.String(key)}, withExpiry)
	case http.MethodGet:
		req, err = s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{Bucket: bucket, Key: aws.String(key)}, withExpiry)
	case http.MethodDelete:
		req, err = s.presigner.PresignDeleteObject(ctx, &s3.DeleteObjectInput{Bucket: bucket, Key: aws.String(key)}, withExpiry)
	}
	if err != nil {
		return nil, fmt.Errorf("presign %s %q: %w", method, key, err)
	}

	logger.FromContext(ctx).Debug("storage presigned url generated", "key", key, "method", method, "expiry", expiry)
	return newSignedURL(req.URL, req.Method, expiry, s.now()), nil
}

// PublicURL returns the unsigned URL for key.
func (s *S3Storage) PublicURL(key string) string {
	return joinURL(s.publicBase, key)
}

// HealthCheck issues HeadBucket against the configured bucket.
func (s *S3Storage) HealthCheck(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("head bucket %q: %w", s.bucket, err)
	}
	return nil
}
