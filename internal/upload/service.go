// Package upload relays uploads, deletions and signing requests from
// clients to object storage.
package upload

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/cosrelay/service/internal/apperror"
	"github.com/cosrelay/service/internal/logger"
	"github.com/cosrelay/service/internal/metrics"
	"github.com/cosrelay/service/internal/objectkey"
	"github.com/cosrelay/service/internal/staging"
	"github.com/cosrelay/service/internal/storage"
	"github.com/cosrelay/service/internal/tracing"
)

// DefaultFilename names base64 uploads that arrive without one.
const DefaultFilename = "image.png"

// Result is returned for every successful upload.
type Result struct {
	Key string `json:"key" example:"uploads/1700000000000-a.png"`
	URL string `json:"url" example:"https://demo-1250000000.cos.ap-guangzhou.myqcloud.com/uploads/1700000000000-a.png"`
}

// Service contains the relay's orchestration logic.
type Service struct {
	store  storage.Storage
	stager *staging.Stager
	keys   *objectkey.Resolver
	expiry time.Duration
}

// NewService creates a new upload Service. A non-positive expiry means
// storage.DefaultSignExpiry.
func NewService(store storage.Storage, stager *staging.Stager, keys *objectkey.Resolver, expiry time.Duration) *Service {
	if expiry <= 0 {
		expiry = storage.DefaultSignExpiry
	}
	return &Service{store: store, stager: stager, keys: keys, expiry: expiry}
}

// UploadFile sends an already staged file to storage under a key derived
// from filename. The staged file is removed before returning, whatever the
// outcome. An empty contentType is guessed from the filename extension.
func (s *Service) UploadFile(ctx context.Context, staged *staging.File, filename, contentType string) (*Result, error) {
	defer s.stager.Remove(ctx, staged.Path) //nolint:errcheck

	ctx, span := tracing.StartSpan(ctx, "upload.file",
		tracing.AttrSource.String("multipart"),
		tracing.AttrUploadSize.Int64(staged.Size),
	)

	res, err := s.put(ctx, staged, filename, contentType)
	observeUpload("multipart", staged.Size, err)
	tracing.End(span, err)
	return res, err
}

// UploadBase64 decodes payload into a temp file, uploads it and removes the
// temp file. filename defaults to DefaultFilename.
func (s *Service) UploadBase64(ctx context.Context, payload, filename string) (*Result, error) {
	if payload == "" {
		return nil, apperror.Validation("base64 is required")
	}
	if filename == "" {
		filename = DefaultFilename
	}

	ctx, span := tracing.StartSpan(ctx, "upload.base64", tracing.AttrSource.String("base64"))

	staged, err := s.stager.Stage(payload)
	if err != nil {
		observeUpload("base64", 0, err)
		tracing.End(span, err)
		return nil, err
	}
	defer s.stager.Remove(ctx, staged.Path) //nolint:errcheck
	span.SetAttributes(tracing.AttrUploadSize.Int64(staged.Size))

	res, err := s.put(ctx, staged, filename, "")
	observeUpload("base64", staged.Size, err)
	tracing.End(span, err)
	return res, err
}

func (s *Service) put(ctx context.Context, staged *staging.File, filename, contentType string) (*Result, error) {
	f, err := os.Open(staged.Path)
	if err != nil {
		return nil, apperror.IO(err, "failed to open staged file")
	}
	defer f.Close()

	if contentType == "" {
		contentType = contentTypeFor(filename)
	}

	key := s.keys.Resolve(filename)
	trace.SpanFromContext(ctx).SetAttributes(tracing.AttrObjectKey.String(key))
	if err := s.store.Upload(ctx, key, f, staged.Size, contentType); err != nil {
		return nil, apperror.Storage(err, "failed to upload object")
	}

	logger.FromContext(ctx).Info("object uploaded", "key", key, "size", staged.Size)
	return &Result{Key: key, URL: s.store.PublicURL(key)}, nil
}

// Delete removes key from storage. Existence is not checked first.
func (s *Service) Delete(ctx context.Context, key string) error {
	if key == "" {
		return apperror.Validation("key is required")
	}

	ctx, span := tracing.StartSpan(ctx, "upload.delete", tracing.AttrObjectKey.String(key))

	if err := s.store.Delete(ctx, key); err != nil {
		tracing.End(span, err)
		return apperror.Storage(err, "failed to delete object")
	}
	span.End()

	logger.FromContext(ctx).Info("object deleted", "key", key)
	return nil
}

// SignURL issues a signed URL for method on key. method defaults to PUT.
func (s *Service) SignURL(ctx context.Context, key, method string) (*storage.SignedURL, error) {
	if key == "" {
		return nil, apperror.Validation("key is required")
	}
	m, err := storage.NormalizeMethod(method)
	if err != nil {
		return nil, apperror.Validation("method must be one of PUT, GET, DELETE")
	}

	ctx, span := tracing.StartSpan(ctx, "upload.sign",
		tracing.AttrObjectKey.String(key),
		tracing.AttrMethod.String(m),
	)

	signed, err := s.store.SignURL(ctx, key, m, s.expiry)
	metrics.SignedURLsTotal.WithLabelValues(m, metrics.Status(err)).Inc()
	tracing.End(span, err)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			return nil, apperror.Validation("key is required")
		}
		return nil, apperror.Storage(err, "failed to sign url")
	}
	return signed, nil
}

// Ready reports whether the storage backend is reachable.
func (s *Service) Ready(ctx context.Context) error {
	if err := s.store.HealthCheck(ctx); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func observeUpload(source string, size int64, err error) {
	metrics.UploadsTotal.WithLabelValues(source, metrics.Status(err)).Inc()
	if err == nil {
		metrics.UploadBytes.WithLabelValues(source).Observe(float64(size))
	}
}
