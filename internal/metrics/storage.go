package metrics

import (
	"context"
	"io"
	"time"

	"github.com/cosrelay/service/internal/storage"
)

// InstrumentedStorage decorates a Storage with operation counters and timings.
type InstrumentedStorage struct {
	storage.Storage
}

var _ storage.Storage = (*InstrumentedStorage)(nil)

func NewInstrumentedStorage(s storage.Storage) *InstrumentedStorage {
	return &InstrumentedStorage{Storage: s}
}

func (s *InstrumentedStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	start := time.Now()
	err := s.Storage.Upload(ctx, key, reader, size, contentType)
	observe("upload", start, err)
	return err
}

func (s *InstrumentedStorage) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.Storage.Delete(ctx, key)
	observe("delete", start, err)
	return err
}

func (s *InstrumentedStorage) SignURL(ctx context.Context, key, method string, expiry time.Duration) (*storage.SignedURL, error) {
	start := time.Now()
	signed, err := s.Storage.SignURL(ctx, key, method, expiry)
	observe("sign", start, err)
	return signed, err
}

func observe(op string, start time.Time, err error) {
	StorageOperationsTotal.WithLabelValues(op, Status(err)).Inc()
	StorageOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
