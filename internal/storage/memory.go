package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of Storage for tests and
// local development. It is safe for concurrent use.
type MemoryStorage struct {
	mu         sync.RWMutex
	objects    map[string]memoryObject
	publicBase string

	// Fail, when set, is returned by every remote operation.
	Fail error
}

type memoryObject struct {
	data        []byte
	contentType string
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty store whose public URLs start with publicBase.
func NewMemoryStorage(publicBase string) *MemoryStorage {
	return &MemoryStorage{
		objects:    make(map[string]memoryObject),
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

// Upload reads reader fully and stores it under key, replacing any existing object.
func (s *MemoryStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Fail != nil {
		return s.Fail
	}
	if key == "" {
		return ErrInvalidKey
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

// Delete reports ErrNotFound for unknown keys, like a strict backend would.
func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Fail != nil {
		return s.Fail
	}
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("delete object %q: %w", key, ErrNotFound)
	}
	delete(s.objects, key)
	return nil
}

// SignURL returns an unsigned URL carrying method and expiry as query parameters.
func (s *MemoryStorage) SignURL(ctx context.Context, key, method string, expiry time.Duration) (*SignedURL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Fail != nil {
		return nil, s.Fail
	}
	if key == "" {
		return nil, ErrInvalidKey
	}
	method, err := NormalizeMethod(method)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("method", method)
	q.Set("expires", fmt.Sprint(int(expiry/time.Second)))
	return newSignedURL(s.PublicURL(key)+"?"+q.Encode(), method, expiry, time.Now()), nil
}

// PublicURL returns publicBase joined with key.
func (s *MemoryStorage) PublicURL(key string) string {
	return joinURL(s.publicBase, key)
}

// HealthCheck returns Fail when set, otherwise the context error.
func (s *MemoryStorage) HealthCheck(ctx context.Context) error {
	if s.Fail != nil {
		return s.Fail
	}
	return ctx.Err()
}

// Object returns the stored bytes and content type for key.
func (s *MemoryStorage) Object(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj.data, obj.contentType, ok
}

// Len returns the number of stored objects.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
