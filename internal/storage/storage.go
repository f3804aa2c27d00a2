// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup:
// both MinioStorage and S3Storage talk to Tencent COS through its
// S3-compatible endpoint, and work with any other S3-compatible provider.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultSignExpiry is how long a signed URL stays valid unless configured otherwise.
const DefaultSignExpiry = 600 * time.Second

var (
	ErrInvalidKey    = errors.New("storage: invalid key")
	ErrInvalidMethod = errors.New("storage: method must be one of PUT, GET, DELETE")
	ErrNotFound      = errors.New("storage: object not found")
)

// Storage is the interface for uploading, deleting and signing objects.
type Storage interface {
	// Upload streams data to the store under the given key, replacing any existing object.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
	// SignURL returns a URL granting method on key until expiry elapses.
	SignURL(ctx context.Context, key, method string, expiry time.Duration) (*SignedURL, error)
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
	// HealthCheck verifies the bucket is reachable with the configured credentials.
	HealthCheck(ctx context.Context) error
}

// SignedURL is the signing payload returned to clients. Field names follow
// the COS SDK's getObjectUrl result.
type SignedURL struct {
	URL       string    `json:"Url"`
	Method    string    `json:"Method"`
	Expires   int       `json:"Expires"`
	ExpiresAt time.Time `json:"ExpiresAt"`
}

// Options configures a remote Storage implementation.
type Options struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	Region     string
	UseSSL     bool
	PublicBase string
}

// NormalizeMethod upper-cases method and rejects anything a signed URL may not carry.
// An empty method means PUT.
func NormalizeMethod(method string) (string, error) {
	m := strings.ToUpper(strings.TrimSpace(method))
	switch m {
	case "":
		return http.MethodPut, nil
	case http.MethodPut, http.MethodGet, http.MethodDelete:
		return m, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidMethod, method)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func newSignedURL(rawURL, method string, expiry time.Duration, now time.Time) *SignedURL {
	return &SignedURL{
		URL:       rawURL,
		Method:    method,
		Expires:   int(expiry / time.Second),
		ExpiresAt: now.Add(expiry).UTC(),
	}
}

func endpointURL(endpoint string, useSSL bool) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// New returns the Storage for driver ("minio" or "s3").
func New(ctx context.Context, driver string, opts Options) (Storage, error) {
	switch driver {
	case "", "minio":
		s, err := NewMinioStorage(opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := NewS3Storage(ctx, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}
