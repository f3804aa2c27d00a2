// Package staging writes upload bodies to scratch files on local disk so the
// storage gateway can always stream from a path, whatever the upload shape.
//
// Every path returned by Stage or StageStream belongs to the caller, who must
// hand it back to Remove once the storage call has settled.
package staging

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cosrelay/service/internal/apperror"
	"github.com/cosrelay/service/internal/logger"
)

var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// Stager owns the two scratch directories.
type Stager struct {
	tempDir   string
	uploadDir string
	now       func() time.Time
}

// New returns a Stager. tempDir receives decoded base64 payloads, uploadDir
// receives streamed multipart bodies. Neither needs to exist yet.
func New(tempDir, uploadDir string) *Stager {
	return &Stager{tempDir: tempDir, uploadDir: uploadDir, now: time.Now}
}

// File is a staged upload on disk.
type File struct {
	Path string
	Size int64
}

// Stage decodes a base64 payload, optionally carrying a data-URL header, and
// writes it to a new file under the temp directory. Nothing is written when
// the payload does not decode.
func (s *Stager) Stage(payload string) (*File, error) {
	data, err := DecodeBase64(payload)
	if err != nil {
		return nil, apperror.Decode(err, "invalid base64 payload")
	}

	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return nil, apperror.IO(err, "failed to prepare temp directory")
	}

	path := filepath.Join(s.tempDir, s.name("temp", ".png"))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		_ = os.Remove(path)
		return nil, apperror.IO(err, "failed to write temp file")
	}

	return &File{Path: path, Size: int64(len(data))}, nil
}

// StageStream copies r into a new file under the upload directory.
func (s *Stager) StageStream(r io.Reader) (*File, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, apperror.IO(err, "failed to prepare upload directory")
	}

	path := filepath.Join(s.uploadDir, s.name("upload", ""))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, apperror.IO(err, "failed to create staging file")
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		return nil, apperror.IO(err, "failed to stage upload")
	}

	return &File{Path: path, Size: n}, nil
}

// Remove deletes a staged file. A file that is already gone is not an error.
// Failures are logged and returned, but callers usually only log them.
func (s *Stager) Remove(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.FromContext(ctx).Warn("failed to remove staged file", "path", path, "error", err)
		return apperror.IO(err, "failed to remove staged file")
	}
	return nil
}

// name is time-based like the rest of the relay, with a random suffix so two
// requests in the same millisecond never share a scratch file.
func (s *Stager) name(kind, ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s-%d-%s%s", kind, s.now().UnixMilli(), suffix, ext)
}

// DecodeBase64 strips an optional "data:image/<type>;base64," header and
// decodes the rest. Whitespace is ignored and padding is optional.
func DecodeBase64(payload string) ([]byte, error) {
	payload = dataURLPrefix.ReplaceAllString(payload, "")
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)

	if strings.HasSuffix(payload, "=") || len(payload)%4 == 0 {
		return base64.StdEncoding.DecodeString(payload)
	}
	return base64.RawStdEncoding.DecodeString(payload)
}
