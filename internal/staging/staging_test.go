package staging

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosrelay/service/internal/apperror"
)

// 1x1 transparent PNG.
const pngBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func newTestStager(t *testing.T) (*Stager, string) {
	t.Helper()
	root := t.TempDir()
	return New(filepath.Join(root, "temp"), filepath.Join(root, "uploads")), root
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return entries
}

func TestStage_RoundTrip(t *testing.T) {
	want, err := base64.StdEncoding.DecodeString(pngBase64)
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload string
	}{
		{"plain base64", pngBase64},
		{"png data url", "data:image/png;base64," + pngBase64},
		{"jpeg data url", "data:image/jpeg;base64," + pngBase64},
		{"unpadded", strings.TrimRight(pngBase64, "=")},
		{"wrapped lines", pngBase64[:20] + "\n" + pngBase64[20:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStager(t)

			f, err := s.Stage(tt.payload)
			require.NoError(t, err)

			got, err := os.ReadFile(f.Path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.Equal(t, int64(len(want)), f.Size)
			assert.Equal(t, ".png", filepath.Ext(f.Path))
			assert.True(t, strings.HasPrefix(filepath.Base(f.Path), "temp-"))
		})
	}
}

func TestStage_CreatesTempDir(t *testing.T) {
	s, root := newTestStager(t)
	tempDir := filepath.Join(root, "temp")
	_, err := os.Stat(tempDir)
	require.True(t, os.IsNotExist(err))

	f, err := s.Stage(pngBase64)
	require.NoError(t, err)

	assert.Equal(t, tempDir, filepath.Dir(f.Path))
}

func TestStage_InvalidBase64LeavesNothingBehind(t *testing.T) {
	s, root := newTestStager(t)

	f, err := s.Stage("not!@#base64")

	require.Error(t, err)
	assert.Nil(t, f)
	assert.True(t, apperror.IsKind(err, apperror.KindDecode))
	assert.Empty(t, dirEntries(t, filepath.Join(root, "temp")))
}

func TestStage_UnwritableDirectory(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	s := New(filepath.Join(blocker, "temp"), filepath.Join(root, "uploads"))

	_, err := s.Stage(pngBase64)

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindIO))
}

func TestStage_SameMillisecondDoesNotCollide(t *testing.T) {
	s, _ := newTestStager(t)
	at := time.UnixMilli(1700000000000)
	s.now = func() time.Time { return at }

	a, err := s.Stage(pngBase64)
	require.NoError(t, err)
	b, err := s.Stage(pngBase64)
	require.NoError(t, err)

	assert.NotEqual(t, a.Path, b.Path)
	assert.Contains(t, filepath.Base(a.Path), "1700000000000")
}

func TestStageStream(t *testing.T) {
	s, root := newTestStager(t)

	f, err := s.StageStream(strings.NewReader("hello world"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "uploads"), filepath.Dir(f.Path))
	assert.Equal(t, int64(11), f.Size)
	got, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStageStream_ReadFailureRemovesFile(t *testing.T) {
	s, root := newTestStager(t)

	_, err := s.StageStream(failingReader{})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindIO))
	assert.Empty(t, dirEntries(t, filepath.Join(root, "uploads")))
}

func TestRemove(t *testing.T) {
	s, _ := newTestStager(t)
	ctx := context.Background()

	f, err := s.Stage(pngBase64)
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, f.Path))
	_, err = os.Stat(f.Path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Remove(ctx, f.Path), "removing twice is not an error")
	assert.NoError(t, s.Remove(ctx, ""))
}

func TestDecodeBase64(t *testing.T) {
	got, err := DecodeBase64("data:image/gif;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	_, err = DecodeBase64("!@#")
	assert.Error(t, err)
}
