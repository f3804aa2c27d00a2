package upload

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
	"github.com/cosrelay/service/internal/objectkey"
	"github.com/cosrelay/service/internal/staging"
	"github.com/cosrelay/service/internal/storage"
)

const (
	publicBase = "https://demo-1250000000.cos.ap-guangzhou.myqcloud.com"
	pngBase64  = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="
)

type fixture struct {
	svc       *Service
	store     *storage.MemoryStorage
	stager    *staging.Stager
	tempDir   string
	uploadDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		store:     storage.NewMemoryStorage(publicBase),
		tempDir:   filepath.Join(root, "temp"),
		uploadDir: filepath.Join(root, "uploads"),
	}
	f.stager = staging.New(f.tempDir, f.uploadDir)
	keys := objectkey.NewResolverWithClock("", func() time.Time { return time.UnixMilli(1700000000000) })
	f.svc = NewService(f.store, f.stager, keys, 0)
	return f
}

// leftovers lists every file still present in both scratch directories.
func (f *fixture) leftovers(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, dir := range []string{f.tempDir, f.uploadDir} {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		require.NoError(t, err)
		for _, e := range entries {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}

func TestUploadBase64_Success(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.UploadBase64(context.Background(), "data:image/png;base64,"+pngBase64, "a.png")
	require.NoError(t, err)

	assert.Equal(t, "uploads/1700000000000-a.png", res.Key)
	assert.Equal(t, publicBase+"/uploads/1700000000000-a.png", res.URL)

	want, _ := base64.StdEncoding.DecodeString(pngBase64)
	data, ct, ok := f.store.Object(res.Key)
	require.True(t, ok)
	assert.Equal(t, want, data)
	assert.Equal(t, "image/png", ct)
	assert.Empty(t, f.leftovers(t))
}

func TestUploadBase64_DefaultFilename(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.UploadBase64(context.Background(), pngBase64, "")
	require.NoError(t, err)

	assert.Equal(t, "uploads/1700000000000-image.png", res.Key)
}

func TestUploadBase64_StorageFailureCleansUp(t *testing.T) {
	f := newFixture(t)
	f.store.Fail = errors.New("RequestTimeTooSkewed")

	res, err := f.svc.UploadBase64(context.Background(), pngBase64, "a.png")

	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, apperror.IsKind(err, apperror.KindStorage))
	assert.ErrorIs(t, err, f.store.Fail)
	assert.Empty(t, f.leftovers(t))
}

func TestUploadBase64_InvalidPayload(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UploadBase64(context.Background(), "!@#", "a.png")

	assert.True(t, apperror.IsKind(err, apperror.KindDecode))
	assert.Equal(t, 0, f.store.Len())
	assert.Empty(t, f.leftovers(t))
}

func TestUploadBase64_MissingPayload(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UploadBase64(context.Background(), "", "a.png")

	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestUploadFile(t *testing.T) {
	tests := []struct {
		name     string
		fail     error
		filename string
		ct       string
		wantCT   string
	}{
		{name: "success keeps given content type", filename: "notes.txt", ct: "text/plain; charset=utf-8", wantCT: "text/plain; charset=utf-8"},
		{name: "success guesses content type", filename: "photo.jpg", wantCT: "image/jpeg"},
		{name: "success unknown extension", filename: "blob", wantCT: "application/octet-stream"},
		{name: "storage failure", filename: "photo.jpg", fail: errors.New("AccessDenied")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.store.Fail = tt.fail

			staged, err := f.stager.StageStream(strings.NewReader("payload"))
			require.NoError(t, err)
			require.Len(t, f.leftovers(t), 1)

			res, err := f.svc.UploadFile(context.Background(), staged, tt.filename, tt.ct)

			assert.Empty(t, f.leftovers(t), "staged file must be removed")
			if tt.fail != nil {
				assert.True(t, apperror.IsKind(err, apperror.KindStorage))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "uploads/1700000000000-"+tt.filename, res.Key)
			data, ct, ok := f.store.Object(res.Key)
			require.True(t, ok)
			assert.Equal(t, "payload", string(data))
			assert.Equal(t, tt.wantCT, ct)
		})
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Upload(ctx, "uploads/a.png", strings.NewReader("x"), 1, "image/png"))

	require.NoError(t, f.svc.Delete(ctx, "uploads/a.png"))
	assert.Equal(t, 0, f.store.Len())

	err := f.svc.Delete(ctx, "uploads/missing.png")
	assert.True(t, apperror.IsKind(err, apperror.KindStorage))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = f.svc.Delete(ctx, "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestSignURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	signed, err := f.svc.SignURL(ctx, "uploads/a.png", "")
	require.NoError(t, err)
	assert.Equal(t, "PUT", signed.Method)
	assert.Equal(t, 600, signed.Expires)
	assert.True(t, strings.HasPrefix(signed.URL, publicBase+"/uploads/a.png?"))

	signed, err = f.svc.SignURL(ctx, "uploads/a.png", "get")
	require.NoError(t, err)
	assert.Equal(t, "GET", signed.Method)

	_, err = f.svc.SignURL(ctx, "uploads/a.png", "POST")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = f.svc.SignURL(ctx, "", "GET")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	f.store.Fail = errors.New("InvalidAccessKeyId")
	_, err = f.svc.SignURL(ctx, "uploads/a.png", "GET")
	assert.True(t, apperror.IsKind(err, apperror.KindStorage))
}

func TestReady(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Ready(context.Background()))

	f.store.Fail = errors.New("NoSuchBucket")
	assert.ErrorIs(t, f.svc.Ready(context.Background()), f.store.Fail)
}
