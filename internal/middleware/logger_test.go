package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosrelay/service/internal/logger"
)

func TestLogger_LogsRequestWithID(t *testing.T) {
	var buf bytes.Buffer
	base := logger.New(&buf, "info", true)

	var seenID string
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(Logger(base))
	r.Post("/api/delete", func(w http.ResponseWriter, r *http.Request) {
		seenID = logger.RequestID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/delete", nil)
	req.Header.Set("X-Request-Id", "req-123")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-123", seenID)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inner, access map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	require.NoError(t, json.Unmarshal(lines[1], &access))

	assert.Equal(t, "req-123", inner["request_id"])
	assert.Equal(t, "http request", access["msg"])
	assert.Equal(t, "ERROR", access["level"])
	assert.Equal(t, "POST", access["method"])
	assert.Equal(t, "/api/delete", access["path"])
	assert.Equal(t, float64(500), access["status"])
	assert.Equal(t, "req-123", access["request_id"])
}

func TestLogger_DefaultStatusIsOK(t *testing.T) {
	var buf bytes.Buffer
	h := Logger(logger.New(&buf, "info", true))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	var access map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &access))
	assert.Equal(t, float64(200), access["status"])
	assert.Equal(t, "INFO", access["level"])
	assert.NotContains(t, access, "request_id")
}
