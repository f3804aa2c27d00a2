// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/cosrelay/service/internal/apperror"
	"github.com/cosrelay/service/internal/logger"
)

// ErrorBody is the body of every failed request.
type ErrorBody struct {
	Error string `json:"error" example:"storage request failed"`
	Code  string `json:"code"  example:"storage_error"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 response with the payload as the whole body.
func OK(w http.ResponseWriter, payload interface{}) {
	JSON(w, http.StatusOK, payload)
}

// Error classifies err, logs the internal cause, and writes a summarised body.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.From(err)
	log := logger.FromContext(r.Context())

	if appErr.Internal != nil {
		log.Error("request failed",
			"code", string(appErr.Kind),
			"path", r.URL.Path,
			"error", appErr.Internal,
		)
	} else {
		log.Warn("request rejected", "code", string(appErr.Kind), "path", r.URL.Path, "reason", appErr.Message)
	}

	JSON(w, appErr.StatusCode(), ErrorBody{Error: appErr.Message, Code: string(appErr.Kind)})
}

// Invalid writes a validation failure for a malformed or incomplete request.
func Invalid(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, apperror.Validation(message))
}
