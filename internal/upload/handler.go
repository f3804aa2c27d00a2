package upload

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cosrelay/service/internal/apperror"
	"github.com/cosrelay/service/internal/response"
	"github.com/cosrelay/service/internal/staging"
)

// Handler holds HTTP handlers for the relay endpoints.
type Handler struct {
	svc           *Service
	stager        *staging.Stager
	maxUploadSize int64
}

// NewHandler creates a new upload Handler. Request bodies larger than
// maxUploadSize bytes are rejected.
func NewHandler(svc *Service, stager *staging.Stager, maxUploadSize int64) *Handler {
	return &Handler{svc: svc, stager: stager, maxUploadSize: maxUploadSize}
}

// Routes registers the relay endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/upload", h.Upload)
	r.Post("/upload/base64", h.UploadBase64)
	r.Post("/delete", h.Delete)
	r.Post("/signed-url", h.SignedURL)
}

type base64Request struct {
	Base64   string `json:"base64"   example:"data:image/png;base64,iVBORw0KGgo..."`
	Filename string `json:"filename" example:"demo.png"`
}

type deleteRequest struct {
	Key string `json:"key" example:"uploads/1700000000000-a.png"`
}

type deleteData struct {
	Deleted string `json:"deleted" example:"uploads/1700000000000-a.png"`
}

type signedURLRequest struct {
	Key    string `json:"key"    example:"uploads/a.png"`
	Method string `json:"method" example:"PUT" enums:"PUT,GET,DELETE"`
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Stream a multipart file (field "file") to object storage. The key is "uploads/<unix-millis>-<original filename>".
//	@Tags			objects
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"File to upload"
//	@Success		200		{object}	Result
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	mr, err := r.MultipartReader()
	if err != nil {
		response.Invalid(w, r, "expected multipart/form-data body")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			response.Error(w, r, bodyError(err, "malformed multipart body"))
			return
		}
		filename := rawFilename(part)
		if part.FormName() != "file" || filename == "" {
			_ = part.Close()
			continue
		}

		contentType := part.Header.Get("Content-Type")
		staged, err := h.stager.StageStream(part)
		_ = part.Close()
		if err != nil {
			response.Error(w, r, bodyError(err, "failed to read upload"))
			return
		}

		res, err := h.svc.UploadFile(r.Context(), staged, filename, contentType)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.OK(w, res)
		return
	}

	response.Invalid(w, r, "file field is required")
}

// UploadBase64 godoc
//
//	@Summary		Upload a base64 payload
//	@Description	Decode a base64 string (optionally a data:image/...;base64, URL) and store it. filename defaults to image.png.
//	@Tags			objects
//	@Accept			json
//	@Produce		json
//	@Param			request	body		base64Request	true	"Payload"
//	@Success		200		{object}	Result
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/upload/base64 [post]
func (h *Handler) UploadBase64(w http.ResponseWriter, r *http.Request) {
	var req base64Request
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.UploadBase64(r.Context(), req.Base64, req.Filename)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, res)
}

// Delete godoc
//
//	@Summary		Delete an object
//	@Description	Remove the object at key. No existence check is made first.
//	@Tags			objects
//	@Accept			json
//	@Produce		json
//	@Param			request	body		deleteRequest	true	"Object key"
//	@Success		200		{object}	deleteData
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/delete [post]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.Delete(r.Context(), req.Key); err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, deleteData{Deleted: req.Key})
}

// SignedURL godoc
//
//	@Summary		Issue a signed URL
//	@Description	Sign key for one HTTP method (default PUT). The URL expires after 600 seconds.
//	@Tags			objects
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signedURLRequest	true	"Key and method"
//	@Success		200		{object}	storage.SignedURL
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/signed-url [post]
func (h *Handler) SignedURL(w http.ResponseWriter, r *http.Request) {
	var req signedURLRequest
	if !h.decode(w, r, &req) {
		return
	}

	signed, err := h.svc.SignURL(r.Context(), req.Key, req.Method)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, signed)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Error(w, r, bodyError(err, "invalid request body"))
		return false
	}
	return true
}

// rawFilename returns the client's filename exactly as sent. Part.FileName
// strips directories, but keys carry the original name verbatim.
func rawFilename(part *multipart.Part) string {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return ""
	}
	return params["filename"]
}

// bodyError reports oversize bodies as validation failures and keeps any
// error that is already classified.
func bodyError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.Validation("request body too large")
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Validation(message)
}
