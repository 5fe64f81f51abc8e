package handlers

import (
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"biolink/internal/pkg/errors"
	"biolink/internal/platform/blob"
)

var imageExtensions = map[string]string{
	"image/png":    ".png",
	"image/jpeg":   ".jpg",
	"image/gif":    ".gif",
	"image/webp":   ".webp",
	"image/x-icon": ".ico",
}

type UploadHandler struct {
	uploader blob.Uploader
	maxSize  int64
}

func NewUploadHandler(uploader blob.Uploader, maxSize int64) *UploadHandler {
	return &UploadHandler{uploader: uploader, maxSize: maxSize}
}

// Upload stores a logo or icon image and returns its public URL. The page config is not touched.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+1<<20)
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid or oversized upload", nil)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Missing file field", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxSize+1))
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Failed to read upload", nil)
		return
	}
	if int64(len(data)) > h.maxSize {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "File too large", nil)
		return
	}

	// sniffed from the bytes, never the client header; svg is not accepted
	contentType, _, _ := strings.Cut(http.DetectContentType(data), ";")
	ext, ok := imageExtensions[contentType]
	if !ok {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Only image uploads are allowed", nil)
		return
	}

	objectPath := path.Join(currentTenant(r).ID, uuid.NewString()+ext)
	url, err := h.uploader.Upload(r.Context(), objectPath, data)
	if err != nil {
		log.Error().Err(err).Str("path", objectPath).Msg("Upload failed")
		errors.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
