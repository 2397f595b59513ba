package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/freebook/backend/internal/middleware"
	"github.com/freebook/backend/internal/service"
	"github.com/freebook/backend/internal/transport"
)

const maxImageBytes = 10 << 20

// ImageHandler uploads and deletes images. With no store configured every
// request is answered with 503.
type ImageHandler struct{ S *service.ImageService }

func NewImageHandler(s *service.ImageService) *ImageHandler { return &ImageHandler{s} }

func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.S == nil {
		transport.WriteError(w, http.StatusServiceUnavailable, "unavailable", "image storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid_argument", "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, hdr, err := r.FormFile("file")
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid_argument", "file is required")
		return
	}
	defer file.Close()

	if hdr.Size > maxImageBytes {
		transport.WriteError(w, http.StatusBadRequest, "invalid_argument", "file exceeds 10 MiB")
		return
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		transport.WriteError(w, http.StatusBadRequest, "invalid_argument", "unreadable file")
		return
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		transport.WriteError(w, http.StatusBadRequest, "invalid_argument", "file is not an image")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		transport.Error(r.Context(), w, err)
		return
	}

	img, err := h.S.Upload(r.Context(), middleware.Subject(r.Context()), file, hdr.Size, hdr.Filename, contentType)
	if err != nil {
		transport.Error(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, img)
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.S == nil {
		transport.WriteError(w, http.StatusServiceUnavailable, "unavailable", "image storage is not configured")
		return
	}

	if err := h.S.Delete(r.Context(), middleware.Subject(r.Context()), chi.URLParam(r, "id")); err != nil {
		transport.Error(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
