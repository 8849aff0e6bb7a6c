package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

const (
	maxUploadFiles    = 5
	maxUploadFileSize = 10 << 20 // 10MB per file
)

// allowedMimeTypes is the upload allow-list: PDF, CSV, images and audio.
var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"text/csv":        true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"audio/mpeg":      true,
	"audio/wav":       true,
	"audio/ogg":       true,
	"audio/webm":      true,
}

// UploadFilesHandler accepts a multipart form with up to 5 files of at most
// 10MB each. Validation runs over the whole batch before anything is
// persisted, so a single oversized file rejects the request with zero files
// stored.
func (h *APIHandler) UploadFilesHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, (maxUploadFiles+1)*maxUploadFileSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		h.writeError(w, http.StatusBadRequest, "No files provided")
		return
	}
	if len(headers) > maxUploadFiles {
		h.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("A maximum of %d files can be uploaded at once", maxUploadFiles))
		return
	}

	for _, header := range headers {
		if header.Size > maxUploadFileSize {
			h.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("File %q exceeds the 10MB limit", header.Filename))
			return
		}
		if !allowedMimeTypes[mimeType(header.Header.Get("Content-Type"))] {
			h.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("File type %q is not allowed", header.Header.Get("Content-Type")))
			return
		}
	}

	var uploaded []store.FileAttachment
	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			h.logger.Error("failed to open upload", zap.String("file", header.Filename), zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "Failed to read upload")
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			h.logger.Error("failed to read upload", zap.String("file", header.Filename), zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "Failed to read upload")
			return
		}

		file, err := h.data.CreateFile(header.Filename, mimeType(header.Header.Get("Content-Type")), data)
		if err != nil {
			h.logger.Error("failed to store upload", zap.String("file", header.Filename), zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "Failed to store upload")
			return
		}
		uploaded = append(uploaded, *file)
	}

	h.writeData(w, http.StatusCreated, uploaded)
}

// mimeType strips any parameters (e.g. "; charset=utf-8").
func mimeType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(base)
}

// ServeFileHandler serves the raw bytes of a stored upload.
func (h *APIHandler) ServeFileHandler(w http.ResponseWriter, r *http.Request) {
	storedName := chi.URLParam(r, "filename")

	meta, err := h.data.GetFileByStoredName(storedName)
	if err != nil {
		h.logger.Error("failed to look up file", zap.String("file", storedName), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to look up file")
		return
	}
	if meta == nil {
		h.writeError(w, http.StatusNotFound, "File not found")
		return
	}

	data, err := h.data.GetFileData(storedName)
	if err != nil {
		h.logger.Error("failed to read file payload", zap.String("file", storedName), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	w.Header().Set("Content-Type", meta.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", meta.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
