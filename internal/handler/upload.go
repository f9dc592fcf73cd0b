package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/homekeep-app/homekeep/internal/upload"
)

type UploadHandler struct {
	service *upload.Service
	logger  *slog.Logger
}

func NewUploadHandler(service *upload.Service, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{service: service, logger: logger}
}

// Upload handles POST /api/upload: multipart form with "file" and "type".
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(upload.MaxSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := h.service.Validate(contentType, header.Size); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, upload.MaxSize+1))
	if err != nil {
		h.logger.Error("read upload", "file", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	result, err := h.service.Process(r.Context(), header.Filename, contentType, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}
