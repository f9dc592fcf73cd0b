package handler

import (
	"log/slog"
	"net/http"

	"github.com/homekeep-app/homekeep/internal/backup"
)

type BackupHandler struct {
	service *backup.Service
	logger  *slog.Logger
}

func NewBackupHandler(service *backup.Service, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{service: service, logger: logger}
}

// Run handles POST /api/backup/run.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.service.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "backups not configured")
		return
	}

	record, err := h.service.Run(r.Context())
	if err != nil {
		h.logger.Error("run backup", "error", err)
		writeError(w, http.StatusInternalServerError, "backup failed")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// Status handles GET /api/backup/status.
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status()
	if err != nil {
		h.logger.Error("backup status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load backup status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}
