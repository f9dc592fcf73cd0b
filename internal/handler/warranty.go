package handler

import (
	"log/slog"
	"net/http"

	"github.com/homekeep-app/homekeep/internal/warranty"
)

type WarrantyHandler struct {
	scanner *warranty.Scanner
	logger  *slog.Logger
}

func NewWarrantyHandler(scanner *warranty.Scanner, logger *slog.Logger) *WarrantyHandler {
	return &WarrantyHandler{scanner: scanner, logger: logger}
}

// CheckExpiring handles POST /api/warranties/check-expiring, invoked by a
// user or the cron caller.
func (h *WarrantyHandler) CheckExpiring(w http.ResponseWriter, r *http.Request) {
	sum, err := h.scanner.Run(r.Context())
	if err != nil {
		// Per-user failures are partial; the summary still reflects the rest.
		h.logger.Error("warranty scan", "error", err)
	}
	writeJSON(w, http.StatusOK, sum)
}
