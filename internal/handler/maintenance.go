package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/homekeep-app/homekeep/internal/auth"
	"github.com/homekeep-app/homekeep/internal/model"
	"github.com/homekeep-app/homekeep/internal/store"
)

type MaintenanceHandler struct {
	records   *store.MaintenanceStore
	homes     *store.HomeStore
	inventory *store.InventoryStore
	logger    *slog.Logger
}

func NewMaintenanceHandler(records *store.MaintenanceStore, homes *store.HomeStore, inventory *store.InventoryStore, logger *slog.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{records: records, homes: homes, inventory: inventory, logger: logger}
}

type maintenanceRecordRequest struct {
	HomeID      int64     `json:"home_id" validate:"required"`
	ItemID      *int64    `json:"item_id"`
	ServiceDate time.Time `json:"service_date" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Cost        float64   `json:"cost" validate:"min=0"`
	PerformedBy string    `json:"performed_by"`
}

// List returns history, optionally scoped by ?home_id= and ?item_id=.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	homeID, err := queryID(r, "home_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid home_id")
		return
	}
	itemID, err := queryID(r, "item_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item_id")
		return
	}

	records, err := h.records.List(userID, homeID, itemID)
	if err != nil {
		h.logger.Error("list maintenance records", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	if records == nil {
		records = []model.MaintenanceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Create adds a service record; when tied to an item, the item's
// last_service_date advances with it.
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req maintenanceRecordRequest
	if !decodeValid(w, r, &req) {
		return
	}

	home, err := h.homes.GetByID(req.HomeID, userID)
	if err != nil {
		h.logger.Error("get home", "home_id", req.HomeID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get home")
		return
	}
	if home == nil {
		writeError(w, http.StatusNotFound, "home not found")
		return
	}

	if req.ItemID != nil {
		item, err := h.inventory.GetByID(*req.ItemID, userID)
		if err != nil {
			h.logger.Error("get inventory item", "item_id", *req.ItemID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get item")
			return
		}
		if item == nil {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
	}

	record, err := h.records.Create(&model.MaintenanceRecord{
		HomeID:      req.HomeID,
		ItemID:      req.ItemID,
		ServiceDate: req.ServiceDate,
		Description: req.Description,
		Cost:        req.Cost,
		PerformedBy: req.PerformedBy,
	})
	if err != nil {
		h.logger.Error("create maintenance record", "home_id", req.HomeID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create record")
		return
	}

	writeJSON(w, http.StatusCreated, record)
}
