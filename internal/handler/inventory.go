package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/homekeep-app/homekeep/internal/auth"
	"github.com/homekeep-app/homekeep/internal/model"
	"github.com/homekeep-app/homekeep/internal/store"
	"github.com/homekeep-app/homekeep/internal/websocket"
)

type InventoryHandler struct {
	inventory *store.InventoryStore
	homes     *store.HomeStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewInventoryHandler(inventory *store.InventoryStore, homes *store.HomeStore, hub *websocket.Hub, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, homes: homes, hub: hub, logger: logger}
}

type inventoryItemRequest struct {
	Name            string     `json:"name" validate:"required"`
	Category        string     `json:"category"`
	Brand           string     `json:"brand"`
	ModelNumber     string     `json:"model_number"`
	InstallDate     *time.Time `json:"install_date"`
	WarrantyExpires *time.Time `json:"warranty_expires"`
	Condition       string     `json:"condition"`
	Material        string     `json:"material"`
	Location        string     `json:"location"`
	Notes           string     `json:"notes"`
}

type inventoryBatchRequest struct {
	Items []inventoryItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
}

// CreateBatch returns a handler bound to one inventory kind; the route table
// maps each sub-resource (systems, appliances, ...) to its kind.
func (h *InventoryHandler) CreateBatch(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		homeID, err := parseIDParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}

		home, err := h.homes.GetByID(homeID, userID)
		if err != nil {
			h.logger.Error("get home", "home_id", homeID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get home")
			return
		}
		if home == nil {
			writeError(w, http.StatusNotFound, "home not found")
			return
		}

		var req inventoryBatchRequest
		if !decodeValid(w, r, &req) {
			return
		}

		items := make([]model.InventoryItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, model.InventoryItem{
				Name:            it.Name,
				Category:        it.Category,
				Brand:           it.Brand,
				ModelNumber:     it.ModelNumber,
				InstallDate:     it.InstallDate,
				WarrantyExpires: it.WarrantyExpires,
				Condition:       it.Condition,
				Material:        it.Material,
				Location:        it.Location,
				Notes:           it.Notes,
			})
		}

		created, err := h.inventory.CreateBatch(homeID, kind, items)
		if err != nil {
			h.logger.Error("create inventory batch", "home_id", homeID, "kind", kind, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create items")
			return
		}

		h.hub.Notify(userID, websocket.NewMessage(websocket.EntityInventory, "created", homeID, map[string]any{"kind": kind, "count": len(created)}))
		writeJSON(w, http.StatusCreated, created)
	}
}

// ListByHome returns a handler listing one kind for an owned home.
func (h *InventoryHandler) ListByHome(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		homeID, err := parseIDParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}

		home, err := h.homes.GetByID(homeID, userID)
		if err != nil {
			h.logger.Error("get home", "home_id", homeID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get home")
			return
		}
		if home == nil {
			writeError(w, http.StatusNotFound, "home not found")
			return
		}

		items, err := h.inventory.ListByHome(homeID, kind)
		if err != nil {
			h.logger.Error("list inventory", "home_id", homeID, "kind", kind, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list items")
			return
		}
		if items == nil {
			items = []model.InventoryItem{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.inventory.GetByID(id, userID)
	if err != nil {
		h.logger.Error("get inventory item", "item_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	var req inventoryItemRequest
	if !decodeValid(w, r, &req) {
		return
	}

	existing.Name = req.Name
	existing.Category = req.Category
	existing.Brand = req.Brand
	existing.ModelNumber = req.ModelNumber
	existing.InstallDate = req.InstallDate
	existing.WarrantyExpires = req.WarrantyExpires
	existing.Condition = req.Condition
	existing.Material = req.Material
	existing.Location = req.Location
	existing.Notes = req.Notes

	updated, err := h.inventory.Update(existing)
	if err != nil {
		h.logger.Error("update inventory item", "item_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage(websocket.EntityInventory, "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}
