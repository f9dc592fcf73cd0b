package handler

import (
	"log/slog"
	"net/http"

	"github.com/homekeep-app/homekeep/internal/auth"
	"github.com/homekeep-app/homekeep/internal/model"
	"github.com/homekeep-app/homekeep/internal/store"
	"github.com/homekeep-app/homekeep/internal/websocket"
)

type HomeHandler struct {
	homes  *store.HomeStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewHomeHandler(homes *store.HomeStore, hub *websocket.Hub, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{homes: homes, hub: hub, logger: logger}
}

type homeRequest struct {
	Nickname   string   `json:"nickname"`
	Address    string   `json:"address" validate:"required"`
	City       string   `json:"city" validate:"required"`
	State      string   `json:"state" validate:"required,len=2"`
	ZipCode    string   `json:"zip_code" validate:"required"`
	YearBuilt  *int     `json:"year_built" validate:"omitempty,gt=1800"`
	HomeType   string   `json:"home_type"`
	SquareFeet *int     `json:"square_feet" validate:"omitempty,gt=0"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

// List returns the caller's homes. An empty list is the onboarding signal,
// never an error.
func (h *HomeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	homes, err := h.homes.ListByUser(userID)
	if err != nil {
		h.logger.Error("list homes", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list homes")
		return
	}
	if homes == nil {
		homes = []model.Home{}
	}
	writeJSON(w, http.StatusOK, homes)
}

func (h *HomeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req homeRequest
	if !decodeValid(w, r, &req) {
		return
	}

	home, err := h.homes.Create(&model.Home{
		UserID:     userID,
		Nickname:   req.Nickname,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		ZipCode:    req.ZipCode,
		YearBuilt:  req.YearBuilt,
		HomeType:   req.HomeType,
		SquareFeet: req.SquareFeet,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	})
	if err != nil {
		h.logger.Error("create home", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create home")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage(websocket.EntityHome, "created", home.ID, nil))
	writeJSON(w, http.StatusCreated, home)
}

func (h *HomeHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	home, err := h.homes.GetByID(id, userID)
	if err != nil {
		h.logger.Error("get home", "home_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get home")
		return
	}
	if home == nil {
		writeError(w, http.StatusNotFound, "home not found")
		return
	}
	writeJSON(w, http.StatusOK, home)
}

func (h *HomeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.homes.GetByID(id, userID)
	if err != nil {
		h.logger.Error("get home", "home_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get home")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "home not found")
		return
	}

	var req homeRequest
	if !decodeValid(w, r, &req) {
		return
	}

	existing.Nickname = req.Nickname
	existing.Address = req.Address
	existing.City = req.City
	existing.State = req.State
	existing.ZipCode = req.ZipCode
	existing.YearBuilt = req.YearBuilt
	existing.HomeType = req.HomeType
	existing.SquareFeet = req.SquareFeet
	existing.Latitude = req.Latitude
	existing.Longitude = req.Longitude

	home, err := h.homes.Update(existing)
	if err != nil {
		h.logger.Error("update home", "home_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update home")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage(websocket.EntityHome, "updated", home.ID, nil))
	writeJSON(w, http.StatusOK, home)
}
