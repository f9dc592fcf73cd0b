package handler

import (
	"log/slog"
	"net/http"

	"github.com/homekeep-app/homekeep/internal/enrich"
)

type LookupHandler struct {
	climate  *enrich.ClimateService
	property *enrich.PropertyService
	logger   *slog.Logger
}

func NewLookupHandler(climate *enrich.ClimateService, property *enrich.PropertyService, logger *slog.Logger) *LookupHandler {
	return &LookupHandler{climate: climate, property: property, logger: logger}
}

type climateLookupRequest struct {
	ZipCode string `json:"zip_code" validate:"required"`
}

type propertyLookupRequest struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zip_code" validate:"required"`
	PageURL string `json:"page_url" validate:"omitempty,url"`
}

type complianceLookupRequest struct {
	State string `json:"state" validate:"required"`
}

// Climate handles POST /api/climate/lookup.
func (h *LookupHandler) Climate(w http.ResponseWriter, r *http.Request) {
	var req climateLookupRequest
	if !decodeValid(w, r, &req) {
		return
	}

	zip, err := enrich.NormalizeZIP(req.ZipCode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.climate.Lookup(r.Context(), zip))
}

// Property handles POST /api/property/lookup.
func (h *LookupHandler) Property(w http.ResponseWriter, r *http.Request) {
	var req propertyLookupRequest
	if !decodeValid(w, r, &req) {
		return
	}

	state, err := enrich.NormalizeState(req.State)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	zip, err := enrich.NormalizeZIP(req.ZipCode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data := h.property.Lookup(r.Context(), enrich.PropertyQuery{
		Address: req.Address,
		City:    req.City,
		State:   state,
		ZIP:     zip,
		PageURL: req.PageURL,
	})
	writeJSON(w, http.StatusOK, data)
}

// Compliance handles POST /api/compliance/lookup.
func (h *LookupHandler) Compliance(w http.ResponseWriter, r *http.Request) {
	var req complianceLookupRequest
	if !decodeValid(w, r, &req) {
		return
	}

	state, err := enrich.NormalizeState(req.State)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, enrich.ComplianceFor(state))
}
