package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/homekeep-app/homekeep/internal/auth"
	"github.com/homekeep-app/homekeep/internal/budget"
	"github.com/homekeep-app/homekeep/internal/model"
	"github.com/homekeep-app/homekeep/internal/store"
	"github.com/homekeep-app/homekeep/internal/websocket"
)

type BudgetHandler struct {
	budgets   *store.BudgetStore
	homes     *store.HomeStore
	evaluator *budget.Evaluator
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewBudgetHandler(budgets *store.BudgetStore, homes *store.HomeStore, evaluator *budget.Evaluator, hub *websocket.Hub, logger *slog.Logger) *BudgetHandler {
	return &BudgetHandler{budgets: budgets, homes: homes, evaluator: evaluator, hub: hub, logger: logger}
}

type budgetPlanRequest struct {
	Name      string     `json:"name" validate:"required"`
	Amount    float64    `json:"amount" validate:"required,gt=0"`
	Period    string     `json:"period" validate:"required,oneof=monthly quarterly annual"`
	Category  *string    `json:"category"`
	HomeID    *int64     `json:"home_id"`
	StartDate time.Time  `json:"start_date" validate:"required"`
	EndDate   *time.Time `json:"end_date"`
	IsActive  *bool      `json:"is_active"`
}

type alertStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING SENT DISMISSED"`
}

func (h *BudgetHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req budgetPlanRequest
	if !decodeValid(w, r, &req) {
		return
	}

	if req.HomeID != nil {
		home, err := h.homes.GetByID(*req.HomeID, userID)
		if err != nil {
			h.logger.Error("get home", "home_id", *req.HomeID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get home")
			return
		}
		if home == nil {
			writeError(w, http.StatusNotFound, "home not found")
			return
		}
	}

	plan, err := h.budgets.CreatePlan(&model.BudgetPlan{
		UserID:    userID,
		Name:      req.Name,
		Amount:    req.Amount,
		Period:    req.Period,
		Category:  req.Category,
		HomeID:    req.HomeID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		h.logger.Error("create plan", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create plan")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage(websocket.EntityBudget, "created", plan.ID, nil))
	writeJSON(w, http.StatusCreated, plan)
}

func (h *BudgetHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	plans, err := h.budgets.ListPlans(userID)
	if err != nil {
		h.logger.Error("list plans", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list plans")
		return
	}
	if plans == nil {
		plans = []model.BudgetPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *BudgetHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	plan, err := h.budgets.GetPlan(id, userID)
	if err != nil {
		h.logger.Error("get plan", "plan_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get plan")
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *BudgetHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.budgets.GetPlan(id, userID)
	if err != nil {
		h.logger.Error("get plan", "plan_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get plan")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}

	var req budgetPlanRequest
	if !decodeValid(w, r, &req) {
		return
	}

	existing.Name = req.Name
	existing.Amount = req.Amount
	existing.Period = req.Period
	existing.Category = req.Category
	existing.HomeID = req.HomeID
	existing.StartDate = req.StartDate
	existing.EndDate = req.EndDate
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	plan, err := h.budgets.UpdatePlan(existing)
	if err != nil {
		h.logger.Error("update plan", "plan_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update plan")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage(websocket.EntityBudget, "updated", plan.ID, nil))
	writeJSON(w, http.StatusOK, plan)
}

func (h *BudgetHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	alerts, err := h.budgets.ListAlerts(userID)
	if err != nil {
		h.logger.Error("list alerts", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []model.BudgetAlert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *BudgetHandler) SetAlertStatus(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req alertStatusRequest
	if !decodeValid(w, r, &req) {
		return
	}

	if err := h.budgets.SetAlertStatus(id, userID, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		h.logger.Error("set alert status", "alert_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update alert")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}

// DismissAlert is the shortcut clients use from the alert list; equivalent to
// setting the status to DISMISSED.
func (h *BudgetHandler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.budgets.SetAlertStatus(id, userID, model.AlertStatusDismissed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		h.logger.Error("dismiss alert", "alert_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to dismiss alert")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": model.AlertStatusDismissed})
}

// CheckAlerts runs the evaluator. The route accepts either a signed-in user
// or the cron shared secret; results are the same either way.
func (h *BudgetHandler) CheckAlerts(w http.ResponseWriter, r *http.Request) {
	sum, err := h.evaluator.Run(r.Context())
	if err != nil {
		// Partial failures still produce a usable summary; log and report it.
		h.logger.Error("budget alert check", "error", err)
	}
	writeJSON(w, http.StatusOK, sum)
}
