package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/homekeep-app/homekeep/internal/auth"
	"github.com/homekeep-app/homekeep/internal/model"
	"github.com/homekeep-app/homekeep/internal/recurrence"
	"github.com/homekeep-app/homekeep/internal/store"
	"github.com/homekeep-app/homekeep/internal/websocket"
)

type TaskHandler struct {
	tasks  *store.TaskStore
	homes  *store.HomeStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTaskHandler(tasks *store.TaskStore, homes *store.HomeStore, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, homes: homes, hub: hub, logger: logger}
}

type taskRequest struct {
	HomeID         int64      `json:"home_id" validate:"required"`
	Title          string     `json:"title" validate:"required"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Frequency      string     `json:"frequency" validate:"required,oneof=WEEKLY MONTHLY QUARTERLY BIANNUAL ANNUAL SEASONAL AS_NEEDED"`
	CustomInterval *int       `json:"custom_interval" validate:"omitempty,gt=0"`
	CustomUnit     *string    `json:"custom_unit" validate:"omitempty,oneof=days weeks months"`
	NextDue        *time.Time `json:"next_due"`
	EstimatedCost  float64    `json:"estimated_cost" validate:"min=0"`
}

type completeTaskRequest struct {
	CompletedAt *time.Time `json:"completed_at"`
	ActualCost  float64    `json:"actual_cost" validate:"min=0"`
	Notes       string     `json:"notes"`
}

type snoozeTaskRequest struct {
	Until time.Time `json:"until" validate:"required"`
}

func (h *TaskHandler) customRecurrence(interval *int, unit *string) *recurrence.Custom {
	if interval == nil || unit == nil {
		return nil
	}
	return &recurrence.Custom{Interval: *interval, Unit: *unit}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req taskRequest
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

	nextDue := time.Now().UTC()
	if req.NextDue != nil {
		nextDue = req.NextDue.UTC()
	} else {
		nextDue = recurrence.NextDue(req.Frequency, h.customRecurrence(req.CustomInterval, req.CustomUnit), nextDue)
	}

	task, err := h.tasks.Create(&model.MaintenanceTask{
		HomeID:         req.HomeID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Frequency:      req.Frequency,
		CustomInterval: req.CustomInterval,
		CustomUnit:     req.CustomUnit,
		NextDue:        nextDue,
		EstimatedCost:  req.EstimatedCost,
		IsActive:       true,
	})
	if err != nil {
		h.logger.Error("create task", "home_id", req.HomeID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage(websocket.EntityTask, "created", task.ID, nil))
	writeJSON(w, http.StatusCreated, task)
}

// List returns the caller's tasks, optionally scoped by ?home_id=.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	homeID, err := queryID(r, "home_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid home_id")
		return
	}

	tasks, err := h.tasks.List(userID, homeID)
	if err != nil {
		h.logger.Error("list tasks", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.MaintenanceTask{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := h.tasks.GetByID(id, userID)
	if err != nil {
		h.logger.Error("get task", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.tasks.GetByID(id, userID)
	if err != nil {
		h.logger.Error("get task", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req taskRequest
	if !decodeValid(w, r, &req) {
		return
	}

	existing.Title = req.Title
	existing.Description = req.Description
	existing.Category = req.Category
	existing.Frequency = req.Frequency
	existing.CustomInterval = req.CustomInterval
	existing.CustomUnit = req.CustomUnit
	existing.EstimatedCost = req.EstimatedCost
	if req.NextDue != nil {
		existing.NextDue = req.NextDue.UTC()
	}

	task, err := h.tasks.Update(existing)
	if err != nil {
		h.logger.Error("update task", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage(websocket.EntityTask, "updated", task.ID, nil))
	writeJSON(w, http.StatusOK, task)
}

// Complete records the completion and advances next_due by the task's
// recurrence, measured from the completion date.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := h.tasks.GetByID(id, userID)
	if err != nil {
		h.logger.Error("get task", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req completeTaskRequest
	if !decodeValid(w, r, &req) {
		return
	}

	completedAt := time.Now().UTC()
	if req.CompletedAt != nil {
		completedAt = req.CompletedAt.UTC()
	}
	nextDue := recurrence.NextDue(task.Frequency, h.customRecurrence(task.CustomInterval, task.CustomUnit), completedAt)

	completion, err := h.tasks.Complete(task, completedAt, nextDue, req.ActualCost, req.Notes)
	if err != nil {
		h.logger.Error("complete task", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete task")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage(websocket.EntityTask, "completed", task.ID, nil))
	writeJSON(w, http.StatusCreated, completion)
}

func (h *TaskHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := h.tasks.GetByID(id, userID)
	if err != nil {
		h.logger.Error("get task", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req snoozeTaskRequest
	if !decodeValid(w, r, &req) {
		return
	}

	if err := h.tasks.Snooze(id, req.Until.UTC()); err != nil {
		h.logger.Error("snooze task", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to snooze task")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage(websocket.EntityTask, "snoozed", task.ID, nil))
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "snoozed_until": req.Until.UTC()})
}

func (h *TaskHandler) ListCompletions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	completions, err := h.tasks.ListCompletions(userID, id)
	if err != nil {
		h.logger.Error("list completions", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}
	if completions == nil {
		completions = []model.CompletedTask{}
	}
	writeJSON(w, http.StatusOK, completions)
}
