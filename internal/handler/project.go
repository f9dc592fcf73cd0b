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

type ProjectHandler struct {
	projects *store.ProjectStore
	homes    *store.HomeStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewProjectHandler(projects *store.ProjectStore, homes *store.HomeStore, hub *websocket.Hub, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, homes: homes, hub: hub, logger: logger}
}

type projectRequest struct {
	HomeID      int64      `json:"home_id" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Status      string     `json:"status" validate:"omitempty,oneof=planning in_progress completed on_hold"`
	Budget      *float64   `json:"budget" validate:"omitempty,gt=0"`
	ActualCost  *float64   `json:"actual_cost" validate:"omitempty,min=0"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

type materialRequest struct {
	Name      string  `json:"name" validate:"required"`
	Quantity  float64 `json:"quantity" validate:"gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"min=0"`
	Purchased bool    `json:"purchased"`
}

type toolRequest struct {
	Name         string  `json:"name" validate:"required"`
	Owned        bool    `json:"owned"`
	Rented       bool    `json:"rented"`
	PurchaseCost float64 `json:"purchase_cost" validate:"min=0"`
	DailyRate    float64 `json:"daily_rate" validate:"min=0"`
	RentalDays   int     `json:"rental_days" validate:"min=0"`
}

type stepRequest struct {
	Title          string  `json:"title" validate:"required"`
	Status         string  `json:"status" validate:"omitempty,oneof=not_started in_progress completed"`
	SortOrder      int     `json:"sort_order"`
	EstimatedHours float64 `json:"estimated_hours" validate:"min=0"`
	ActualHours    float64 `json:"actual_hours" validate:"min=0"`
}

// projectView is a project with its children and derived cost.
type projectView struct {
	model.DiyProject
	Materials  []model.ProjectMaterial `json:"materials"`
	Tools      []model.ProjectTool     `json:"tools"`
	Steps      []model.ProjectStep     `json:"steps"`
	CostToDate float64                 `json:"cost_to_date"`
}

func (h *ProjectHandler) view(p *model.DiyProject) (*projectView, error) {
	materials, err := h.projects.ListMaterials(p.ID)
	if err != nil {
		return nil, err
	}
	tools, err := h.projects.ListTools(p.ID)
	if err != nil {
		return nil, err
	}
	steps, err := h.projects.ListSteps(p.ID)
	if err != nil {
		return nil, err
	}
	if materials == nil {
		materials = []model.ProjectMaterial{}
	}
	if tools == nil {
		tools = []model.ProjectTool{}
	}
	if steps == nil {
		steps = []model.ProjectStep{}
	}
	return &projectView{
		DiyProject: *p,
		Materials:  materials,
		Tools:      tools,
		Steps:      steps,
		CostToDate: p.CostToDate(materials, tools),
	}, nil
}

// owned loads the project and enforces ownership, writing the error response
// itself. Returns nil when the caller should stop.
func (h *ProjectHandler) owned(w http.ResponseWriter, r *http.Request) *model.DiyProject {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	project, err := h.projects.GetByID(id, userID)
	if err != nil {
		h.logger.Error("get project", "project_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return nil
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return nil
	}
	return project
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req projectRequest
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

	status := req.Status
	if status == "" {
		status = model.ProjectPlanning
	}

	project, err := h.projects.Create(&model.DiyProject{
		HomeID:      req.HomeID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      status,
		Budget:      req.Budget,
		ActualCost:  req.ActualCost,
		StartedAt:   req.StartedAt,
		CompletedAt: req.CompletedAt,
	})
	if err != nil {
		h.logger.Error("create project", "home_id", req.HomeID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage(websocket.EntityProject, "created", project.ID, nil))
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	homeID, err := queryID(r, "home_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid home_id")
		return
	}

	projects, err := h.projects.List(userID, homeID)
	if err != nil {
		h.logger.Error("list projects", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	if projects == nil {
		projects = []model.DiyProject{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project := h.owned(w, r)
	if project == nil {
		return
	}

	view, err := h.view(project)
	if err != nil {
		h.logger.Error("load project details", "project_id", project.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	project := h.owned(w, r)
	if project == nil {
		return
	}

	var req projectRequest
	if !decodeValid(w, r, &req) {
		return
	}

	project.Title = req.Title
	project.Description = req.Description
	project.Category = req.Category
	if req.Status != "" {
		project.Status = req.Status
	}
	project.Budget = req.Budget
	project.ActualCost = req.ActualCost
	project.StartedAt = req.StartedAt
	project.CompletedAt = req.CompletedAt

	updated, err := h.projects.Update(project)
	if err != nil {
		h.logger.Error("update project", "project_id", project.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update project")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage(websocket.EntityProject, "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// --- Materials ---

func (h *ProjectHandler) AddMaterial(w http.ResponseWriter, r *http.Request) {
	project := h.owned(w, r)
	if project == nil {
		return
	}

	var req materialRequest
	if !decodeValid(w, r, &req) {
		return
	}

	material, err := h.projects.CreateMaterial(&model.ProjectMaterial{
		ProjectID: project.ID,
		Name:      req.Name,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Purchased: req.Purchased,
	})
	if err != nil {
		h.logger.Error("create material", "project_id", project.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add material")
		return
	}
	writeJSON(w, http.StatusCreated, material)
}

func (h *ProjectHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	project := h.owned(w, r)
	if project == nil {
		return
	}

	materialID, err := queryPathID(r, "material_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid material_id")
		return
	}

	materials, err := h.projects.ListMaterials(project.ID)
	if err != nil {
		h.logger.Error("list materials", "project_id", project.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load materials")
		return
	}
	var existing *model.ProjectMaterial
	for i := range materials {
		if materials[i].ID == materialID {
			existing = &materials[i]
			break
		}
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}

	var req materialRequest
	if !decodeValid(w, r, &req) {
		return
	}

	existing.Name = req.Name
	existing.Quantity = req.Quantity
	existing.UnitPrice = req.UnitPrice
	existing.Purchased = req.Purchased

	updated, err := h.projects.UpdateMaterial(existing)
	if err != nil {
		h.logger.Error("update material", "material_id", materialID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update material")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// --- Tools ---

func (h *ProjectHandler) AddTool(w http.ResponseWriter, r *http.Request) {
	project := h.owned(w, r)
	if project == nil {
		return
	}

	var req toolRequest
	if !decodeValid(w, r, &req) {
		return
	}

	tool, err := h.projects.CreateTool(&model.ProjectTool{
		ProjectID:    project.ID,
		Name:         req.Name,
		Owned:        req.Owned,
		Rented:       req.Rented,
		PurchaseCost: req.PurchaseCost,
		DailyRate:    req.DailyRate,
		RentalDays:   req.RentalDays,
	})
	if err != nil {
		h.logger.Error("create tool", "project_id", project.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add tool")
		return
	}
	writeJSON(w, http.StatusCreated, tool)
}

func (h *ProjectHandler) DeleteTool(w http.ResponseWriter, r *http.Request) {
	project := h.owned(w, r)
	if project == nil {
		return
	}

	toolID, err := queryPathID(r, "tool_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tool_id")
		return
	}

	tools, err := h.projects.ListTools(project.ID)
	if err != nil {
		h.logger.Error("list tools", "project_id", project.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load tools")
		return
	}
	found := false
	for _, t := range tools {
		if t.ID == toolID {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "tool not found")
		return
	}

	if err := h.projects.DeleteTool(toolID); err != nil {
		h.logger.Error("delete tool", "tool_id", toolID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete tool")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Steps ---

func (h *ProjectHandler) AddStep(w http.ResponseWriter, r *http.Request) {
	project := h.owned(w, r)
	if project == nil {
		return
	}

	var req stepRequest
	if !decodeValid(w, r, &req) {
		return
	}

	status := req.Status
	if status == "" {
		status = model.StepNotStarted
	}

	step, err := h.projects.CreateStep(&model.ProjectStep{
		ProjectID:      project.ID,
		Title:          req.Title,
		Status:         status,
		SortOrder:      req.SortOrder,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
	})
	if err != nil {
		h.logger.Error("create step", "project_id", project.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add step")
		return
	}
	writeJSON(w, http.StatusCreated, step)
}

func (h *ProjectHandler) UpdateStep(w http.ResponseWriter, r *http.Request) {
	project := h.owned(w, r)
	if project == nil {
		return
	}

	stepID, err := queryPathID(r, "step_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid step_id")
		return
	}

	steps, err := h.projects.ListSteps(project.ID)
	if err != nil {
		h.logger.Error("list steps", "project_id", project.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load steps")
		return
	}
	var existing *model.ProjectStep
	for i := range steps {
		if steps[i].ID == stepID {
			existing = &steps[i]
			break
		}
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "step not found")
		return
	}

	var req stepRequest
	if !decodeValid(w, r, &req) {
		return
	}

	existing.Title = req.Title
	if req.Status != "" {
		existing.Status = req.Status
	}
	existing.SortOrder = req.SortOrder
	existing.EstimatedHours = req.EstimatedHours
	existing.ActualHours = req.ActualHours

	updated, err := h.projects.UpdateStep(existing)
	if err != nil {
		h.logger.Error("update step", "step_id", stepID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update step")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
