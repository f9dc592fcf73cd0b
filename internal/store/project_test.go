package store

import (
	"testing"
	"time"

	"github.com/homekeep-app/homekeep/internal/model"
)

func seedProject(t *testing.T, projects *ProjectStore, homeID int64, budget *float64) *model.DiyProject {
	t.Helper()
	p, err := projects.Create(&model.DiyProject{
		HomeID:   homeID,
		Title:    "Deck rebuild",
		Category: "exterior",
		Status:   model.ProjectPlanning,
		Budget:   budget,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func TestProjectCostToDate(t *testing.T) {
	db := openTestDB(t)
	_, homeID := seedUserHome(t, db)
	projects := NewProjectStore(db)
	p := seedProject(t, projects, homeID, nil)

	if _, err := projects.CreateMaterial(&model.ProjectMaterial{ProjectID: p.ID, Name: "Decking boards", Quantity: 40, UnitPrice: 12.50, Purchased: true}); err != nil {
		t.Fatalf("create material: %v", err)
	}
	if _, err := projects.CreateMaterial(&model.ProjectMaterial{ProjectID: p.ID, Name: "Screws", Quantity: 2, UnitPrice: 30, Purchased: false}); err != nil {
		t.Fatalf("create material: %v", err)
	}
	if _, err := projects.CreateTool(&model.ProjectTool{ProjectID: p.ID, Name: "Circular saw", Owned: true, PurchaseCost: 150}); err != nil {
		t.Fatalf("create tool: %v", err)
	}
	if _, err := projects.CreateTool(&model.ProjectTool{ProjectID: p.ID, Name: "Auger", Rented: true, DailyRate: 60, RentalDays: 2}); err != nil {
		t.Fatalf("create tool: %v", err)
	}

	materials, err := projects.ListMaterials(p.ID)
	if err != nil {
		t.Fatalf("list materials: %v", err)
	}
	tools, err := projects.ListTools(p.ID)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}

	// Purchased materials (40 * 12.50) plus the rental (60 * 2); owned tools
	// and unpurchased materials do not count.
	if got := p.CostToDate(materials, tools); got != 620 {
		t.Fatalf("expected cost 620, got %v", got)
	}

	// A recorded actual cost overrides the derived total.
	actual := 900.0
	p.ActualCost = &actual
	if got := p.CostToDate(materials, tools); got != 900 {
		t.Fatalf("expected recorded cost 900, got %v", got)
	}
}

func TestProjectListBudgeted(t *testing.T) {
	db := openTestDB(t)
	userID, homeID := seedUserHome(t, db)
	projects := NewProjectStore(db)

	budget := 500.0
	budgeted := seedProject(t, projects, homeID, &budget)
	seedProject(t, projects, homeID, nil)

	list, err := projects.ListBudgeted()
	if err != nil {
		t.Fatalf("list budgeted: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 budgeted project, got %d", len(list))
	}
	if list[0].Project.ID != budgeted.ID || list[0].UserID != userID {
		t.Fatalf("unexpected budgeted project: %+v", list[0])
	}
}

func TestProjectStepOrderingAndUpdate(t *testing.T) {
	db := openTestDB(t)
	_, homeID := seedUserHome(t, db)
	projects := NewProjectStore(db)
	p := seedProject(t, projects, homeID, nil)

	for i, title := range []string{"Demolition", "Framing", "Decking"} {
		if _, err := projects.CreateStep(&model.ProjectStep{ProjectID: p.ID, Title: title, Status: model.StepNotStarted, SortOrder: i}); err != nil {
			t.Fatalf("create step: %v", err)
		}
	}

	steps, err := projects.ListSteps(p.ID)
	if err != nil {
		t.Fatalf("list steps: %v", err)
	}
	if len(steps) != 3 || steps[0].Title != "Demolition" || steps[2].Title != "Decking" {
		t.Fatalf("steps out of order: %+v", steps)
	}

	steps[0].Status = model.StepCompleted
	steps[0].ActualHours = 6
	updated, err := projects.UpdateStep(&steps[0])
	if err != nil {
		t.Fatalf("update step: %v", err)
	}
	if updated.Status != model.StepCompleted || updated.ActualHours != 6 {
		t.Fatalf("step update not applied: %+v", updated)
	}
}

func TestProjectToolDelete(t *testing.T) {
	db := openTestDB(t)
	_, homeID := seedUserHome(t, db)
	projects := NewProjectStore(db)
	p := seedProject(t, projects, homeID, nil)

	tool, err := projects.CreateTool(&model.ProjectTool{ProjectID: p.ID, Name: "Post hole digger", Owned: false, PurchaseCost: 45})
	if err != nil {
		t.Fatalf("create tool: %v", err)
	}
	if err := projects.DeleteTool(tool.ID); err != nil {
		t.Fatalf("delete tool: %v", err)
	}

	tools, err := projects.ListTools(p.ID)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	if len(tools) != 0 {
		t.Fatalf("expected no tools, got %+v", tools)
	}
}

func TestProjectUpdateStatusTimestamps(t *testing.T) {
	db := openTestDB(t)
	userID, homeID := seedUserHome(t, db)
	projects := NewProjectStore(db)
	p := seedProject(t, projects, homeID, nil)

	started := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	p.Status = model.ProjectInProgress
	p.StartedAt = &started
	updated, err := projects.Update(p)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.ProjectInProgress || updated.StartedAt == nil {
		t.Fatalf("expected in_progress with started_at, got %+v", updated)
	}

	got, err := projects.GetByID(p.ID, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.ProjectInProgress {
		t.Fatalf("status not persisted: %+v", got)
	}
}
