package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/homekeep-app/homekeep/internal/model"
)

func TestBudgetListActivePlansWindow(t *testing.T) {
	db := openTestDB(t)
	userID, _ := seedUserHome(t, db)
	budgets := NewBudgetStore(db)

	jan1 := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	mar31 := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)

	if _, err := budgets.CreatePlan(&model.BudgetPlan{UserID: userID, Name: "Open ended", Amount: 500, Period: model.PeriodMonthly, StartDate: jan1}); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if _, err := budgets.CreatePlan(&model.BudgetPlan{UserID: userID, Name: "Q1 only", Amount: 1500, Period: model.PeriodQuarterly, StartDate: jan1, EndDate: &mar31}); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if _, err := budgets.CreatePlan(&model.BudgetPlan{UserID: userID, Name: "Future", Amount: 100, Period: model.PeriodMonthly, StartDate: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("create plan: %v", err)
	}

	active, err := budgets.ListActivePlans(time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Open ended" {
		t.Fatalf("expected only the open-ended plan in June, got %+v", active)
	}

	active, err = budgets.ListActivePlans(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active plans in February, got %d", len(active))
	}
}

func TestBudgetOpenAlertDedup(t *testing.T) {
	db := openTestDB(t)
	userID, _ := seedUserHome(t, db)
	budgets := NewBudgetStore(db)

	plan, err := budgets.CreatePlan(&model.BudgetPlan{
		UserID:    userID,
		Name:      "Upkeep",
		Amount:    1000,
		Period:    model.PeriodMonthly,
		StartDate: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	open, err := budgets.HasOpenAlert(&plan.ID, nil, model.AlertApproachingLimit)
	if err != nil {
		t.Fatalf("has open alert: %v", err)
	}
	if open {
		t.Fatal("no alert yet")
	}

	alert, err := budgets.CreateAlert(&model.BudgetAlert{UserID: userID, PlanID: &plan.ID, AlertType: model.AlertApproachingLimit, Message: "80% there"})
	if err != nil {
		t.Fatalf("create alert: %v", err)
	}

	open, err = budgets.HasOpenAlert(&plan.ID, nil, model.AlertApproachingLimit)
	if err != nil {
		t.Fatalf("has open alert: %v", err)
	}
	if !open {
		t.Fatal("PENDING alert should count as open")
	}

	if err := budgets.MarkSent(alert.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	open, err = budgets.HasOpenAlert(&plan.ID, nil, model.AlertApproachingLimit)
	if err != nil {
		t.Fatalf("has open alert: %v", err)
	}
	if !open {
		t.Fatal("SENT alert should still count as open")
	}

	if err := budgets.SetAlertStatus(alert.ID, userID, model.AlertStatusDismissed); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	open, err = budgets.HasOpenAlert(&plan.ID, nil, model.AlertApproachingLimit)
	if err != nil {
		t.Fatalf("has open alert: %v", err)
	}
	if open {
		t.Fatal("dismissed alert should not count as open")
	}
}

func TestBudgetSetAlertStatusGuardsOwner(t *testing.T) {
	db := openTestDB(t)
	userID, _ := seedUserHome(t, db)
	otherID, _ := seedOtherUserHome(t, db)
	budgets := NewBudgetStore(db)

	plan, err := budgets.CreatePlan(&model.BudgetPlan{
		UserID:    userID,
		Name:      "Upkeep",
		Amount:    1000,
		Period:    model.PeriodMonthly,
		StartDate: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	alert, err := budgets.CreateAlert(&model.BudgetAlert{UserID: userID, PlanID: &plan.ID, AlertType: model.AlertExceededLimit, Message: "over"})
	if err != nil {
		t.Fatalf("create alert: %v", err)
	}

	err = budgets.SetAlertStatus(alert.ID, otherID, model.AlertStatusDismissed)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows for foreign alert, got %v", err)
	}
}
