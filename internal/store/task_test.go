package store

import (
	"testing"
	"time"

	"github.com/homekeep-app/homekeep/internal/model"
)

func TestTaskCompleteAdvancesAndClearsSnooze(t *testing.T) {
	db := openTestDB(t)
	userID, homeID := seedUserHome(t, db)
	tasks := NewTaskStore(db)

	task, err := tasks.Create(&model.MaintenanceTask{
		HomeID:    homeID,
		Title:     "Replace HVAC filter",
		Category:  "hvac",
		Frequency: "QUARTERLY",
		NextDue:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	snoozeUntil := time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC)
	if err := tasks.Snooze(task.ID, snoozeUntil); err != nil {
		t.Fatalf("snooze: %v", err)
	}
	snoozed, err := tasks.GetByID(task.ID, userID)
	if err != nil {
		t.Fatalf("get snoozed: %v", err)
	}
	if snoozed.SnoozedUntil == nil {
		t.Fatal("expected snoozed_until to be set")
	}

	completedAt := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	nextDue := completedAt.AddDate(0, 3, 0)
	completion, err := tasks.Complete(task, completedAt, nextDue, 24.99, "new MERV 13")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completion.TaskID != task.ID || completion.ActualCost != 24.99 {
		t.Fatalf("unexpected completion: %+v", completion)
	}
	if completion.Category != "hvac" {
		t.Fatalf("completion should snapshot the task category, got %q", completion.Category)
	}

	after, err := tasks.GetByID(task.ID, userID)
	if err != nil {
		t.Fatalf("get after complete: %v", err)
	}
	if !after.NextDue.Equal(nextDue) {
		t.Fatalf("next_due not advanced: got %v want %v", after.NextDue, nextDue)
	}
	if after.SnoozedUntil != nil {
		t.Fatal("completing should clear snoozed_until")
	}

	completions, err := tasks.ListCompletions(userID, task.ID)
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(completions) != 1 {
		t.Fatalf("expected 1 completion, got %d", len(completions))
	}
}

func TestTaskSumCompletedCostWindowAndCategory(t *testing.T) {
	db := openTestDB(t)
	_, homeID := seedUserHome(t, db)
	tasks := NewTaskStore(db)

	add := func(category string, completedAt time.Time, cost float64) {
		t.Helper()
		task, err := tasks.Create(&model.MaintenanceTask{
			HomeID:    homeID,
			Title:     "Task",
			Category:  category,
			Frequency: "MONTHLY",
			NextDue:   completedAt,
			IsActive:  true,
		})
		if err != nil {
			t.Fatalf("create task: %v", err)
		}
		if _, err := tasks.Complete(task, completedAt, completedAt.AddDate(0, 1, 0), cost, ""); err != nil {
			t.Fatalf("complete task: %v", err)
		}
	}

	june := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	july := june.AddDate(0, 1, 0)
	add("hvac", june.AddDate(0, 0, 5), 100)
	add("plumbing", june.AddDate(0, 0, 20), 50)
	add("hvac", july.AddDate(0, 0, 1), 999) // outside [june, july)

	total, err := tasks.SumCompletedCost([]int64{homeID}, nil, june, july)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if total != 150 {
		t.Fatalf("expected 150, got %v", total)
	}

	hvac := "hvac"
	total, err = tasks.SumCompletedCost([]int64{homeID}, &hvac, june, july)
	if err != nil {
		t.Fatalf("sum by category: %v", err)
	}
	if total != 100 {
		t.Fatalf("expected 100, got %v", total)
	}

	// No homes means no spend, not an error.
	total, err = tasks.SumCompletedCost(nil, nil, june, july)
	if err != nil {
		t.Fatalf("sum with no homes: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected 0, got %v", total)
	}
}

func TestTaskListScopedToUser(t *testing.T) {
	db := openTestDB(t)
	userID, homeID := seedUserHome(t, db)
	otherID, otherHomeID := seedOtherUserHome(t, db)
	tasks := NewTaskStore(db)

	if _, err := tasks.Create(&model.MaintenanceTask{HomeID: homeID, Title: "Mine", Frequency: "ANNUAL", NextDue: time.Now(), IsActive: true}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.Create(&model.MaintenanceTask{HomeID: otherHomeID, Title: "Theirs", Frequency: "ANNUAL", NextDue: time.Now(), IsActive: true}); err != nil {
		t.Fatalf("create: %v", err)
	}

	mine, err := tasks.List(userID, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "Mine" {
		t.Fatalf("expected only own task, got %+v", mine)
	}

	theirs, err := tasks.List(otherID, &homeID)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(theirs) != 0 {
		t.Fatalf("filtering by another user's home should return nothing, got %+v", theirs)
	}
}
