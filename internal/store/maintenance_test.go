package store

import (
	"testing"
	"time"

	"github.com/homekeep-app/homekeep/internal/model"
)

func TestMaintenanceCreateAdvancesItemServiceDate(t *testing.T) {
	db := openTestDB(t)
	userID, homeID := seedUserHome(t, db)
	inventory := NewInventoryStore(db)
	records := NewMaintenanceStore(db)

	created, err := inventory.CreateBatch(homeID, model.KindSystem, []model.InventoryItem{{Name: "Furnace"}})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	itemID := created[0].ID

	serviced := time.Date(2025, time.October, 2, 0, 0, 0, 0, time.UTC)
	record, err := records.Create(&model.MaintenanceRecord{
		HomeID:      homeID,
		ItemID:      &itemID,
		ServiceDate: serviced,
		Description: "Annual tune-up",
		Cost:        189,
		PerformedBy: "ACME Heating",
	})
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	if record.ItemID == nil || *record.ItemID != itemID {
		t.Fatalf("record not tied to item: %+v", record)
	}

	item, err := inventory.GetByID(itemID, userID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.LastServiceDate == nil || !item.LastServiceDate.Equal(serviced) {
		t.Fatalf("item last_service_date not advanced: %+v", item.LastServiceDate)
	}
}

func TestMaintenanceListFilters(t *testing.T) {
	db := openTestDB(t)
	userID, homeID := seedUserHome(t, db)
	_, otherHomeID := seedOtherUserHome(t, db)
	records := NewMaintenanceStore(db)

	add := func(homeID int64, day int, desc string) {
		t.Helper()
		_, err := records.Create(&model.MaintenanceRecord{
			HomeID:      homeID,
			ServiceDate: time.Date(2025, time.May, day, 0, 0, 0, 0, time.UTC),
			Description: desc,
		})
		if err != nil {
			t.Fatalf("create record: %v", err)
		}
	}
	add(homeID, 1, "Gutter cleaning")
	add(homeID, 15, "Roof inspection")
	add(otherHomeID, 20, "Someone else's job")

	list, err := records.List(userID, nil, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	// Most recent service first.
	if list[0].Description != "Roof inspection" {
		t.Fatalf("unexpected order: %+v", list)
	}

	list, err = records.List(userID, &otherHomeID, nil)
	if err != nil {
		t.Fatalf("list foreign home: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("foreign home filter should return nothing, got %+v", list)
	}
}
