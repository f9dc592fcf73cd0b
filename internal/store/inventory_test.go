package store

import (
	"testing"
	"time"

	"github.com/homekeep-app/homekeep/internal/model"
)

func TestInventoryBatchCreateAndListByKind(t *testing.T) {
	db := openTestDB(t)
	userID, homeID := seedUserHome(t, db)
	inventory := NewInventoryStore(db)

	created, err := inventory.CreateBatch(homeID, model.KindSystem, []model.InventoryItem{
		{Name: "Furnace", Category: "heating"},
		{Name: "Water heater", Category: "plumbing"},
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 items, got %d", len(created))
	}
	if _, err := inventory.CreateBatch(homeID, model.KindAppliance, []model.InventoryItem{{Name: "Dishwasher"}}); err != nil {
		t.Fatalf("create appliance batch: %v", err)
	}

	systems, err := inventory.ListByHome(homeID, model.KindSystem)
	if err != nil {
		t.Fatalf("list systems: %v", err)
	}
	if len(systems) != 2 {
		t.Fatalf("expected 2 systems, got %d", len(systems))
	}
	for _, it := range systems {
		if it.Kind != model.KindSystem {
			t.Fatalf("wrong kind on listed item: %+v", it)
		}
	}

	// Ownership travels through the home join.
	got, err := inventory.GetByID(created[0].ID, userID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got == nil || got.Name != "Furnace" {
		t.Fatalf("expected furnace, got %+v", got)
	}
	otherID, _ := seedOtherUserHome(t, db)
	got, err = inventory.GetByID(created[0].ID, otherID)
	if err != nil {
		t.Fatalf("cross-user get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for cross-user item lookup, got %+v", got)
	}
}

func TestInventoryExpiringWarrantiesWindow(t *testing.T) {
	db := openTestDB(t)
	userID, homeID := seedUserHome(t, db)
	inventory := NewInventoryStore(db)

	date := func(month time.Month, day int) *time.Time {
		d := time.Date(2025, month, day, 0, 0, 0, 0, time.UTC)
		return &d
	}
	items := []model.InventoryItem{
		{Name: "Fridge", WarrantyExpires: date(time.April, 10)},
		{Name: "Range", WarrantyExpires: date(time.March, 5)},
		{Name: "Washer", WarrantyExpires: date(time.September, 1)},
		{Name: "Dryer"},
	}
	if _, err := inventory.CreateBatch(homeID, model.KindAppliance, items); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	from := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 90)
	expiring, err := inventory.ListExpiringWarranties(userID, from, to)
	if err != nil {
		t.Fatalf("list expiring: %v", err)
	}
	if len(expiring) != 2 {
		t.Fatalf("expected 2 expiring items, got %d", len(expiring))
	}
	// Soonest first.
	if expiring[0].Name != "Range" || expiring[1].Name != "Fridge" {
		t.Fatalf("unexpected order: %+v", expiring)
	}
}

func TestInventorySetLastServiceDate(t *testing.T) {
	db := openTestDB(t)
	userID, homeID := seedUserHome(t, db)
	inventory := NewInventoryStore(db)

	created, err := inventory.CreateBatch(homeID, model.KindSystem, []model.InventoryItem{{Name: "AC unit"}})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}

	serviced := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	if err := inventory.SetLastServiceDate(created[0].ID, serviced); err != nil {
		t.Fatalf("set last service date: %v", err)
	}

	got, err := inventory.GetByID(created[0].ID, userID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.LastServiceDate == nil || !got.LastServiceDate.Equal(serviced) {
		t.Fatalf("last service date not set: %+v", got.LastServiceDate)
	}
}
