package store

import "testing"

func TestUserGetOrCreateProvisionsOnce(t *testing.T) {
	db := openTestDB(t)
	users := NewUserStore(db)

	first, err := users.GetOrCreate("auth0|abc", "kim@example.com", "Kim")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}

	again, err := users.GetOrCreate("auth0|abc", "kim@example.com", "Kim")
	if err != nil {
		t.Fatalf("second get or create: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected same user row, got %d and %d", first.ID, again.ID)
	}

	ids, err := users.ListIDs()
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 user, got %d", len(ids))
	}
}

func TestUserGetOrCreateRefreshesProfile(t *testing.T) {
	db := openTestDB(t)
	users := NewUserStore(db)

	first, err := users.GetOrCreate("auth0|abc", "old@example.com", "Old Name")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}

	updated, err := users.GetOrCreate("auth0|abc", "new@example.com", "New Name")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if updated.ID != first.ID {
		t.Fatalf("refresh should not create a new row")
	}
	if updated.Email != "new@example.com" || updated.Name != "New Name" {
		t.Fatalf("profile not refreshed: %+v", updated)
	}
}
