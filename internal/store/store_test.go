package store

import (
	"database/sql"
	"testing"

	"github.com/homekeep-app/homekeep/internal/database"
	"github.com/homekeep-app/homekeep/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedUserHome provisions a user with one home, the baseline for most
// ownership-scoped tests.
func seedUserHome(t *testing.T, db *sql.DB) (userID, homeID int64) {
	t.Helper()
	user, err := NewUserStore(db).GetOrCreate("ext-owner", "owner@example.com", "Owner")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	home, err := NewHomeStore(db).Create(&model.Home{UserID: user.ID, Nickname: "Main house", City: "Portland", State: "OR"})
	if err != nil {
		t.Fatalf("create home: %v", err)
	}
	return user.ID, home.ID
}

// seedOtherUserHome provisions a second user with their own home, for
// cross-account isolation checks.
func seedOtherUserHome(t *testing.T, db *sql.DB) (userID, homeID int64) {
	t.Helper()
	user, err := NewUserStore(db).GetOrCreate("ext-other", "other@example.com", "Other")
	if err != nil {
		t.Fatalf("create other user: %v", err)
	}
	home, err := NewHomeStore(db).Create(&model.Home{UserID: user.ID, Nickname: "Other house"})
	if err != nil {
		t.Fatalf("create other home: %v", err)
	}
	return user.ID, home.ID
}
