package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/homekeep-app/homekeep/internal/auth"
	"github.com/homekeep-app/homekeep/internal/database"
	"github.com/homekeep-app/homekeep/internal/model"
	"github.com/homekeep-app/homekeep/internal/store"
	"github.com/homekeep-app/homekeep/internal/websocket"
)

type homeFixture struct {
	mux    *http.ServeMux
	userID int64
}

func setupHomeHandler(t *testing.T) *homeFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	user, err := store.NewUserStore(db).GetOrCreate("ext-1", "owner@example.com", "Owner")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	hub := websocket.NewHub(slog.Default())
	h := NewHomeHandler(store.NewHomeStore(db), hub, slog.Default())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/homes", h.List)
	mux.HandleFunc("POST /api/homes", h.Create)
	mux.HandleFunc("GET /api/homes/{id}", h.Get)
	mux.HandleFunc("PATCH /api/homes/{id}", h.Update)

	return &homeFixture{mux: mux, userID: user.ID}
}

func (f *homeFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{UserID: f.userID}))

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestHomesEmptyListIsOnboardingSignal(t *testing.T) {
	f := setupHomeHandler(t)

	rec := f.do(t, http.MethodGet, "/api/homes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	// The empty list must encode as [], not null, or the onboarding check
	// client-side breaks.
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected [], got %s", got)
	}
}

func TestHomeCreateAndFetch(t *testing.T) {
	f := setupHomeHandler(t)

	rec := f.do(t, http.MethodPost, "/api/homes", `{
		"nickname": "Main house",
		"address": "123 Oak St",
		"city": "Portland",
		"state": "OR",
		"zip_code": "97201",
		"year_built": 1972,
		"square_feet": 1850
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created model.Home
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created home: %v", err)
	}
	if created.ID == 0 || created.State != "OR" || *created.YearBuilt != 1972 {
		t.Fatalf("unexpected created home: %+v", created)
	}

	rec = f.do(t, http.MethodGet, "/api/homes/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHomeCreateValidation(t *testing.T) {
	f := setupHomeHandler(t)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing address", `{"city": "Portland", "state": "OR", "zip_code": "97201"}`, "address"},
		{"long state", `{"address": "123 Oak St", "city": "Portland", "state": "Oregon", "zip_code": "97201"}`, "state"},
		{"implausible year", `{"address": "123 Oak St", "city": "Portland", "state": "OR", "zip_code": "97201", "year_built": 1600}`, "year_built"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/homes", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var resp struct {
				Fields map[string]string `json:"fields"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if _, ok := resp.Fields[tc.field]; !ok {
				t.Fatalf("expected a message for %q, got %v", tc.field, resp.Fields)
			}
		})
	}
}

func TestHomeGetNotFoundForForeignID(t *testing.T) {
	f := setupHomeHandler(t)

	rec := f.do(t, http.MethodGet, "/api/homes/999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
