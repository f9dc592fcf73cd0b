package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/homekeep-app/homekeep/internal/auth"
	"github.com/homekeep-app/homekeep/internal/database"
	"github.com/homekeep-app/homekeep/internal/store"
)

const testSecret = "test-secret"
const testIssuer = "homekeep-auth"

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewVerifier(testSecret, testIssuer, store.NewUserStore(db))
}

func signToken(t *testing.T, secret, issuer, subject string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss":   issuer,
		"sub":   subject,
		"email": "kim@example.com",
		"name":  "Kim",
		"exp":   time.Now().Add(expiresIn).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func doAuthRequest(mw func(http.Handler) http.Handler, authz string) (*httptest.ResponseRecorder, auth.AuthContext) {
	var captured auth.AuthContext
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/homes", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, captured
}

func TestRequireAuthValidToken(t *testing.T) {
	v := newTestVerifier(t)
	token := signToken(t, testSecret, testIssuer, "auth0|abc", time.Hour)

	rec, ac := doAuthRequest(RequireAuth(v), "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ac.UserID == 0 || ac.ExternalID != "auth0|abc" {
		t.Fatalf("auth context not populated: %+v", ac)
	}
}

func TestRequireAuthRejects(t *testing.T) {
	v := newTestVerifier(t)

	cases := []struct {
		name  string
		authz string
	}{
		{"missing header", ""},
		{"not bearer", "Basic Zm9vOmJhcg=="},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", testIssuer, "auth0|abc", time.Hour)},
		{"wrong issuer", "Bearer " + signToken(t, testSecret, "someone-else", "auth0|abc", time.Hour)},
		{"expired", "Bearer " + signToken(t, testSecret, testIssuer, "auth0|abc", -time.Minute)},
		{"no subject", "Bearer " + signToken(t, testSecret, testIssuer, "", time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := doAuthRequest(RequireAuth(v), tc.authz)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestRequireAuthProvisionsUserOnce(t *testing.T) {
	v := newTestVerifier(t)
	token := signToken(t, testSecret, testIssuer, "auth0|abc", time.Hour)

	_, first := doAuthRequest(RequireAuth(v), "Bearer "+token)
	_, second := doAuthRequest(RequireAuth(v), "Bearer "+token)
	if first.UserID == 0 || first.UserID != second.UserID {
		t.Fatalf("expected stable user id, got %d then %d", first.UserID, second.UserID)
	}
}

func TestRequireCronOrAuthAcceptsCronSecret(t *testing.T) {
	v := newTestVerifier(t)
	mw := RequireCronOrAuth(v, "cron-secret")

	rec, ac := doAuthRequest(mw, "Bearer cron-secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !ac.Cron || ac.UserID != 0 {
		t.Fatalf("expected cron context, got %+v", ac)
	}

	// A user token still works on the same endpoint.
	token := signToken(t, testSecret, testIssuer, "auth0|abc", time.Hour)
	rec, ac = doAuthRequest(mw, "Bearer "+token)
	if rec.Code != http.StatusOK || ac.UserID == 0 {
		t.Fatalf("expected authenticated user, got %d / %+v", rec.Code, ac)
	}
}

func TestRequireCronOrAuthEmptySecretNeverMatches(t *testing.T) {
	v := newTestVerifier(t)
	mw := RequireCronOrAuth(v, "")

	rec, _ := doAuthRequest(mw, "Bearer ")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for empty bearer with unset secret, got %d", rec.Code)
	}
}
