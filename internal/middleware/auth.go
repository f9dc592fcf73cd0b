package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/homekeep-app/homekeep/internal/auth"
	"github.com/homekeep-app/homekeep/internal/store"
)

// Verifier validates bearer tokens issued by the external identity provider
// and lazily provisions the local user mirror. Centralizing the
// get-or-create here keeps it out of every handler.
type Verifier struct {
	secret []byte
	issuer string
	users  *store.UserStore
}

func NewVerifier(secret, issuer string, users *store.UserStore) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, users: users}
}

type identityClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

func (v *Verifier) resolve(token string) (auth.AuthContext, error) {
	var claims identityClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return auth.AuthContext{}, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return auth.AuthContext{}, fmt.Errorf("invalid token")
	}

	user, err := v.users.GetOrCreate(claims.Subject, claims.Email, claims.Name)
	if err != nil {
		return auth.AuthContext{}, fmt.Errorf("provision user: %w", err)
	}

	return auth.AuthContext{
		UserID:     user.ID,
		ExternalID: user.ExternalID,
		Email:      user.Email,
	}, nil
}

// RequireAuth validates the bearer token and populates AuthContext.
func RequireAuth(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			ac, err := v.resolve(token)
			if err != nil {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
		})
	}
}

// RequireCronOrAuth admits either the cron secret or a regular user token.
// Scan endpoints are callable both by an external scheduler and by a signed-in
// user poking the button.
func RequireCronOrAuth(v *Verifier, cronSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			if cronSecret != "" && subtle.ConstantTimeCompare([]byte(token), []byte(cronSecret)) == 1 {
				ac := auth.AuthContext{Cron: true}
				next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
				return
			}

			ac, err := v.resolve(token)
			if err != nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
