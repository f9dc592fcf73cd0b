package auth

import "context"

type contextKey struct{}

// AuthContext carries the resolved caller identity through a request.
// Cron indicates a scheduler call authenticated by the shared secret rather
// than a user token; UserID is zero in that case.
type AuthContext struct {
	UserID     int64
	ExternalID string
	Email      string
	Cron       bool
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}

func IsCron(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return ac.Cron
}
