package httpx

import "context"

type ctxKey string

const (
	// CtxKeyUserID is the authenticated user's ID, set by the authn
	// middleware and consumed by per-user rate limiting.
	CtxKeyUserID ctxKey = "user_id"
)

// UserIDFromContext returns the authenticated user ID, or "" if the request
// is anonymous.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// WithUserID stores the authenticated user ID in the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}
