package http

import (
	"context"

	"github.com/sableforge/gatekeeper/internal/auth/domain"
)

type ctxKey string

const (
	ctxKeyUser     ctxKey = "auth_user"
	ctxKeyKeystore ctxKey = "auth_keystore"
)

// withSession attaches the authenticated user and their keystore row to the
// request context. Set by AuthnMiddleware only.
func withSession(ctx context.Context, u domain.User, ks domain.Keystore) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUser, u)
	return context.WithValue(ctx, ctxKeyKeystore, ks)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(domain.User)
	return u, ok
}

// KeystoreFromContext returns the session's keystore row, if any.
func KeystoreFromContext(ctx context.Context) (domain.Keystore, bool) {
	ks, ok := ctx.Value(ctxKeyKeystore).(domain.Keystore)
	return ks, ok
}
