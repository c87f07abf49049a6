package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sableforge/gatekeeper/internal/auth/store"
	"github.com/sableforge/gatekeeper/pkg/cryptox"
	"github.com/sableforge/gatekeeper/pkg/slogx"
)

// CredentialService handles password assignment. This is an administrative
// operation, not self-service password change; the HTTP layer gates it
// behind the ADMIN role.
type CredentialService struct {
	Store store.Store
}

// AssignPassword rehashes the target user's password and revokes every one
// of their live sessions. The revocation is the point: a password reset must
// leave no session minted under the old credential.
func (s *CredentialService) AssignPassword(ctx context.Context, email, newPassword string) error {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotRegistered
		}
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, u.ID, hash); err != nil {
			return err
		}
		return tx.Keystores().DeleteAllForUser(ctx, u.ID)
	})
	if err != nil {
		return err
	}

	l.Info("credential assigned, sessions revoked", slog.String("user_id", u.ID))
	return nil
}
