package service

import (
	"context"
	"errors"

	"github.com/sableforge/gatekeeper/internal/auth/domain"
	"github.com/sableforge/gatekeeper/internal/auth/store"
	"github.com/sableforge/gatekeeper/pkg/jwtx"
)

// AuthService resolves bearer tokens into authenticated sessions and decides
// role-based access. It is read-only over the store; session mutation lives
// in TokenService.
type AuthService struct {
	Verifier jwtx.Verifier
	Store    store.Store
}

// Authenticate validates an access token and binds it to a live session.
//
// The pipeline is strict front to back: signature and claims first, then the
// subject must resolve to an active user, then the token's embedded secret
// must match one of that user's keystore rows. A signed, unexpired token
// whose session was revoked (logout, rotation, credential reset) fails at
// the last step.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (domain.User, domain.Keystore, error) {
	claims, err := s.Verifier.Verify(accessToken)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return domain.User{}, domain.Keystore{}, ErrTokenExpired
		}
		return domain.User{}, domain.Keystore{}, ErrInvalidAccessToken
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.Keystore{}, ErrUserNotRegistered
		}
		return domain.User{}, domain.Keystore{}, err
	}

	ks, err := s.Store.Keystores().GetKeystoreForPrimary(ctx, u.ID, claims.Prm)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.Keystore{}, ErrInvalidAccessToken
		}
		return domain.User{}, domain.Keystore{}, err
	}

	return u, ks, nil
}
