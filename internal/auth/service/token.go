package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sableforge/gatekeeper/internal/auth/domain"
	"github.com/sableforge/gatekeeper/internal/auth/store"
	"github.com/sableforge/gatekeeper/pkg/cryptox"
	"github.com/sableforge/gatekeeper/pkg/idx"
	"github.com/sableforge/gatekeeper/pkg/jwtx"
	"github.com/sableforge/gatekeeper/pkg/slogx"
)

// TokenService owns the session lifecycle: login mints a keystore row and a
// signed token pair, refresh rotates both atomically, logout tears the
// session down.
type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Store    store.Store

	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Login verifies the email/password pair and opens a fresh session. Each
// login gets its own keystore row, so a user may hold several concurrent
// sessions (one per device).
func (s *TokenService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if u.PasswordHash == "" || cryptox.VerifyPassword(password, u.PasswordHash) != nil {
		l.Info("login password verification failed", slog.String("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	ks, err := newKeystore(u.ID)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Keystores().CreateKeystore(ctx, ks); err != nil {
		return nil, err
	}

	pair, err := s.signPair(u.ID, ks, time.Now().UTC())
	if err != nil {
		// Session row without a usable pair is just noise; best effort cleanup.
		_ = s.Store.Keystores().DeleteKeystore(ctx, ks.ID)
		return nil, err
	}

	l.Info("session opened", slog.String("user_id", u.ID), slog.String("keystore_id", ks.ID))
	return pair, nil
}

// Refresh rotates a session's token pair. The access token may be expired
// (that is the point of refreshing) but its signature and identity claims
// must still verify; the refresh token must be fully valid; both must name
// the same subject; and the pair's secrets must match one live keystore row
// exactly. The old row is deleted and replaced in one transaction, so a
// replayed pair finds nothing to rotate and fails.
func (s *TokenService) Refresh(ctx context.Context, accessToken, refreshToken string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	// 1. Read the access token, tolerating a lapsed exp.
	access, err := s.Verifier.VerifyExpired(accessToken)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}

	// 2. The refresh token gets the full validation, expiry included.
	refresh, err := s.Verifier.Verify(refreshToken)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidRefresh
	}

	// 3. Both halves must belong to the same user.
	if access.Subject != refresh.Subject {
		l.Warn("refresh subject mismatch",
			slog.String("access_sub", access.Subject),
			slog.String("refresh_sub", refresh.Subject),
		)
		return nil, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, access.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotRegistered
		}
		return nil, err
	}

	next, err := newKeystore(u.ID)
	if err != nil {
		return nil, err
	}

	// 4. Rotate: the exact (user, primary, secondary) triple must resolve to
	// a live row, which is deleted and replaced atomically. Two racing
	// refreshes of the same pair both find the row, but only one delete
	// reports an affected row; the loser rolls back.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		ks, err := tx.Keystores().GetKeystore(ctx, u.ID, access.Prm, refresh.Prm)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		if err := tx.Keystores().DeleteKeystore(ctx, ks.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		return tx.Keystores().CreateKeystore(ctx, next)
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.signPair(u.ID, next, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	l.Info("session rotated", slog.String("user_id", u.ID), slog.String("keystore_id", next.ID))
	return pair, nil
}

// Logout removes the single keystore row backing the presented session.
// Sibling sessions of the same user stay live. A second logout of the same
// session is a no-op.
func (s *TokenService) Logout(ctx context.Context, keystoreID string) error {
	err := s.Store.Keystores().DeleteKeystore(ctx, keystoreID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// newKeystore mints a session row with fresh random secrets.
func newKeystore(userID string) (domain.Keystore, error) {
	primary, err := cryptox.GenerateToken(cryptox.TokenSize512)
	if err != nil {
		return domain.Keystore{}, err
	}
	secondary, err := cryptox.GenerateToken(cryptox.TokenSize512)
	if err != nil {
		return domain.Keystore{}, err
	}
	return domain.Keystore{
		ID:           idx.New().String(),
		UserID:       userID,
		PrimaryKey:   primary,
		SecondaryKey: secondary,
		Status:       true,
	}, nil
}

// signPair signs both halves of a session pair against the same keystore
// row: the access token carries the primary secret, the refresh token the
// secondary one.
func (s *TokenService) signPair(userID string, ks domain.Keystore, now time.Time) (*domain.TokenPair, error) {
	accessClaims := jwtx.NewSessionClaims(s.Issuer, s.Audience, userID, ks.PrimaryKey, s.AccessTTL, now)
	accessToken, err := s.Signer.Sign(accessClaims)
	if err != nil {
		return nil, err
	}

	refreshClaims := jwtx.NewSessionClaims(s.Issuer, s.Audience, userID, ks.SecondaryKey, s.RefreshTTL, now)
	refreshToken, err := s.Signer.Sign(refreshClaims)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
