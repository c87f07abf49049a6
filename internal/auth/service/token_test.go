package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sableforge/gatekeeper/internal/auth/domain"
	"github.com/sableforge/gatekeeper/internal/auth/service"
	"github.com/sableforge/gatekeeper/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestLoginIssuesUsablePair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := seedUser(t, env, "alice@example.com", "hunter2!", domain.RoleCodeGeneral)

	pair, err := env.tokens.Login(ctx, "alice@example.com", "hunter2!")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	gotUser, ks, err := env.auth.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, gotUser.ID)
	require.Equal(t, u.ID, ks.UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedUser(t, env, "alice@example.com", "hunter2!", domain.RoleCodeGeneral)

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.tokens.Login(ctx, "alice@example.com", "wrong")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := env.tokens.Login(ctx, "nobody@example.com", "hunter2!")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestLoginAllowsConcurrentSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedUser(t, env, "alice@example.com", "hunter2!", domain.RoleCodeGeneral)

	first, err := env.tokens.Login(ctx, "alice@example.com", "hunter2!")
	require.NoError(t, err)
	second, err := env.tokens.Login(ctx, "alice@example.com", "hunter2!")
	require.NoError(t, err)

	_, _, err = env.auth.Authenticate(ctx, first.AccessToken)
	require.NoError(t, err)
	_, _, err = env.auth.Authenticate(ctx, second.AccessToken)
	require.NoError(t, err)
}

func TestRefreshRotatesAndRejectsReplay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedUser(t, env, "alice@example.com", "hunter2!", domain.RoleCodeGeneral)

	first, err := env.tokens.Login(ctx, "alice@example.com", "hunter2!")
	require.NoError(t, err)

	// Rotate once: new pair works, the consumed access token no longer
	// resolves to a session.
	second, err := env.tokens.Refresh(ctx, first.AccessToken, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.AccessToken, second.AccessToken)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, _, err = env.auth.Authenticate(ctx, second.AccessToken)
	require.NoError(t, err)
	_, _, err = env.auth.Authenticate(ctx, first.AccessToken)
	require.ErrorIs(t, err, service.ErrInvalidAccessToken)

	// Replaying the consumed pair fails and does not disturb the live one.
	_, err = env.tokens.Refresh(ctx, first.AccessToken, first.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)

	third, err := env.tokens.Refresh(ctx, second.AccessToken, second.RefreshToken)
	require.NoError(t, err)
	_, _, err = env.auth.Authenticate(ctx, third.AccessToken)
	require.NoError(t, err)
}

func TestRefreshAcceptsExpiredAccessToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := seedUser(t, env, "alice@example.com", "hunter2!", domain.RoleCodeGeneral)

	pair, err := env.tokens.Login(ctx, "alice@example.com", "hunter2!")
	require.NoError(t, err)

	_, ks, err := env.auth.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)

	// Same session, but an access token minted already past its exp.
	expiredClaims := jwtx.NewSessionClaims(
		testIssuer, []string{testAudience},
		u.ID, ks.PrimaryKey,
		-time.Minute, time.Now().UTC().Add(-2*time.Minute),
	)
	expiredAccess, err := env.tokens.Signer.Sign(expiredClaims)
	require.NoError(t, err)

	_, err = env.tokens.Refresh(ctx, expiredAccess, pair.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsSubjectMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedUser(t, env, "alice@example.com", "hunter2!", domain.RoleCodeGeneral)
	seedUser(t, env, "bob@example.com", "hunter2!", domain.RoleCodeGeneral)

	alice, err := env.tokens.Login(ctx, "alice@example.com", "hunter2!")
	require.NoError(t, err)
	bob, err := env.tokens.Login(ctx, "bob@example.com", "hunter2!")
	require.NoError(t, err)

	_, err = env.tokens.Refresh(ctx, alice.AccessToken, bob.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedUser(t, env, "alice@example.com", "hunter2!", domain.RoleCodeGeneral)

	pair, err := env.tokens.Login(ctx, "alice@example.com", "hunter2!")
	require.NoError(t, err)

	_, err = env.tokens.Refresh(ctx, "not-a-token", pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidAccessToken)

	_, err = env.tokens.Refresh(ctx, pair.AccessToken, "not-a-token")
	require.ErrorIs(t, err, service.ErrInvalidRefresh)
}

func TestConcurrentRefreshHasOneWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedUser(t, env, "alice@example.com", "hunter2!", domain.RoleCodeGeneral)

	pair, err := env.tokens.Login(ctx, "alice@example.com", "hunter2!")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.tokens.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, service.ErrInvalidRefresh)
			losses++
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, 1, losses)
}

func TestLogoutRemovesOnlyOwnSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedUser(t, env, "alice@example.com", "hunter2!", domain.RoleCodeGeneral)

	phone, err := env.tokens.Login(ctx, "alice@example.com", "hunter2!")
	require.NoError(t, err)
	laptop, err := env.tokens.Login(ctx, "alice@example.com", "hunter2!")
	require.NoError(t, err)

	_, phoneKS, err := env.auth.Authenticate(ctx, phone.AccessToken)
	require.NoError(t, err)

	require.NoError(t, env.tokens.Logout(ctx, phoneKS.ID))

	_, _, err = env.auth.Authenticate(ctx, phone.AccessToken)
	require.ErrorIs(t, err, service.ErrInvalidAccessToken)
	_, _, err = env.auth.Authenticate(ctx, laptop.AccessToken)
	require.NoError(t, err)

	// Logging out twice is harmless.
	require.NoError(t, env.tokens.Logout(ctx, phoneKS.ID))
}
