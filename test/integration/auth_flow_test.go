package integration_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sableforge/gatekeeper/internal/auth/domain"
	httpapi "github.com/sableforge/gatekeeper/internal/auth/http"
	"github.com/sableforge/gatekeeper/internal/auth/service"
	"github.com/sableforge/gatekeeper/internal/auth/store/drivers/sqlite"
	"github.com/sableforge/gatekeeper/pkg/authsdk"
	"github.com/sableforge/gatekeeper/pkg/cryptox"
	"github.com/sableforge/gatekeeper/pkg/idx"
	"github.com/sableforge/gatekeeper/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	issuer   = "gatekeeper"
	audience = "gatekeeper-api"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "gatekeeper-integration")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper.key"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// startService boots the full HTTP stack on an in-memory store, bootstraps
// the first admin, and returns an SDK client talking to it.
func startService(t *testing.T) (*authsdk.Client, *sqlite.Store) {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privKey),
	})
	signer, err := jwtx.NewSignerRS256("integration-key", privPEM)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))
	verifier := jwtx.NewVerifierRS256(keys, issuer, []string{audience})

	auth := &service.AuthService{Verifier: verifier, Store: st}
	tokens := &service.TokenService{
		Signer:     signer,
		Verifier:   verifier,
		Store:      st,
		Issuer:     issuer,
		Audience:   []string{audience},
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	router := httpapi.NewRouter(keys, "integration", st, logger)
	router.AuthService = auth
	router.TokenService = tokens
	router.CredentialService = &service.CredentialService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	boot := &service.BootstrapService{Store: st}
	apiKey, err := boot.Bootstrap(ctx, "root@example.com", "Root", "root-password-1")
	require.NoError(t, err)
	require.NotEmpty(t, apiKey)

	return authsdk.NewClient(srv.URL, apiKey), st
}

func TestFullSessionLifecycle(t *testing.T) {
	client, _ := startService(t)
	ctx := context.Background()

	// Health first.
	live, err := client.Livez(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	ready, err := client.Readyz(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)

	// Login as the bootstrapped admin.
	session, err := client.Login(ctx, "root@example.com", "root-password-1")
	require.NoError(t, err)

	info, err := session.UserInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, "root@example.com", info.Email)
	require.Contains(t, info.Roles, domain.RoleCodeAdmin)

	// Rotate, remembering the consumed pair.
	oldAccess, oldRefresh := session.AccessToken, session.RefreshToken
	require.NoError(t, session.Refresh(ctx))
	require.NotEqual(t, oldAccess, session.AccessToken)
	require.NotEqual(t, oldRefresh, session.RefreshToken)

	// Replaying the consumed pair must fail terminally.
	replay := new(authsdk.Session)
	*replay = *session
	replay.AccessToken, replay.RefreshToken = oldAccess, oldRefresh
	err = replay.Refresh(ctx)
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, authsdk.ErrorCodeInvalidToken, apiErr.Code)

	// The surviving pair still rotates fine.
	require.NoError(t, session.Refresh(ctx))
	_, err = session.UserInfo(ctx)
	require.NoError(t, err)

	// Logout kills exactly this session.
	require.NoError(t, session.Logout(ctx))
	_, err = session.UserInfo(ctx)
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, authsdk.ErrorCodeInvalidToken, apiErr.Code)
}

func TestCredentialAssignFlow(t *testing.T) {
	client, st := startService(t)
	ctx := context.Background()

	admin, err := client.Login(ctx, "root@example.com", "root-password-1")
	require.NoError(t, err)

	// Seed a plain member through the admin path: create user directly,
	// then have the admin assign them a password.
	member := seedMember(t, st, "member@example.com")
	require.NoError(t, admin.AssignCredential(ctx, member.Email, "member-password-1"))

	memberSession, err := client.Login(ctx, "member@example.com", "member-password-1")
	require.NoError(t, err)

	// The member cannot assign credentials.
	err = memberSession.AssignCredential(ctx, "root@example.com", "hijack!")
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, authsdk.ErrorCodeAccessDenied, apiErr.Code)

	// A reset by the admin revokes the member's session.
	require.NoError(t, admin.AssignCredential(ctx, member.Email, "member-password-2"))
	_, err = memberSession.UserInfo(ctx)
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, authsdk.ErrorCodeInvalidToken, apiErr.Code)

	_, err = client.Login(ctx, "member@example.com", "member-password-2")
	require.NoError(t, err)
}

func seedMember(t *testing.T, st *sqlite.Store, email string) domain.User {
	t.Helper()
	ctx := context.Background()

	roles, err := st.Roles().GetRolesByCodes(ctx, []string{domain.RoleCodeGeneral})
	require.NoError(t, err)
	require.Len(t, roles, 1)

	hash, err := cryptox.HashPassword("placeholder-password")
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         "Member",
		PasswordHash: hash,
		Roles:        roles,
		Status:       true,
	}
	require.NoError(t, st.Users().CreateUser(ctx, u))
	return u
}
