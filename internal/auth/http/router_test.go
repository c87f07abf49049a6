package http_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"log/slog"
	"net/http"
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
	testIssuer   = "gatekeeper"
	testAudience = "gatekeeper-api"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "gatekeeper-http-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper.key"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type testServer struct {
	srv    *httptest.Server
	store  *sqlite.Store
	tokens *service.TokenService
	apiKey string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

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
	signer, err := jwtx.NewSignerRS256("test-key", privPEM)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))
	verifier := jwtx.NewVerifierRS256(keys, testIssuer, []string{testAudience})

	auth := &service.AuthService{Verifier: verifier, Store: st}
	tokens := &service.TokenService{
		Signer:     signer,
		Verifier:   verifier,
		Store:      st,
		Issuer:     testIssuer,
		Audience:   []string{testAudience},
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	router := httpapi.NewRouter(keys, "test", st, logger)
	router.AuthService = auth
	router.TokenService = tokens
	router.CredentialService = &service.CredentialService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	apiKey := cryptox.MustGenerateToken(cryptox.TokenSize256)
	require.NoError(t, st.APIKeys().CreateAPIKey(context.Background(), domain.APIKey{
		Key:         apiKey,
		Permissions: []string{domain.APIPermissionGeneral},
		Status:      true,
	}))

	return &testServer{srv: srv, store: st, tokens: tokens, apiKey: apiKey}
}

func (ts *testServer) seedUser(t *testing.T, email, password string, roleCodes ...string) domain.User {
	t.Helper()
	ctx := context.Background()

	roles, err := ts.store.Roles().GetRolesByCodes(ctx, roleCodes)
	require.NoError(t, err)
	require.Len(t, roles, len(roleCodes))

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		Roles:        roles,
		Status:       true,
	}
	require.NoError(t, ts.store.Users().CreateUser(ctx, u))
	return u
}

// request fires one JSON request at the test server and decodes the error
// payload for non-2xx responses.
func (ts *testServer) request(t *testing.T, method, path, apiKey, bearer string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(buf)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestAPIKeyGate(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "alice@example.com", "hunter2!", domain.RoleCodeGeneral)

	login := authsdk.LoginRequest{Email: "alice@example.com", Password: "hunter2!"}

	t.Run("missing key", func(t *testing.T) {
		resp, body := ts.request(t, http.MethodPost, "/v1/access/login", "", "", login)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, authsdk.ErrorCodeAccessDenied, body["error"])
	})

	t.Run("unknown key", func(t *testing.T) {
		resp, _ := ts.request(t, http.MethodPost, "/v1/access/login", "bogus", "", login)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid key", func(t *testing.T) {
		resp, body := ts.request(t, http.MethodPost, "/v1/access/login", ts.apiKey, "", login)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, body["accessToken"])
		require.NotEmpty(t, body["refreshToken"])
	})

	t.Run("health endpoints skip the gate", func(t *testing.T) {
		resp, _ := ts.request(t, http.MethodGet, "/livez", "", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp, _ = ts.request(t, http.MethodGet, "/readyz", "", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestLoginEndpointRejections(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "alice@example.com", "hunter2!", domain.RoleCodeGeneral)

	t.Run("wrong password", func(t *testing.T) {
		resp, body := ts.request(t, http.MethodPost, "/v1/access/login", ts.apiKey, "",
			authsdk.LoginRequest{Email: "alice@example.com", Password: "wrong"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, authsdk.ErrorCodeInvalidCredentials, body["error"])
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, body := ts.request(t, http.MethodPost, "/v1/access/login", ts.apiKey, "",
			authsdk.LoginRequest{Email: "alice@example.com"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, authsdk.ErrorCodeInvalidRequest, body["error"])
	})
}

func TestUserInfoEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "alice@example.com", "hunter2!", domain.RoleCodeAdmin, domain.RoleCodeGeneral)

	pair, err := ts.tokens.Login(context.Background(), "alice@example.com", "hunter2!")
	require.NoError(t, err)

	t.Run("no bearer", func(t *testing.T) {
		resp, body := ts.request(t, http.MethodGet, "/v1/userinfo", ts.apiKey, "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, authsdk.ErrorCodeInvalidToken, body["error"])
	})

	t.Run("authenticated", func(t *testing.T) {
		resp, body := ts.request(t, http.MethodGet, "/v1/userinfo", ts.apiKey, pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "alice@example.com", body["email"])
		require.ElementsMatch(t, []any{"ADMIN", "GENERAL"}, body["roles"])
	})
}

func TestCredentialAssignRequiresAdmin(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "admin@example.com", "hunter2!", domain.RoleCodeAdmin, domain.RoleCodeGeneral)
	ts.seedUser(t, "member@example.com", "hunter2!", domain.RoleCodeGeneral)

	ctx := context.Background()
	adminPair, err := ts.tokens.Login(ctx, "admin@example.com", "hunter2!")
	require.NoError(t, err)
	memberPair, err := ts.tokens.Login(ctx, "member@example.com", "hunter2!")
	require.NoError(t, err)

	assign := authsdk.CredentialAssignRequest{Email: "member@example.com", Password: "reset123!"}

	t.Run("member denied", func(t *testing.T) {
		resp, body := ts.request(t, http.MethodPost, "/v1/credential/assign", ts.apiKey, memberPair.AccessToken, assign)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, authsdk.ErrorCodeAccessDenied, body["error"])
	})

	t.Run("admin allowed", func(t *testing.T) {
		resp, _ := ts.request(t, http.MethodPost, "/v1/credential/assign", ts.apiKey, adminPair.AccessToken, assign)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// The member's sessions are gone with the old password.
		resp, body := ts.request(t, http.MethodGet, "/v1/userinfo", ts.apiKey, memberPair.AccessToken, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, authsdk.ErrorCodeInvalidToken, body["error"])
	})
}

func TestLogoutEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "alice@example.com", "hunter2!", domain.RoleCodeGeneral)

	pair, err := ts.tokens.Login(context.Background(), "alice@example.com", "hunter2!")
	require.NoError(t, err)

	resp, _ := ts.request(t, http.MethodDelete, "/v1/access/logout", ts.apiKey, pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := ts.request(t, http.MethodGet, "/v1/userinfo", ts.apiKey, pair.AccessToken, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, authsdk.ErrorCodeInvalidToken, body["error"])
}
