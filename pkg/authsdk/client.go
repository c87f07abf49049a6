package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a thin typed client for the auth service. It carries the caller
// tier API key; user-tier state lives on the Session returned by Login.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient builds a client for the service at baseURL. The API key is sent
// in x-api-key on every request.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login authenticates with email/password and returns a Session holding the
// issued token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var pair TokenPairResponse
	err := c.do(ctx, http.MethodPost, "/v1/access/login", "",
		LoginRequest{Email: email, Password: password}, &pair)
	if err != nil {
		return nil, err
	}
	return &Session{
		client:       c,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Livez reports process liveness.
func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Readyz reports whether the service can serve traffic.
func (c *Client) Readyz(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Session is one authenticated user session: a live token pair plus the
// client it was minted through.
type Session struct {
	client       *Client
	AccessToken  string
	RefreshToken string
}

// UserInfo returns the authenticated user's profile.
func (s *Session) UserInfo(ctx context.Context) (*UserInfoResponse, error) {
	var out UserInfoResponse
	err := s.client.do(ctx, http.MethodGet, "/v1/userinfo", s.AccessToken, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh rotates the session's token pair in place. After a successful
// call the previous pair is dead.
func (s *Session) Refresh(ctx context.Context) error {
	var pair TokenPairResponse
	err := s.client.do(ctx, http.MethodPost, "/v1/access/token/refresh", s.AccessToken,
		RefreshRequest{RefreshToken: s.RefreshToken}, &pair)
	if err != nil {
		return err
	}
	s.AccessToken = pair.AccessToken
	s.RefreshToken = pair.RefreshToken
	return nil
}

// Logout tears down this session on the server. Sibling sessions of the
// same user survive.
func (s *Session) Logout(ctx context.Context) error {
	return s.client.do(ctx, http.MethodDelete, "/v1/access/logout", s.AccessToken, nil, nil)
}

// AssignCredential resets another user's password. Requires the ADMIN role.
func (s *Session) AssignCredential(ctx context.Context, email, password string) error {
	return s.client.do(ctx, http.MethodPost, "/v1/credential/assign", s.AccessToken,
		CredentialAssignRequest{Email: email, Password: password}, nil)
}

// do performs one request/response cycle. Non-2xx responses decode into an
// *APIError and are returned as the error.
func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Code == "" {
			return fmt.Errorf("authsdk: unexpected status %d", resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
