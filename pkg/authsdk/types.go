package authsdk

// LoginRequest is the body of POST /v1/access/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /v1/access/token/refresh. The matching
// access token travels in the Authorization header.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenPairResponse is returned by login and refresh.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// CredentialAssignRequest is the body of POST /v1/credential/assign.
type CredentialAssignRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfoResponse echoes the authenticated user.
type UserInfoResponse struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Roles  []string `json:"roles"`
}

// StatusResponse is the generic acknowledgement for operations with no
// other payload (logout, credential assign).
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Version string        `json:"version,omitempty"`
	Uptime  string        `json:"uptime,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks itemises readiness of the hard dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
