package domain

// TokenPair is what login and refresh return: a short-lived signed access
// token and a longer-lived signed refresh token, each carrying one of the
// session's keystore secrets.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
