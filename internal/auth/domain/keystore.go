package domain

import "time"

// Keystore is one live token-pair session for a user. PrimaryKey is the
// opaque secret embedded in the session's access token, SecondaryKey the
// one in its refresh token. Deleting the row invalidates the session.
//
// A user may own many keystore rows (one per device/session), but
// (user_id, primary_key) is unique: a presented access token matches at
// most one row.
type Keystore struct {
	ID           string
	UserID       string
	PrimaryKey   string
	SecondaryKey string
	Status       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
