package domain

import "time"

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string // argon2id encoded
	Roles        []Role // populated memberships, active roles only
	Status       bool   // inactive users never authenticate
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRoleID reports whether the user holds the given role.
func (u User) HasRoleID(roleID string) bool {
	for _, r := range u.Roles {
		if r.ID == roleID {
			return true
		}
	}
	return false
}
