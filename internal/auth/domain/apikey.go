package domain

import "time"

// API key permission tiers. Caller-level gating, independent of the
// user/role model.
const (
	APIPermissionGeneral = "GENERAL"
)

// APIKey is a caller-level credential presented in the x-api-key header.
type APIKey struct {
	Key         string
	Permissions []string
	Status      bool
	CreatedAt   time.Time
}

// HasPermission reports whether the key grants the given permission.
func (k APIKey) HasPermission(perm string) bool {
	for _, p := range k.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
