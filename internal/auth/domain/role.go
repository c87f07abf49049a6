package domain

import "time"

// Role codes known to the system. The catalog lives in the roles table;
// these constants only name the seeded entries.
const (
	RoleCodeAdmin   = "ADMIN"
	RoleCodeGeneral = "GENERAL"
	RoleCodeLearner = "LEARNER"
)

type Role struct {
	ID        string
	Code      string
	Status    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
