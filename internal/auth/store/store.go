package store

import (
	"context"
	"errors"
	"time"

	"github.com/sableforge/gatekeeper/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Keystores() Keystores
	Roles() Roles
	APIKeys() APIKeys

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., session
	// rotation). The caller MUST call Commit() or Rollback() on the
	// returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns an active user by id with active roles populated.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and credential assignment.
	// Roles are populated the same way as GetUserByID.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// UserExists reports whether an active user with the id exists.
	UserExists(ctx context.Context, id string) (bool, error)

	// CreateUser inserts a new user and its role memberships
	// (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
}

type Keystores interface {
	// CreateKeystore inserts a new session row. Violating the
	// (user_id, primary_key) uniqueness yields ErrAlreadyExists.
	CreateKeystore(ctx context.Context, k domain.Keystore) error

	// GetKeystoreForPrimary returns the active row matching the user and
	// primary secret. This is the per-request authentication lookup.
	GetKeystoreForPrimary(ctx context.Context, userID, primaryKey string) (domain.Keystore, error)

	// GetKeystore returns the row matching user, primary and secondary
	// secrets exactly. This is the refresh-flow lookup.
	GetKeystore(ctx context.Context, userID, primaryKey, secondaryKey string) (domain.Keystore, error)

	// DeleteKeystore removes one session row. Returns ErrNotFound if the
	// row is already gone - rotation relies on this to reject replays.
	DeleteKeystore(ctx context.Context, id string) error

	// DeleteAllForUser removes every session row for a user (full
	// revocation, e.g. after a credential reset).
	DeleteAllForUser(ctx context.Context, userID string) error

	// DeleteIdleSince removes rows not touched since the cutoff
	// (housekeeping; such sessions can no longer refresh anyway).
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error)
}

type Roles interface {
	// GetRoleByCode fetches an active role by its code.
	GetRoleByCode(ctx context.Context, code string) (domain.Role, error)

	// GetRolesByCodes fetches all active roles whose code is in codes.
	// Missing codes are simply absent from the result.
	GetRolesByCodes(ctx context.Context, codes []string) ([]domain.Role, error)

	// CreateRole inserts a new role (id is ULID).
	CreateRole(ctx context.Context, r domain.Role) error
}

type APIKeys interface {
	// GetAPIKey returns an active api key record by its key string.
	GetAPIKey(ctx context.Context, key string) (domain.APIKey, error)

	// CreateAPIKey inserts a new api key record.
	CreateAPIKey(ctx context.Context, k domain.APIKey) error
}
