package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/sableforge/gatekeeper/internal/auth/domain"
)

type apiKeysRepo struct {
	db dbtx
}

func (r *apiKeysRepo) GetAPIKey(ctx context.Context, key string) (domain.APIKey, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT key, permissions, status, created_at
		 FROM api_keys WHERE key = ? AND status = 1`, key)

	var (
		apiKey domain.APIKey
		perms  string
	)
	if err := row.Scan(&apiKey.Key, &perms, &apiKey.Status, &apiKey.CreatedAt); err != nil {
		return domain.APIKey{}, mapNotFound(err)
	}
	apiKey.Permissions = splitPermissions(perms)
	return apiKey, nil
}

func (r *apiKeysRepo) CreateAPIKey(ctx context.Context, key domain.APIKey) error {
	created := key.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key, permissions, status, created_at)
		 VALUES (?, ?, ?, ?)`,
		key.Key, strings.Join(key.Permissions, " "), key.Status, created)
	return mapConstraint(err)
}
