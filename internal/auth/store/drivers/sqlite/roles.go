package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/sableforge/gatekeeper/internal/auth/domain"
)

type rolesRepo struct {
	db dbtx
}

func (r *rolesRepo) GetRoleByCode(ctx context.Context, code string) (domain.Role, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, code, status, created_at, updated_at
		 FROM roles WHERE code = ? AND status = 1`, code)

	var role domain.Role
	if err := row.Scan(&role.ID, &role.Code, &role.Status, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) GetRolesByCodes(ctx context.Context, codes []string) ([]domain.Role, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(codes))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(codes))
	for i, c := range codes {
		args[i] = c
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, status, created_at, updated_at
		 FROM roles WHERE code IN (`+placeholders+`) AND status = 1
		 ORDER BY code`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Code, &role.Status, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roles (id, code, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		role.ID, role.Code, role.Status, now, now)
	return mapConstraint(err)
}
