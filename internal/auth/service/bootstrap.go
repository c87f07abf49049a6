package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sableforge/gatekeeper/internal/auth/domain"
	"github.com/sableforge/gatekeeper/internal/auth/store"
	"github.com/sableforge/gatekeeper/pkg/cryptox"
	"github.com/sableforge/gatekeeper/pkg/idx"
	"github.com/sableforge/gatekeeper/pkg/slogx"
)

var ErrBootstrapFailed = errors.New("bootstrap failed")

// BootstrapService seeds the first admin account and a service API key on an
// empty database. It is invoked once at startup when configured; on a
// populated database it does nothing.
type BootstrapService struct {
	Store store.Store
}

// Bootstrap creates the admin user (with the ADMIN and GENERAL roles from
// the seeded catalog) and one API key carrying the GENERAL permission.
// Returns the generated API key so the operator can record it; it is never
// persisted anywhere else in plain sight.
func (s *BootstrapService) Bootstrap(ctx context.Context, adminEmail, adminName, adminPassword string) (string, error) {
	l := slogx.FromContext(ctx)

	if _, err := s.Store.Users().GetUserByEmail(ctx, adminEmail); err == nil {
		l.Info("bootstrap skipped, admin already present", slog.String("email", adminEmail))
		return "", nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	passHash, err := cryptox.HashPassword(adminPassword)
	if err != nil {
		return "", err
	}

	apiKey, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	adminUserID := idx.New().String()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		roles, err := tx.Roles().GetRolesByCodes(ctx, []string{domain.RoleCodeAdmin, domain.RoleCodeGeneral})
		if err != nil {
			return err
		}
		if len(roles) != 2 {
			l.Error("role catalog incomplete, migrations not applied?")
			return ErrBootstrapFailed
		}

		if err := tx.Users().CreateUser(ctx, domain.User{
			ID:           adminUserID,
			Email:        adminEmail,
			Name:         adminName,
			PasswordHash: passHash,
			Roles:        roles,
			Status:       true,
		}); err != nil {
			return err
		}

		return tx.APIKeys().CreateAPIKey(ctx, domain.APIKey{
			Key:         apiKey,
			Permissions: []string{domain.APIPermissionGeneral},
			Status:      true,
		})
	})
	if err != nil {
		return "", err
	}

	l.Info("bootstrapped admin account", slog.String("admin_user_id", adminUserID))
	return apiKey, nil
}
