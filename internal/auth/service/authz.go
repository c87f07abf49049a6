package service

import (
	"context"

	"github.com/sableforge/gatekeeper/internal/auth/domain"
)

// AuthorizeAny grants access when the user holds at least one of the named
// roles. Role codes that don't exist (or are disabled) in the catalog simply
// contribute nothing, so a check against only unknown codes denies everyone.
func (s *AuthService) AuthorizeAny(ctx context.Context, u domain.User, roleCodes ...string) error {
	if len(roleCodes) == 0 {
		return ErrPermissionDenied
	}

	roles, err := s.Store.Roles().GetRolesByCodes(ctx, roleCodes)
	if err != nil {
		return err
	}

	for _, r := range roles {
		if u.HasRoleID(r.ID) {
			return nil
		}
	}
	return ErrPermissionDenied
}

// AuthorizeAll is the strict variant: the user must hold every named role.
// Unknown codes can never be held, so they deny.
func (s *AuthService) AuthorizeAll(ctx context.Context, u domain.User, roleCodes ...string) error {
	if len(roleCodes) == 0 {
		return ErrPermissionDenied
	}

	roles, err := s.Store.Roles().GetRolesByCodes(ctx, roleCodes)
	if err != nil {
		return err
	}
	if len(roles) != len(roleCodes) {
		return ErrPermissionDenied
	}

	for _, r := range roles {
		if !u.HasRoleID(r.ID) {
			return ErrPermissionDenied
		}
	}
	return nil
}
