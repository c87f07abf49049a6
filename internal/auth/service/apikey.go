package service

import (
	"context"
	"errors"

	"github.com/sableforge/gatekeeper/internal/auth/domain"
	"github.com/sableforge/gatekeeper/internal/auth/store"
)

// CheckAPIKey validates a caller-level key and demands one permission of it.
// This tier runs before any user authentication: no valid key, no service.
func (s *AuthService) CheckAPIKey(ctx context.Context, key, permission string) (domain.APIKey, error) {
	if key == "" {
		return domain.APIKey{}, ErrInvalidAPIKey
	}

	apiKey, err := s.Store.APIKeys().GetAPIKey(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.APIKey{}, ErrInvalidAPIKey
		}
		return domain.APIKey{}, err
	}

	if !apiKey.HasPermission(permission) {
		return domain.APIKey{}, ErrInvalidAPIKey
	}
	return apiKey, nil
}
