// Package service provides the business logic layer for the catalog:
// signup, profile management, and collection/book operations with
// ownership enforcement.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bookstacksapp/bookstacks-server/internal/auth"
	"github.com/bookstacksapp/bookstacks-server/internal/domain"
	apperrors "github.com/bookstacksapp/bookstacks-server/internal/errors"
	"github.com/bookstacksapp/bookstacks-server/internal/store"
)

// UserService handles signup and profile operations.
type UserService struct {
	store    *store.Store
	provider auth.Provider
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store *store.Store, provider auth.Provider, logger *slog.Logger) *UserService {
	return &UserService{
		store:    store,
		provider: provider,
		logger:   logger,
	}
}

// SignUpParams is the signup request body.
type SignUpParams struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"required"`
}

// UpdateProfileParams is the profile update request body. Name keeps the
// stored value when empty; Bio is replaced whenever the field is present,
// so an explicit empty string clears it.
type UpdateProfileParams struct {
	Name string  `json:"name"`
	Bio  *string `json:"bio"`
}

// SignUp registers a new account with the identity provider and mirrors
// the resulting identity into the local store. The provider issues the
// user ID; the local record is a plain upsert keyed on it.
func (s *UserService) SignUp(ctx context.Context, params SignUpParams) (*domain.User, error) {
	identity, err := s.provider.SignUp(ctx, params.Email, params.Password, params.Name)
	if err != nil {
		var perr *auth.ProviderError
		if errors.As(err, &perr) {
			// Provider rejections (duplicate email etc.) surface to the
			// caller with the provider's message.
			return nil, apperrors.InvalidRequest(perr.Message)
		}
		return nil, apperrors.Internal("signup failed").WithCause(err)
	}

	user := &domain.User{
		ID:    identity.ID,
		Email: identity.Email,
		Name:  identity.Name,
	}

	if err := s.store.Users.Put(ctx, user.ID, user); err != nil {
		return nil, apperrors.Internal("persist user").WithCause(err)
	}

	s.logger.Info("user signed up", "user_id", user.ID)

	return user, nil
}

// GetProfile returns the caller's own profile.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, apperrors.Internal("get user").WithCause(err)
	}
	return user, nil
}

// UpdateProfile merges the supplied fields over the stored profile and
// stamps UpdatedAt.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Name != "" {
		user.Name = params.Name
	}
	if params.Bio != nil {
		user.Bio = *params.Bio
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return nil, apperrors.Internal("update user").WithCause(err)
	}

	s.logger.Info("profile updated", "user_id", userID)

	return user, nil
}
