// Copyright (c) 2026 Trailforge. All rights reserved.

package users

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kasunvp/trailforge/internal/platform/apperr"
	"github.com/kasunvp/trailforge/internal/platform/mailer"
	"github.com/kasunvp/trailforge/internal/platform/sec"
	"github.com/kasunvp/trailforge/internal/platform/validate"
	"github.com/kasunvp/trailforge/pkg/query"
)

// Service implements the user use cases: admin CRUD, the logged-in
// profile operations, and the authentication flows (service_auth.go).
type Service struct {
	repository      Repository
	tokens          *sec.TokenService
	mail            mailer.Mailer
	lockoutDuration time.Duration
}

// NewService constructs a [Service] with its dependencies.
func NewService(repository Repository, tokens *sec.TokenService, mail mailer.Mailer, lockoutDuration time.Duration) *Service {
	return &Service{
		repository:      repository,
		tokens:          tokens,
		mail:            mail,
		lockoutDuration: lockoutDuration,
	}
}

// # Admin CRUD (crud.Service[User])

// List returns active users through the query-feature pipeline.
func (service *Service) List(ctx context.Context, spec query.Spec) ([]User, error) {
	return service.repository.List(ctx, spec)
}

// Get returns a single active user.
func (service *Service) Get(ctx context.Context, id string) (User, error) {
	user, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	return *user, nil
}

// Create is not exposed: accounts are created through signup so the
// password pipeline always runs. The route is never mounted; this exists
// only to satisfy the generic handler contract.
func (service *Service) Create(ctx context.Context, entity User) (User, error) {
	return User{}, apperr.BadRequest("This route is not defined! Please use /signup instead")
}

// Update applies an admin patch to a user's profile fields. Credential
// columns are invisible to the patch: they carry no JSON names.
func (service *Service) Update(ctx context.Context, id string, patch json.RawMessage) (User, error) {
	user, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if err := json.Unmarshal(patch, user); err != nil {
		return User{}, validate.ErrInvalidJSON
	}
	user.ID = id

	if err := validateProfile(user); err != nil {
		return User{}, err
	}

	if err := service.repository.UpdateProfile(ctx, user); err != nil {
		return User{}, err
	}

	return *user, nil
}

// Delete permanently removes a user (admin operation).
func (service *Service) Delete(ctx context.Context, id string) error {
	return service.repository.Delete(ctx, id)
}

// # Profile (logged-in user)

// GetMe returns the caller's own profile.
func (service *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	return service.repository.FindByID(ctx, userID)
}

// UpdateMe applies a self-service profile patch.
//
// Only name and email are updatable here. Password keys are rejected
// outright rather than ignored, pointing the caller at the dedicated
// password route; any other key (role in particular) is discarded.
func (service *Service) UpdateMe(ctx context.Context, userID string, patch json.RawMessage) (*User, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(patch, &raw); err != nil {
		return nil, validate.ErrInvalidJSON
	}

	if _, ok := raw["password"]; ok {
		return nil, apperr.BadRequest("You can not use this route to update password. Please use changePassword route for password update")
	}
	if _, ok := raw["passwordConfirm"]; ok {
		return nil, apperr.BadRequest("You can not use this route to update password. Please use changePassword route for password update")
	}

	user, err := service.repository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if rawName, ok := raw["name"]; ok {
		if err := json.Unmarshal(rawName, &user.Name); err != nil {
			return nil, validate.ErrInvalidJSON
		}
	}
	if rawEmail, ok := raw["email"]; ok {
		if err := json.Unmarshal(rawEmail, &user.Email); err != nil {
			return nil, validate.ErrInvalidJSON
		}
	}

	if err := validateProfile(user); err != nil {
		return nil, err
	}

	if err := service.repository.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteMe soft-deletes the caller's own account.
func (service *Service) DeleteMe(ctx context.Context, userID string) error {
	return service.repository.SoftDelete(ctx, userID)
}

// validateProfile checks the always-required profile fields.
func validateProfile(user *User) error {
	return validate.New().
		Required("name", user.Name).
		Email("email", user.Email).
		OneOf("role", string(user.Role), sec.Roles...).
		Err()
}
