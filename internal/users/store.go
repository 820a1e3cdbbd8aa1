// Copyright (c) 2026 Trailforge. All rights reserved.

package users

import (
	"context"
	"time"

	"github.com/kasunvp/trailforge/pkg/query"
)

// Repository defines the data access contract for user accounts.
//
// # Implementations
//
// The canonical implementation is PostgreSQL (store_postgres.go). Auth
// tests use an in-memory fake.
//
// Every read method except the explicit credential lookups excludes
// inactive accounts and never loads the password hash.
type Repository interface {
	// List returns active users through the query-feature pipeline.
	List(ctx context.Context, spec query.Spec) ([]User, error)

	// FindByID returns the active account with the given ID.
	//
	// Returns a wrapped not-found error if the account does not exist.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmailWithSecrets returns the active account with the given
	// email including its password hash and lockout state. Only the login
	// path may call this.
	FindByEmailWithSecrets(ctx context.Context, email string) (*User, error)

	// FindByIDWithSecrets is the by-ID variant, used by the password
	// update flow and token resolution.
	FindByIDWithSecrets(ctx context.Context, id string) (*User, error)

	// FindByResetToken returns the account holding the given reset token
	// digest with an unexpired window. Expired or unknown digests surface
	// as a not-found error.
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*User, error)

	// Create persists a brand-new account.
	//
	// Returns a wrapped duplicate error if the email is already taken.
	Create(ctx context.Context, user *User) error

	// UpdateProfile persists changes to name, email, photo, and role.
	// Password and lockout state are untouched.
	UpdateProfile(ctx context.Context, user *User) error

	// UpdateLoginState overwrites the failed-attempt counter and lockout
	// deadline. Deliberately a plain UPDATE: last writer wins.
	UpdateLoginState(ctx context.Context, id string, attempts int, lockoutUntil *time.Time) error

	// UpdatePassword replaces the password hash, stamps the change time,
	// and clears reset-token and lockout state in one statement.
	UpdatePassword(ctx context.Context, id, newHash string, changedAt time.Time) error

	// SetResetToken stores the reset token digest and its expiry.
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error

	// ClearResetToken removes any pending reset token, used to roll back
	// when the reset email cannot be sent.
	ClearResetToken(ctx context.Context, id string) error

	// SoftDelete marks the account inactive without removing the row,
	// preserving reviews the user has written.
	SoftDelete(ctx context.Context, id string) error

	// Delete permanently removes the account (admin operation).
	Delete(ctx context.Context, id string) error
}
