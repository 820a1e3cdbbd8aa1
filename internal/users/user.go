// Copyright (c) 2026 Trailforge. All rights reserved.

// Package users owns the user lifecycle: accounts, authentication,
// password recovery, and the admin-facing user CRUD.
//
// # Architecture
//
// The entity carries every persisted column, but sensitive state
// (password hash, reset token, lockout counters) is excluded from JSON so
// it can never leak through a response or a field projection.
package users

import (
	"time"

	"github.com/kasunvp/trailforge/internal/platform/sec"
)

// User represents a registered account.
//
// # Rules
//   - Email is unique and validated.
//   - PasswordHash is produced exclusively by the service via bcrypt.
//   - Active supports soft deletion: inactive accounts are invisible to
//     every default read path and cannot authenticate.
type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Photo string   `json:"photo,omitempty"`
	Role  sec.Role `json:"role"`

	PasswordHash      string     `json:"-"`
	PasswordChangedAt *time.Time `json:"-"`

	// Password-reset state: sha256 digest of the emailed token plus its
	// expiry. The plaintext token is never stored.
	ResetTokenHash    string     `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`

	// Login-lockout state. Counter writes are plain last-writer-wins
	// UPDATEs; concurrent failed attempts may undercount, which only
	// delays the lockout by a try or two.
	FailedLoginAttempts int        `json:"-"`
	LockoutUntil        *time.Time `json:"-"`

	Active bool `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Locked reports whether the account is currently in its lockout window.
func (u *User) Locked(now time.Time) bool {
	return u.LockoutUntil != nil && u.LockoutUntil.After(now)
}

// PasswordChangedAfter reports whether the password was rotated after the
// given token-issue time. Tokens issued before a password change are stale.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.After(issuedAt)
}
