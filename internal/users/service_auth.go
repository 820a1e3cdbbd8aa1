// Copyright (c) 2026 Trailforge. All rights reserved.

package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kasunvp/trailforge/internal/platform/apperr"
	"github.com/kasunvp/trailforge/internal/platform/dberr"
	"github.com/kasunvp/trailforge/internal/platform/sec"
	"github.com/kasunvp/trailforge/internal/platform/validate"
	"github.com/kasunvp/trailforge/pkg/uuidv7"
)

// SignupInput holds the data required to enroll a new account.
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
	Photo           string
	Role            string
}

// AuthResult pairs an account with a freshly issued access token.
type AuthResult struct {
	User  *User
	Token string
}

// Signup validates, hashes, and persists a brand-new account, then logs
// it straight in.
//
// # Business Rules
//   - Email must be unique (duplicate surfaces as 400).
//   - Password and its confirmation must match.
//   - Role must be one of the known enum values; empty defaults to user.
func (service *Service) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	if input.Role == "" {
		input.Role = string(sec.RoleUser)
	}

	err := validate.New().
		Required("name", input.Name).
		Email("email", input.Email).
		Required("password", input.Password).
		MinLen("password", input.Password, minPasswordLength).
		Required("passwordConfirm", input.PasswordConfirm).
		Custom("passwordConfirm", input.PasswordConfirm != input.Password, "Passwords do not match").
		OneOf("role", input.Role, sec.Roles...).
		Err()
	if err != nil {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("users_signup_hash_failed: %w", err)
	}

	user := &User{
		ID:           uuidv7.New(), // Time-sortable ID to prevent PG index fragmentation.
		Name:         input.Name,
		Email:        input.Email,
		Photo:        input.Photo,
		Role:         sec.Role(input.Role),
		PasswordHash: hashedPassword,
	}

	if err := service.repository.Create(ctx, user); err != nil {
		return nil, err
	}

	return service.issueToken(user)
}

// Login validates credentials and issues a token, enforcing the
// failed-attempt lockout.
//
// # Flow
//  1. Both email and password must be present (400 otherwise).
//  2. Lookup includes the password hash and lockout state.
//  3. A lockout window in the future fails the attempt even with correct
//     credentials, and the error reports the unlock time.
//  4. Any failed attempt increments the counter; reaching the threshold
//     sets the lockout deadline. The write is last-writer-wins.
//  5. Success resets the counter and deadline before issuing the token.
func (service *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, apperr.BadRequest("Please provide both email & password")
	}

	user, err := service.repository.FindByEmailWithSecrets(ctx, email)
	if err != nil {
		// Only an absent account maps to the credentials message, and it
		// stays generic: never reveal whether the email is registered.
		// A failing lookup is not a failed login.
		if !dberr.IsNotFound(err) {
			return nil, err
		}
		return nil, apperr.Unauthorized("Username or password does not match. Provide correct credentials")
	}

	now := time.Now()
	if user.Locked(now) || !sec.CheckPasswordHash(password, user.PasswordHash) {

		if user.FailedLoginAttempts >= maxFailedLoginAttempts && user.Locked(now) {
			unlockTime := user.LockoutUntil.Format("3:04:05 PM")
			return nil, apperr.Unauthorized(fmt.Sprintf("Account is locked due to multiple failed login attempts. Try again after %s.", unlockTime))
		}

		attempts := user.FailedLoginAttempts + 1
		lockoutUntil := user.LockoutUntil
		if attempts >= maxFailedLoginAttempts {
			deadline := now.Add(service.lockoutDuration)
			lockoutUntil = &deadline
		}

		if err := service.repository.UpdateLoginState(ctx, user.ID, attempts, lockoutUntil); err != nil {
			return nil, err
		}

		return nil, apperr.Unauthorized("Username or password does not match. Provide correct credentials")
	}

	if err := service.repository.UpdateLoginState(ctx, user.ID, 0, nil); err != nil {
		return nil, err
	}

	return service.issueToken(user)
}

// ResolveToken verifies a bearer token and re-resolves its owner,
// implementing [middleware.IdentityResolver].
//
// # Flow
//  1. Verify signature and expiry; the two failures are distinguishable.
//  2. The account must still exist and be active (it may have been
//     deleted after the token was issued).
//  3. A password change after token issuance invalidates the token.
func (service *Service) ResolveToken(ctx context.Context, token string) (*sec.Identity, error) {
	claims, err := service.tokens.VerifyToken(token)
	if err != nil {
		if errors.Is(err, sec.ErrTokenExpired) {
			return nil, apperr.Unauthorized("Token has expired !")
		}
		return nil, apperr.Unauthorized("Invalid token. Please login again")
	}

	user, err := service.repository.FindByIDWithSecrets(ctx, claims.Subject)
	if err != nil {
		if !dberr.IsNotFound(err) {
			return nil, err
		}
		return nil, apperr.Unauthorized("User with the matching token no longer exists")
	}

	if claims.IssuedAt != nil && user.PasswordChangedAfter(claims.IssuedAt.Time) {
		return nil, apperr.Unauthorized("User password was changed recently, after the issue of the current token")
	}

	return &sec.Identity{ID: user.ID, Role: user.Role}, nil
}

// ForgotPassword starts the email reset flow.
//
// The plaintext token travels only in the email; the database holds its
// sha256 digest. If the email cannot be sent the token is rolled back so
// no unreachable reset window lingers on the account.
func (service *Service) ForgotPassword(ctx context.Context, email, baseURL string) error {
	user, err := service.repository.FindByEmailWithSecrets(ctx, email)
	if err != nil {
		if !dberr.IsNotFound(err) {
			return err
		}
		return apperr.NotFound("Please provide the email address which you signed up")
	}

	resetToken, err := sec.GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("users_reset_token_failed: %w", err)
	}

	expires := time.Now().Add(resetTokenTTL)
	if err := service.repository.SetResetToken(ctx, user.ID, sec.HashToken(resetToken), expires); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/resetPassword/%s", baseURL, resetToken)
	if err := service.mail.SendPasswordReset(ctx, user.Email, user.Name, resetURL); err != nil {
		// Compensate: a token the user never received must not stay live.
		if clearErr := service.repository.ClearResetToken(ctx, user.ID); clearErr != nil {
			return clearErr
		}
		return apperr.InternalMessage("There was an error sending the email. Try again later!", err)
	}

	return nil
}

// ResetPassword completes the email reset flow with a single-use token.
//
// The matched account gets the new password with full validation, its
// reset and lockout state cleared, and a fresh login token. The change
// timestamp is backdated one second so the token issued in the same
// instant is not judged stale.
func (service *Service) ResetPassword(ctx context.Context, token, password, passwordConfirm string) (*AuthResult, error) {
	err := validate.New().
		Required("password", password).
		MinLen("password", password, minPasswordLength).
		Required("passwordConfirm", passwordConfirm).
		Custom("passwordConfirm", passwordConfirm != password, "Passwords do not match").
		Err()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user, err := service.repository.FindByResetToken(ctx, sec.HashToken(token), now)
	if err != nil {
		if !dberr.IsNotFound(err) {
			return nil, err
		}
		return nil, apperr.BadRequest("Invalid token or the reset token has expired.")
	}

	newHash, err := sec.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("users_reset_hash_failed: %w", err)
	}

	if err := service.repository.UpdatePassword(ctx, user.ID, newHash, now.Add(-passwordChangedSkew)); err != nil {
		return nil, err
	}

	return service.issueToken(user)
}

// UpdatePassword rotates the password of a logged-in user after checking
// the current one, then re-issues the token.
func (service *Service) UpdatePassword(ctx context.Context, userID, currentPassword, password, passwordConfirm string) (*AuthResult, error) {
	user, err := service.repository.FindByIDWithSecrets(ctx, userID)
	if err != nil {
		if !dberr.IsNotFound(err) {
			return nil, err
		}
		return nil, apperr.NotFound("User not found")
	}

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return nil, apperr.Unauthorized("Entered password does not match with the current one")
	}

	err = validate.New().
		Required("password", password).
		MinLen("password", password, minPasswordLength).
		Required("passwordConfirm", passwordConfirm).
		Custom("passwordConfirm", passwordConfirm != password, "Passwords do not match").
		Err()
	if err != nil {
		return nil, err
	}

	newHash, err := sec.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("users_update_password_hash_failed: %w", err)
	}

	if err := service.repository.UpdatePassword(ctx, user.ID, newHash, time.Now().Add(-passwordChangedSkew)); err != nil {
		return nil, err
	}

	return service.issueToken(user)
}

// issueToken signs a fresh access token for the user.
func (service *Service) issueToken(user *User) (*AuthResult, error) {
	token, err := service.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("users_token_generation_failed: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// TokenExpiry exposes the configured token lifetime for cookie expiry.
func (service *Service) TokenExpiry() time.Duration {
	return service.tokens.Expiry()
}
