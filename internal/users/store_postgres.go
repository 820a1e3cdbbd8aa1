// Copyright (c) 2026 Trailforge. All rights reserved.

package users

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kasunvp/trailforge/internal/platform/dberr"
	"github.com/kasunvp/trailforge/pkg/query"
)

// Schema is the query-feature whitelist for user listings. Only these JSON
// field names can be filtered or sorted on; anything else is dropped before
// reaching SQL.
var Schema = query.Schema{
	ID: "id",
	Columns: map[string]string{
		"name":      "name",
		"email":     "email",
		"photo":     "photo",
		"role":      "role",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
	DefaultSort: "created_at DESC",
}

// publicColumns is the SELECT list for default reads: credential and
// lockout columns stay out of general result sets.
const publicColumns = "id, name, email, photo, role, created_at, updated_at"

// secretColumns extends the public set with the state the auth flows need.
const secretColumns = publicColumns + ", password_hash, password_changed_at, reset_token_hash, reset_token_expires, failed_login_attempts, lockout_until"

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the PostgreSQL implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns active users shaped by the request's query features.
func (repository *PostgresRepository) List(ctx context.Context, spec query.Spec) ([]User, error) {
	baseQuery := "SELECT " + publicColumns + " FROM users WHERE active = TRUE"

	whereSQL, args := Schema.Where(spec, 1)
	limitSQL, limitArgs := Schema.LimitOffset(spec, len(args)+1)
	sql := baseQuery + whereSQL + Schema.OrderBy(spec) + limitSQL
	args = append(args, limitArgs...)

	rows, err := repository.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("users_list_failed: %w", err))
	}
	defer rows.Close()

	result := []User{}
	for rows.Next() {
		var user User
		if err := scanPublic(rows, &user); err != nil {
			return nil, dberr.Wrap(fmt.Errorf("users_list_scan_failed: %w", err))
		}
		result = append(result, user)
	}

	return result, rows.Err()
}

// FindByID retrieves an active account without credential columns.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const sql = "SELECT " + publicColumns + " FROM users WHERE id = $1 AND active = TRUE"

	user := &User{}
	if err := scanPublic(repository.pool.QueryRow(ctx, sql, id), user); err != nil {
		return nil, dberr.WrapNotFound(err, "Requested doc not found")
	}

	return user, nil
}

// FindByEmailWithSecrets loads the full account for the login path.
func (repository *PostgresRepository) FindByEmailWithSecrets(ctx context.Context, email string) (*User, error) {
	const sql = "SELECT " + secretColumns + " FROM users WHERE email = $1 AND active = TRUE"

	user := &User{}
	if err := scanSecret(repository.pool.QueryRow(ctx, sql, email), user); err != nil {
		return nil, dberr.WrapNotFound(err, "Requested doc not found")
	}

	return user, nil
}

// FindByIDWithSecrets loads the full account by ID.
func (repository *PostgresRepository) FindByIDWithSecrets(ctx context.Context, id string) (*User, error) {
	const sql = "SELECT " + secretColumns + " FROM users WHERE id = $1 AND active = TRUE"

	user := &User{}
	if err := scanSecret(repository.pool.QueryRow(ctx, sql, id), user); err != nil {
		return nil, dberr.WrapNotFound(err, "Requested doc not found")
	}

	return user, nil
}

// FindByResetToken matches an unexpired reset token digest.
func (repository *PostgresRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*User, error) {
	const sql = "SELECT " + secretColumns + ` FROM users
		WHERE reset_token_hash = $1 AND reset_token_expires > $2 AND active = TRUE`

	user := &User{}
	if err := scanSecret(repository.pool.QueryRow(ctx, sql, tokenHash, now), user); err != nil {
		return nil, dberr.WrapNotFound(err, "Invalid token or the reset token has expired.")
	}

	return user, nil
}

// Create persists a new account row.
func (repository *PostgresRepository) Create(ctx context.Context, user *User) error {
	const sql = `
		INSERT INTO users (
			id, name, email, photo, role, password_hash, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8)`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Active = true

	_, err := repository.pool.Exec(ctx, sql,
		user.ID,
		user.Name,
		user.Email,
		user.Photo,
		user.Role,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err)
	}

	return nil
}

// UpdateProfile persists the mutable profile columns.
func (repository *PostgresRepository) UpdateProfile(ctx context.Context, user *User) error {
	const sql = `
		UPDATE users
		SET name = $2, email = $3, photo = $4, role = $5, updated_at = $6
		WHERE id = $1 AND active = TRUE`

	user.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, sql,
		user.ID,
		user.Name,
		user.Email,
		user.Photo,
		user.Role,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.WrapNotFound(pgx.ErrNoRows, "Requested document not found")
	}

	return nil
}

// UpdateLoginState overwrites the lockout counters. Plain UPDATE by design:
// concurrent attempts race and the last writer wins.
func (repository *PostgresRepository) UpdateLoginState(ctx context.Context, id string, attempts int, lockoutUntil *time.Time) error {
	const sql = "UPDATE users SET failed_login_attempts = $2, lockout_until = $3 WHERE id = $1"

	if _, err := repository.pool.Exec(ctx, sql, id, attempts, lockoutUntil); err != nil {
		return dberr.Wrap(err)
	}
	return nil
}

// UpdatePassword rotates the hash and resets every credential-adjacent
// column in a single statement.
func (repository *PostgresRepository) UpdatePassword(ctx context.Context, id, newHash string, changedAt time.Time) error {
	const sql = `
		UPDATE users
		SET password_hash = $2,
		    password_changed_at = $3,
		    reset_token_hash = '',
		    reset_token_expires = NULL,
		    failed_login_attempts = 0,
		    lockout_until = NULL,
		    updated_at = $3
		WHERE id = $1`

	if _, err := repository.pool.Exec(ctx, sql, id, newHash, changedAt); err != nil {
		return dberr.Wrap(err)
	}
	return nil
}

// SetResetToken stores the hashed reset token with its expiry.
func (repository *PostgresRepository) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	const sql = "UPDATE users SET reset_token_hash = $2, reset_token_expires = $3 WHERE id = $1"

	if _, err := repository.pool.Exec(ctx, sql, id, tokenHash, expires); err != nil {
		return dberr.Wrap(err)
	}
	return nil
}

// ClearResetToken rolls a pending reset token back.
func (repository *PostgresRepository) ClearResetToken(ctx context.Context, id string) error {
	const sql = "UPDATE users SET reset_token_hash = '', reset_token_expires = NULL WHERE id = $1"

	if _, err := repository.pool.Exec(ctx, sql, id); err != nil {
		return dberr.Wrap(err)
	}
	return nil
}

// SoftDelete marks the account inactive.
func (repository *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	const sql = "UPDATE users SET active = FALSE, updated_at = $2 WHERE id = $1 AND active = TRUE"

	tag, err := repository.pool.Exec(ctx, sql, id, time.Now())
	if err != nil {
		return dberr.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.WrapNotFound(pgx.ErrNoRows, "user not found")
	}
	return nil
}

// Delete permanently removes the account row.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	const sql = "DELETE FROM users WHERE id = $1"

	tag, err := repository.pool.Exec(ctx, sql, id)
	if err != nil {
		return dberr.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.WrapNotFound(pgx.ErrNoRows, "Could not perform the deletion. No document found with that ID")
	}
	return nil
}

// scanPublic reads the publicColumns SELECT list.
func scanPublic(row pgx.Row, user *User) error {
	return row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Photo,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}

// scanSecret reads the secretColumns SELECT list.
func scanSecret(row pgx.Row, user *User) error {
	return row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Photo,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.PasswordHash,
		&user.PasswordChangedAt,
		&user.ResetTokenHash,
		&user.ResetTokenExpires,
		&user.FailedLoginAttempts,
		&user.LockoutUntil,
	)
}
