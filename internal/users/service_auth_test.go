// Copyright (c) 2026 Trailforge. All rights reserved.

package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasunvp/trailforge/internal/platform/apperr"
	"github.com/kasunvp/trailforge/internal/platform/sec"
	"github.com/kasunvp/trailforge/pkg/query"
)

// fakeRepository is an in-memory Repository for service tests. A non-nil
// lookupErr simulates a storage outage on the secret-bearing lookups.
type fakeRepository struct {
	byID      map[string]*User
	lookupErr error
}

func newFakeRepository(seed ...*User) *fakeRepository {
	repo := &fakeRepository{byID: map[string]*User{}}
	for _, user := range seed {
		clone := *user
		clone.Active = true
		repo.byID[clone.ID] = &clone
	}
	return repo
}

var errFakeNotFound = apperr.NotFound("Requested doc not found")

func (f *fakeRepository) List(_ context.Context, _ query.Spec) ([]User, error) {
	out := []User{}
	for _, user := range f.byID {
		if user.Active {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*User, error) {
	user, ok := f.byID[id]
	if !ok || !user.Active {
		return nil, errFakeNotFound
	}
	clone := *user
	clone.PasswordHash = ""
	return &clone, nil
}

func (f *fakeRepository) FindByEmailWithSecrets(_ context.Context, email string) (*User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, user := range f.byID {
		if user.Email == email && user.Active {
			clone := *user
			return &clone, nil
		}
	}
	return nil, errFakeNotFound
}

func (f *fakeRepository) FindByIDWithSecrets(_ context.Context, id string) (*User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	user, ok := f.byID[id]
	if !ok || !user.Active {
		return nil, errFakeNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeRepository) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, user := range f.byID {
		if user.Active && user.ResetTokenHash == tokenHash &&
			user.ResetTokenExpires != nil && user.ResetTokenExpires.After(now) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, errFakeNotFound
}

func (f *fakeRepository) Create(_ context.Context, user *User) error {
	for _, existing := range f.byID {
		if existing.Email == user.Email {
			return apperr.BadRequest("Duplicate field value: users_email_key. Please use another value!")
		}
	}
	clone := *user
	clone.Active = true
	f.byID[clone.ID] = &clone
	return nil
}

func (f *fakeRepository) UpdateProfile(_ context.Context, user *User) error {
	existing, ok := f.byID[user.ID]
	if !ok || !existing.Active {
		return errFakeNotFound
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.Photo = user.Photo
	existing.Role = user.Role
	return nil
}

func (f *fakeRepository) UpdateLoginState(_ context.Context, id string, attempts int, lockoutUntil *time.Time) error {
	user, ok := f.byID[id]
	if !ok {
		return errFakeNotFound
	}
	user.FailedLoginAttempts = attempts
	user.LockoutUntil = lockoutUntil
	return nil
}

func (f *fakeRepository) UpdatePassword(_ context.Context, id, newHash string, changedAt time.Time) error {
	user, ok := f.byID[id]
	if !ok {
		return errFakeNotFound
	}
	user.PasswordHash = newHash
	user.PasswordChangedAt = &changedAt
	user.ResetTokenHash = ""
	user.ResetTokenExpires = nil
	user.FailedLoginAttempts = 0
	user.LockoutUntil = nil
	return nil
}

func (f *fakeRepository) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	user, ok := f.byID[id]
	if !ok {
		return errFakeNotFound
	}
	user.ResetTokenHash = tokenHash
	user.ResetTokenExpires = &expires
	return nil
}

func (f *fakeRepository) ClearResetToken(_ context.Context, id string) error {
	user, ok := f.byID[id]
	if !ok {
		return errFakeNotFound
	}
	user.ResetTokenHash = ""
	user.ResetTokenExpires = nil
	return nil
}

func (f *fakeRepository) SoftDelete(_ context.Context, id string) error {
	user, ok := f.byID[id]
	if !ok || !user.Active {
		return errFakeNotFound
	}
	user.Active = false
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return apperr.NotFound("Could not perform the deletion. No document found with that ID")
	}
	delete(f.byID, id)
	return nil
}

// recordingMailer captures the reset URL instead of sending it.
type recordingMailer struct {
	lastURL string
	fail    bool
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, _, _, resetURL string) error {
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.lastURL = resetURL
	return nil
}

func newTestService(t *testing.T, repo *fakeRepository, mail *recordingMailer) *Service {
	t.Helper()
	tokens := sec.NewTokenService("test-secret", "trailforge.app", time.Hour)
	if mail == nil {
		mail = &recordingMailer{}
	}
	return NewService(repo, tokens, mail, 30*time.Minute)
}

func seedUser(t *testing.T, password string) *User {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	return &User{
		ID:           "u-1",
		Name:         "Ada",
		Email:        "ada@example.com",
		Role:         sec.RoleUser,
		PasswordHash: hash,
		Active:       true,
	}
}

func TestLogin_MissingFields(t *testing.T) {
	service := newTestService(t, newFakeRepository(), nil)

	_, err := service.Login(context.Background(), "", "pass")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)
}

func TestLogin_Success(t *testing.T) {
	repo := newFakeRepository(seedUser(t, "secret1"))
	service := newTestService(t, repo, nil)

	result, err := service.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "u-1", result.User.ID)
}

func TestLogin_LockoutAfterFiveFailures(t *testing.T) {
	repo := newFakeRepository(seedUser(t, "secret1"))
	service := newTestService(t, repo, nil)
	ctx := context.Background()

	for i := 0; i < maxFailedLoginAttempts; i++ {
		_, err := service.Login(ctx, "ada@example.com", "wrong")
		require.Error(t, err)
	}

	stored := repo.byID["u-1"]
	assert.Equal(t, maxFailedLoginAttempts, stored.FailedLoginAttempts)
	require.NotNil(t, stored.LockoutUntil)

	// Correct credentials are rejected while the window is open, and the
	// error reports the unlock time.
	_, err := service.Login(ctx, "ada@example.com", "secret1")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
	assert.Contains(t, appError.Message, "Account is locked")
}

func TestLogin_UnlocksAfterWindow(t *testing.T) {
	repo := newFakeRepository(seedUser(t, "secret1"))
	service := newTestService(t, repo, nil)
	ctx := context.Background()

	// Simulate an expired lockout window.
	past := time.Now().Add(-time.Minute)
	repo.byID["u-1"].FailedLoginAttempts = maxFailedLoginAttempts
	repo.byID["u-1"].LockoutUntil = &past

	result, err := service.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	// Success resets the counters.
	assert.Zero(t, repo.byID["u-1"].FailedLoginAttempts)
	assert.Nil(t, repo.byID["u-1"].LockoutUntil)
}

func TestLogin_UnknownEmailIsGeneric(t *testing.T) {
	service := newTestService(t, newFakeRepository(), nil)

	_, err := service.Login(context.Background(), "ghost@example.com", "whatever")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
	assert.NotContains(t, appError.Message, "email")
}

func TestLogin_StorageOutageIsNotBadCredentials(t *testing.T) {
	repo := newFakeRepository(seedUser(t, "secret1"))
	errOutage := errors.New("connection refused")
	repo.lookupErr = errOutage
	service := newTestService(t, repo, nil)

	// A failing lookup must surface as-is, never as the 401 that would
	// tell the caller their credentials were wrong.
	_, err := service.Login(context.Background(), "ada@example.com", "secret1")
	require.ErrorIs(t, err, errOutage)
	assert.Nil(t, apperr.As(err))
}

func TestResolveToken_StorageOutagePassesThrough(t *testing.T) {
	repo := newFakeRepository(seedUser(t, "secret1"))
	service := newTestService(t, repo, nil)
	ctx := context.Background()

	result, err := service.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	errOutage := errors.New("connection refused")
	repo.lookupErr = errOutage

	_, err = service.ResolveToken(ctx, result.Token)
	require.ErrorIs(t, err, errOutage)
}

func TestSignup_PasswordMismatch(t *testing.T) {
	service := newTestService(t, newFakeRepository(), nil)

	_, err := service.Signup(context.Background(), SignupInput{
		Name:            "Ada",
		Email:           "ada@example.com",
		Password:        "secret1",
		PasswordConfirm: "secret2",
	})
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)
}

func TestSignup_DefaultsRoleAndLogsIn(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(t, repo, nil)

	result, err := service.Signup(context.Background(), SignupInput{
		Name:            "Ada",
		Email:           "ada@example.com",
		Password:        "secret1",
		PasswordConfirm: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, result.User.Role)
	assert.NotEmpty(t, result.Token)

	// The stored hash is bcrypt, never the plaintext.
	stored := repo.byID[result.User.ID]
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("secret1", stored.PasswordHash))
}

func TestResolveToken_Flow(t *testing.T) {
	repo := newFakeRepository(seedUser(t, "secret1"))
	service := newTestService(t, repo, nil)
	ctx := context.Background()

	result, err := service.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	identity, err := service.ResolveToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.ID)
	assert.Equal(t, sec.RoleUser, identity.Role)
}

func TestResolveToken_StaleAfterPasswordChange(t *testing.T) {
	repo := newFakeRepository(seedUser(t, "secret1"))
	service := newTestService(t, repo, nil)
	ctx := context.Background()

	result, err := service.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	// Rotate the password after the token was issued.
	changed := time.Now().Add(time.Minute)
	repo.byID["u-1"].PasswordChangedAt = &changed

	_, err = service.ResolveToken(ctx, result.Token)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
	assert.Contains(t, appError.Message, "password was changed")
}

func TestResolveToken_DeletedUser(t *testing.T) {
	repo := newFakeRepository(seedUser(t, "secret1"))
	service := newTestService(t, repo, nil)
	ctx := context.Background()

	result, err := service.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, repo.SoftDelete(ctx, "u-1"))

	_, err = service.ResolveToken(ctx, result.Token)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
	assert.Contains(t, appError.Message, "no longer exists")
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	service := newTestService(t, newFakeRepository(), nil)

	err := service.ForgotPassword(context.Background(), "ghost@example.com", "http://localhost")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

func TestForgotPassword_StoresDigestNotPlaintext(t *testing.T) {
	repo := newFakeRepository(seedUser(t, "secret1"))
	mail := &recordingMailer{}
	service := newTestService(t, repo, mail)

	require.NoError(t, service.ForgotPassword(context.Background(), "ada@example.com", "http://localhost"))

	stored := repo.byID["u-1"]
	require.NotEmpty(t, stored.ResetTokenHash)
	require.NotNil(t, stored.ResetTokenExpires)

	// The emailed URL ends with the plaintext token whose digest is stored.
	parts := strings.Split(mail.lastURL, "/")
	plaintext := parts[len(parts)-1]
	assert.NotEqual(t, plaintext, stored.ResetTokenHash)
	assert.Equal(t, sec.HashToken(plaintext), stored.ResetTokenHash)
}

func TestForgotPassword_RollbackOnMailFailure(t *testing.T) {
	repo := newFakeRepository(seedUser(t, "secret1"))
	service := newTestService(t, repo, &recordingMailer{fail: true})

	err := service.ForgotPassword(context.Background(), "ada@example.com", "http://localhost")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 500, appError.HTTPStatus)

	// The unreachable token must not stay live.
	assert.Empty(t, repo.byID["u-1"].ResetTokenHash)
	assert.Nil(t, repo.byID["u-1"].ResetTokenExpires)
}

func TestResetPassword_SingleUse(t *testing.T) {
	repo := newFakeRepository(seedUser(t, "secret1"))
	mail := &recordingMailer{}
	service := newTestService(t, repo, mail)
	ctx := context.Background()

	require.NoError(t, service.ForgotPassword(ctx, "ada@example.com", "http://localhost"))
	parts := strings.Split(mail.lastURL, "/")
	plaintext := parts[len(parts)-1]

	result, err := service.ResetPassword(ctx, plaintext, "newpass1", "newpass1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	// Reset clears the token, the lockout state, and backdates the
	// password-change timestamp.
	stored := repo.byID["u-1"]
	assert.Empty(t, stored.ResetTokenHash)
	assert.True(t, sec.CheckPasswordHash("newpass1", stored.PasswordHash))
	require.NotNil(t, stored.PasswordChangedAt)
	assert.True(t, stored.PasswordChangedAt.Before(time.Now()))

	// A second use of the same token fails.
	_, err = service.ResetPassword(ctx, plaintext, "another1", "another1")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	repo := newFakeRepository(seedUser(t, "secret1"))
	service := newTestService(t, repo, nil)
	ctx := context.Background()

	expired := time.Now().Add(-time.Minute)
	repo.byID["u-1"].ResetTokenHash = sec.HashToken("plain-token")
	repo.byID["u-1"].ResetTokenExpires = &expired

	_, err := service.ResetPassword(ctx, "plain-token", "newpass1", "newpass1")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)
}

func TestUpdatePassword_WrongCurrent(t *testing.T) {
	repo := newFakeRepository(seedUser(t, "secret1"))
	service := newTestService(t, repo, nil)

	_, err := service.UpdatePassword(context.Background(), "u-1", "wrong", "newpass1", "newpass1")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 401, appError.HTTPStatus)
}

func TestUpdatePassword_IssuesFreshToken(t *testing.T) {
	repo := newFakeRepository(seedUser(t, "secret1"))
	service := newTestService(t, repo, nil)

	result, err := service.UpdatePassword(context.Background(), "u-1", "secret1", "newpass1", "newpass1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, sec.CheckPasswordHash("newpass1", repo.byID["u-1"].PasswordHash))
}
