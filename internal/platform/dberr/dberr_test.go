// Copyright (c) 2026 Trailforge. All rights reserved.

package dberr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasunvp/trailforge/internal/platform/apperr"
	"github.com/kasunvp/trailforge/internal/platform/dberr"
)

func wrapped(t *testing.T, err error) *apperr.AppError {
	t.Helper()
	appError := apperr.As(dberr.Wrap(err))
	require.NotNil(t, appError)
	return appError
}

func TestWrap_NoRows(t *testing.T) {
	appError := wrapped(t, pgx.ErrNoRows)
	assert.Equal(t, http.StatusNotFound, appError.HTTPStatus)
}

func TestWrap_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}

	appError := wrapped(t, pgErr)
	assert.Equal(t, http.StatusBadRequest, appError.HTTPStatus)
	assert.Contains(t, appError.Message, "users_email_key")
}

func TestWrap_ClientSideEncodeFailure(t *testing.T) {
	// pgx rejects a value it cannot coerce to the parameter's type before
	// the query reaches the server, so no SQLSTATE is available. The
	// classification goes by message and must still yield a 400.
	encodeErr := fmt.Errorf("failed to encode args[0]: %w",
		errors.New(`unable to encode "abc" into binary format for uuid (OID 2950)`))

	appError := wrapped(t, encodeErr)
	assert.Equal(t, http.StatusBadRequest, appError.HTTPStatus)
	assert.Equal(t, "Invalid value supplied for a field", appError.Message)
}

func TestWrap_UnknownErrorIsInternal(t *testing.T) {
	cause := errors.New("connection refused")

	appError := wrapped(t, cause)
	assert.Equal(t, http.StatusInternalServerError, appError.HTTPStatus)
	assert.ErrorIs(t, appError, cause)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, dberr.IsNotFound(pgx.ErrNoRows))
	assert.True(t, dberr.IsNotFound(apperr.NotFound("Requested doc not found")))
	assert.True(t, dberr.IsNotFound(dberr.Wrap(pgx.ErrNoRows)))

	assert.False(t, dberr.IsNotFound(apperr.BadRequest("Invalid value supplied for a field")))
	assert.False(t, dberr.IsNotFound(errors.New("connection refused")))
	assert.False(t, dberr.IsNotFound(nil))
}
