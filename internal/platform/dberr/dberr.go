// Copyright (c) 2026 Trailforge. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kasunvp/trailforge/internal/platform/apperr"
)

// ErrNotFound is a standard error returned when a queried row doesn't exist.
var ErrNotFound = apperr.NotFound("Resource not found")

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the
// error type.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. SQLSTATE classification
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			// Duplicates surface as 400, matching the API error convention.
			return apperr.BadRequest(fmt.Sprintf("Duplicate field value: %s. Please use another value!", pgErr.ConstraintName))
		case pgerrcode.InvalidTextRepresentation:
			// Malformed UUIDs and enum values fall here.
			return apperr.BadRequest("Invalid value supplied for a field")
		case pgerrcode.ForeignKeyViolation:
			return apperr.BadRequest("Referenced resource does not exist")
		}
	}

	// 3. Client-side encode failures. pgx encodes parameters before they
	// reach the server under the extended protocol, so a value that cannot
	// be coerced to its column type (a malformed UUID in a filter, say)
	// fails without a SQLSTATE. The driver exposes no typed error here.
	if strings.Contains(err.Error(), "unable to encode") {
		return apperr.BadRequest("Invalid value supplied for a field")
	}

	// 4. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// IsNotFound reports whether err is a missing-row error: either the raw
// driver sentinel or an already-classified 404.
func IsNotFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	if appError := apperr.As(err); appError != nil {
		return appError.HTTPStatus == http.StatusNotFound
	}
	return false
}

// WrapNotFound behaves like [Wrap] but replaces the generic not-found error
// with a resource-specific message.
func WrapNotFound(err error, message string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(message)
	}
	return Wrap(err)
}
