// Copyright (c) 2026 Trailforge. All rights reserved.

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Every response across the application follows one envelope structure:
//
//	success: {"status": "success", "data": ...}
//	list:    {"status": "success", "totalDocs": N, "data": [...]}
//	failure: {"status": "fail"|"error", "msg": "..."}
//
// In development mode failure responses additionally carry the raw error
// and a stack trace; production reduces unexpected errors to a generic 500.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/kasunvp/trailforge/internal/platform/apperr"
	"github.com/kasunvp/trailforge/internal/platform/ctxutil"
)

// development toggles verbose error payloads. Set once at startup, before
// the server accepts traffic, and read-only afterwards.
var development bool

// Init configures the package for the current environment.
func Init(isDevelopment bool) {
	development = isDevelopment
}

// SuccessEnvelope is the JSON envelope for successful single-resource responses.
type SuccessEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// ListEnvelope is the JSON envelope for list responses.
type ListEnvelope struct {
	Status    string `json:"status"`
	TotalDocs int    `json:"totalDocs"`
	Data      any    `json:"data"`
}

// ErrorEnvelope is the JSON envelope for failure responses.
type ErrorEnvelope struct {
	Status  string              `json:"status"`
	Message string              `json:"msg"`
	Details []apperr.FieldError `json:"details,omitempty"`

	// Development-only diagnostics.
	Error string `json:"error,omitempty"`
	Stack string `json:"stack,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard success envelope.
func OK(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Status: "success", Data: data})
}

// Created writes a 201 Created response with data wrapped in the standard success envelope.
func Created(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{Status: "success", Data: data})
}

// List writes a 200 OK response with the list envelope. The document count
// is the number of items in this page, matching the API contract.
func List(writer http.ResponseWriter, data any, totalDocs int) {
	JSON(writer, http.StatusOK, ListEnvelope{Status: "success", TotalDocs: totalDocs, Data: data})
}

// NoContent writes a 204 No Content response.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// Error converts any Go error into a standardized JSON API error response.
//
// Operational errors ([*apperr.AppError]) surface their message verbatim.
// Anything else is an unexpected error: logged with full detail server-side
// and reduced to a generic 500 envelope unless running in development.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "unexpected_error",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// 5xx causes always get logged; they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	envelope := ErrorEnvelope{
		Status:  appError.Status,
		Message: appError.Message,
		Details: appError.Details,
	}

	if development {
		envelope.Error = err.Error()
		if appError.Cause != nil {
			envelope.Error = appError.Cause.Error()
		}
		envelope.Stack = string(debug.Stack())
	}

	JSON(writer, appError.HTTPStatus, envelope)
}
