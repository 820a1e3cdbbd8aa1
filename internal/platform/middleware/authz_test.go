// Copyright (c) 2026 Trailforge. All rights reserved.

package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasunvp/trailforge/internal/platform/constants"
	"github.com/kasunvp/trailforge/internal/platform/ctxutil"
	"github.com/kasunvp/trailforge/internal/platform/middleware"
	"github.com/kasunvp/trailforge/internal/platform/sec"
)

// fakeResolver records the token it was asked to resolve.
type fakeResolver struct {
	lastToken string
	identity  *sec.Identity
}

func (f *fakeResolver) ResolveToken(_ context.Context, token string) (*sec.Identity, error) {
	f.lastToken = token
	return f.identity, nil
}

func protectedHandler(t *testing.T, resolver *fakeResolver) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.NotNil(t, ctxutil.GetIdentity(request.Context()))
		writer.WriteHeader(http.StatusOK)
	})
	return middleware.Protect(resolver)(next)
}

func TestProtect_BearerHeader(t *testing.T) {
	resolver := &fakeResolver{identity: &sec.Identity{ID: "u-1", Role: sec.RoleUser}}
	handler := protectedHandler(t, resolver)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer header-token")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "header-token", resolver.lastToken)
}

func TestProtect_CookieFallbackOnMalformedHeader(t *testing.T) {
	resolver := &fakeResolver{identity: &sec.Identity{ID: "u-1", Role: sec.RoleUser}}
	handler := protectedHandler(t, resolver)

	// An Authorization header that carries no bearer token must not block
	// cookie authentication.
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	request.AddCookie(&http.Cookie{Name: constants.AuthCookieName, Value: "cookie-token"})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "cookie-token", resolver.lastToken)
}

func TestProtect_NoToken(t *testing.T) {
	resolver := &fakeResolver{identity: &sec.Identity{ID: "u-1", Role: sec.RoleUser}}
	handler := protectedHandler(t, resolver)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	var envelope struct {
		Status string `json:"status"`
		Msg    string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "fail", envelope.Status)
	assert.Equal(t, "Please login to continue.", envelope.Msg)
}
