// Copyright (c) 2026 Trailforge. All rights reserved.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kasunvp/trailforge/internal/platform/apperr"
	"github.com/kasunvp/trailforge/internal/platform/constants"
	"github.com/kasunvp/trailforge/internal/platform/ctxutil"
	"github.com/kasunvp/trailforge/internal/platform/respond"
	"github.com/kasunvp/trailforge/internal/platform/sec"
)

// IdentityResolver turns a bearer token into the live identity of its owner.
//
// # Why an interface?
//
// Resolution is more than signature verification: the owning account must
// still exist, be active, and not have rotated its password after the token
// was issued. That logic lives in the users service; defining the interface
// here keeps the middleware free of a dependency on that package and makes
// it trivial to mock in tests.
type IdentityResolver interface {
	ResolveToken(ctx context.Context, token string) (*sec.Identity, error)
}

// Protect blocks unauthenticated requests.
//
// # Flow
//  1. Extract the token from 'Authorization: Bearer <token>' or, failing
//     that, from the auth cookie.
//  2. If absent, abort with HTTP 401.
//  3. Resolve the token to a live identity via [IdentityResolver].
//  4. Inject [*sec.Identity] into the request context for downstream use.
func Protect(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			token := extractToken(request)
			if token == "" {
				respond.Error(writer, request, apperr.Unauthorized("Please login to continue."))
				return
			}

			identity, err := resolver.ResolveToken(request.Context(), token)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RestrictTo blocks authenticated requests whose role is not in the allowed set.
//
// # Usage
//
// Must be mounted AFTER [Protect]; an absent identity aborts with 401.
// Roles form no hierarchy here: each route names exactly the roles that may
// pass, so granting lead-guide access never implicitly grants admin routes.
func RestrictTo(allowed ...sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			identity := ctxutil.GetIdentity(request.Context())
			if identity == nil {
				respond.Error(writer, request, apperr.Unauthorized("Please login to continue."))
				return
			}

			if !identity.Role.In(allowed...) {
				respond.Error(writer, request, apperr.Forbidden("You do not have enough permission to perform this action"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// extractToken pulls the bearer token from the Authorization header, falling
// back to the HTTP-only auth cookie set at login. A header that carries no
// bearer token does not block the fallback: browser clients may send an
// unrelated Authorization value while authenticating through the cookie.
func extractToken(request *http.Request) string {
	if authHeader := request.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	if cookie, err := request.Cookie(constants.AuthCookieName); err == nil {
		return cookie.Value
	}

	return ""
}
