// Copyright (c) 2026 Trailforge. All rights reserved.

package users

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kasunvp/trailforge/internal/platform/constants"
	"github.com/kasunvp/trailforge/internal/platform/crud"
	"github.com/kasunvp/trailforge/internal/platform/middleware"
	requestutil "github.com/kasunvp/trailforge/internal/platform/request"
	"github.com/kasunvp/trailforge/internal/platform/respond"
	"github.com/kasunvp/trailforge/internal/platform/sec"
)

// Handler implements the user-facing HTTP endpoints: authentication,
// self-service profile, and the admin CRUD.
type Handler struct {
	service      *Service
	crud         *crud.Handlers[User]
	cookieTTL    time.Duration
	secureCookie bool
}

// NewHandler constructs a [Handler].
//
// cookieTTL controls the auth cookie lifetime; secureCookie should be set
// in production so the cookie only travels over HTTPS.
func NewHandler(service *Service, cookieTTL time.Duration, secureCookie bool) *Handler {
	return &Handler{
		service:      service,
		crud:         crud.NewHandlers[User](service, "userID"),
		cookieTTL:    cookieTTL,
		secureCookie: secureCookie,
	}
}

// Routes returns the user router.
//
// # Endpoints
//
// Public:
//   - POST  /signup
//   - POST  /login
//   - POST  /forgotPassword
//   - PATCH /resetPassword/{token}
//
// Authenticated:
//   - PATCH  /updatePassword
//   - GET    /me
//   - PATCH  /updateMe
//   - DELETE /deleteMe
//
// Admin only:
//   - GET /, GET /{userID}, PATCH /{userID}, DELETE /{userID}
func (handler *Handler) Routes(protect func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Post("/forgotPassword", handler.forgotPassword)
	router.Patch("/resetPassword/{token}", handler.resetPassword)

	router.Group(func(protected chi.Router) {
		protected.Use(protect)

		protected.Patch("/updatePassword", handler.updatePassword)
		protected.Get("/me", handler.getMe)
		protected.Patch("/updateMe", handler.updateMe)
		protected.Delete("/deleteMe", handler.deleteMe)

		protected.Group(func(admin chi.Router) {
			admin.Use(middleware.RestrictTo(sec.RoleAdmin))

			admin.Get("/", handler.crud.GetAll)
			admin.Get("/{userID}", handler.crud.GetOne)
			admin.Patch("/{userID}", handler.crud.UpdateOne)
			admin.Delete("/{userID}", handler.crud.DeleteOne)
		})
	})

	return router
}

// # Authentication Endpoints

// signupRequest is the JSON payload for account creation.
type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	Photo           string `json:"photo"`
	Role            string `json:"role"`
}

// signup handles POST /api/v1/users/signup.
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Signup(request.Context(), SignupInput{
		Name:            input.Name,
		Email:           input.Email,
		Password:        input.Password,
		PasswordConfirm: input.PasswordConfirm,
		Photo:           input.Photo,
		Role:            input.Role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.sendToken(writer, http.StatusCreated, result)
}

// loginRequest is the JSON payload for authentication.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login handles POST /api/v1/users/login.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.sendToken(writer, http.StatusOK, result)
}

// forgotPassword handles POST /api/v1/users/forgotPassword.
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ForgotPassword(request.Context(), input.Email, baseURL(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"message": "Token sent to the email"})
}

// passwordPair carries a new password and its confirmation.
type passwordPair struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// resetPassword handles PATCH /api/v1/users/resetPassword/{token}.
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input passwordPair
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token := requestutil.Param(request, "token")
	result, err := handler.service.ResetPassword(request.Context(), token, input.Password, input.PasswordConfirm)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.sendToken(writer, http.StatusOK, result)
}

// updatePasswordRequest adds the current-password check to a password pair.
type updatePasswordRequest struct {
	CurrPassword    string `json:"currPassword"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// updatePassword handles PATCH /api/v1/users/updatePassword.
func (handler *Handler) updatePassword(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updatePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.UpdatePassword(request.Context(), identity.ID, input.CurrPassword, input.Password, input.PasswordConfirm)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.sendToken(writer, http.StatusOK, result)
}

// # Profile Endpoints

// getMe handles GET /api/v1/users/me.
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.GetMe(request.Context(), identity.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// updateMe handles PATCH /api/v1/users/updateMe.
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	patch, err := requestutil.ReadJSON(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.UpdateMe(request.Context(), identity.ID, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// deleteMe handles DELETE /api/v1/users/deleteMe.
func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteMe(request.Context(), identity.ID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Helpers

// sendToken writes the auth cookie and the token-bearing success envelope.
//
// The cookie is HTTP-only so injected scripts cannot read the token; the
// body copy serves API clients that prefer the Authorization header.
func (handler *Handler) sendToken(writer http.ResponseWriter, statusCode int, result *AuthResult) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AuthCookieName,
		Value:    result.Token,
		Expires:  time.Now().Add(handler.cookieTTL),
		HttpOnly: true,
		Secure:   handler.secureCookie,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})

	respond.JSON(writer, statusCode, map[string]any{
		"status": "success",
		"data":   result.User,
		"token":  result.Token,
	})
}

// baseURL reconstructs the external scheme://host for reset links.
func baseURL(request *http.Request) string {
	scheme := "http"
	if request.TLS != nil || request.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + request.Host
}
