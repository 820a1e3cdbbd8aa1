// Copyright (c) 2026 Trailforge. All rights reserved.

// Package api assembles the HTTP surface: the middleware chain, the
// versioned route tree, and the health probes.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kasunvp/trailforge/internal/platform/apperr"
	"github.com/kasunvp/trailforge/internal/platform/config"
	"github.com/kasunvp/trailforge/internal/platform/middleware"
	"github.com/kasunvp/trailforge/internal/platform/respond"
	"github.com/kasunvp/trailforge/internal/reviews"
	"github.com/kasunvp/trailforge/internal/tours"
	"github.com/kasunvp/trailforge/internal/users"
)

// Server owns the assembled HTTP handler tree.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
	cache  *goredis.Client

	users   *users.Handler
	tours   *tours.Handler
	reviews *reviews.Handler
	protect func(http.Handler) http.Handler
}

// NewServer wires the handlers into a [Server]. The resolver is the user
// service: token verification needs the live account state.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	pool *pgxpool.Pool,
	cache *goredis.Client,
	usersHandler *users.Handler,
	toursHandler *tours.Handler,
	reviewsHandler *reviews.Handler,
	resolver middleware.IdentityResolver,
) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		pool:    pool,
		cache:   cache,
		users:   usersHandler,
		tours:   toursHandler,
		reviews: reviewsHandler,
		protect: middleware.Protect(resolver),
	}
}

// Router builds the full middleware chain and route tree.
//
// appCtx bounds the rate limiter's cleanup goroutine: it stops when the
// application context is cancelled.
func (server *Server) Router(appCtx context.Context) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(server.logger))
	router.Use(middleware.PanicRecovery(server.logger))
	router.Use(middleware.RateLimit(appCtx))
	router.Use(middleware.CORS(server.cfg))

	router.Get("/health", server.health)
	router.Get("/ready", server.ready)

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Mount("/users", server.users.Routes(server.protect))
		v1.Mount("/tours", server.tours.Routes(server.protect, server.reviews.Routes(server.protect)))
		v1.Mount("/reviews", server.reviews.Routes(server.protect))
	})

	router.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFound("Can't find "+request.URL.Path+" on this server!"))
	})

	return router
}
