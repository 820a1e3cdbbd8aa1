// Copyright (c) 2026 Trailforge. All rights reserved.

package tours

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kasunvp/trailforge/internal/platform/apperr"
	"github.com/kasunvp/trailforge/internal/platform/crud"
	"github.com/kasunvp/trailforge/internal/platform/middleware"
	requestutil "github.com/kasunvp/trailforge/internal/platform/request"
	"github.com/kasunvp/trailforge/internal/platform/respond"
	"github.com/kasunvp/trailforge/internal/platform/sec"
)

// Handler implements the tour HTTP endpoints.
type Handler struct {
	service *Service
	crud    *crud.Handlers[Tour]
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
		crud:    crud.NewHandlers[Tour](service, "tourID"),
	}
}

// Routes returns the tour router. The reviews router mounts under
// /{tourID}/reviews so review listings and writes can scope to a tour.
//
// # Endpoints
//
// Public:
//   - GET /top-5-rated-cheapest
//   - GET /tour-stats
//   - GET /{tourID}
//   - GET /slug/{tourSlug}
//
// Authenticated:
//   - GET /
//   - GET /monthly-plan/{year}  (admin, lead-guide, guide)
//
// Staff (admin, lead-guide):
//   - POST /, PATCH /{tourID}, DELETE /{tourID}
func (handler *Handler) Routes(protect func(http.Handler) http.Handler, reviews chi.Router) chi.Router {
	router := chi.NewRouter()

	router.Get("/top-5-rated-cheapest", handler.topFiveRatedCheapest)
	router.Get("/tour-stats", handler.stats)
	router.Get("/slug/{tourSlug}", handler.getBySlug)
	router.Get("/{tourID}", handler.crud.GetOne)

	router.Group(func(protected chi.Router) {
		protected.Use(protect)

		protected.Get("/", handler.crud.GetAll)

		protected.With(middleware.RestrictTo(sec.RoleAdmin, sec.RoleLeadGuide, sec.RoleGuide)).
			Get("/monthly-plan/{year}", handler.monthlyPlan)

		protected.Group(func(staff chi.Router) {
			staff.Use(middleware.RestrictTo(sec.RoleAdmin, sec.RoleLeadGuide))

			staff.Post("/", handler.crud.CreateOne)
			staff.Patch("/{tourID}", handler.crud.UpdateOne)
			staff.Delete("/{tourID}", handler.crud.DeleteOne)
		})
	})

	router.Mount("/{tourID}/reviews", reviews)

	return router
}

// topFiveRatedCheapest handles GET /api/v1/tours/top-5-rated-cheapest.
//
// It is a canned listing: the query features are preset to the five
// best-rated tours, cheapest first, trimmed to the card fields. Presets
// overwrite whatever the client sent.
func (handler *Handler) topFiveRatedCheapest(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()
	values.Set("limit", "5")
	values.Set("page", "1")
	values.Set("sort", "-ratingsAverage,price")
	values.Set("fields", "name,price,ratingsAverage,difficulty,summary")
	request.URL.RawQuery = values.Encode()

	handler.crud.GetAll(writer, request)
}

// stats handles GET /api/v1/tours/tour-stats.
func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.service.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}

// monthlyPlan handles GET /api/v1/tours/monthly-plan/{year}.
func (handler *Handler) monthlyPlan(writer http.ResponseWriter, request *http.Request) {
	year, err := strconv.Atoi(requestutil.Param(request, "year"))
	if err != nil || year < 1 {
		respond.Error(writer, request, apperr.BadRequest("Please provide a valid year"))
		return
	}

	plan, err := handler.service.MonthlyPlan(request.Context(), year)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, plan)
}

// getBySlug handles GET /api/v1/tours/slug/{tourSlug}.
func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	tour, err := handler.service.GetBySlug(request.Context(), requestutil.Param(request, "tourSlug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tour)
}
