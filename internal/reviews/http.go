// Copyright (c) 2026 Trailforge. All rights reserved.

package reviews

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kasunvp/trailforge/internal/platform/crud"
	"github.com/kasunvp/trailforge/internal/platform/middleware"
	requestutil "github.com/kasunvp/trailforge/internal/platform/request"
	"github.com/kasunvp/trailforge/internal/platform/sec"
	"github.com/kasunvp/trailforge/pkg/query"
)

// Handler implements the review HTTP endpoints.
type Handler struct {
	service *Service
	crud    *crud.Handlers[Review]
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
		crud: crud.NewHandlers[Review](service, "reviewID",
			crud.WithScope[Review](scopeToTour),
			crud.WithPrepare[Review](defaultRefs),
		),
	}
}

// Routes returns the review router. It mounts twice: flat under
// /api/v1/reviews and nested under /api/v1/tours/{tourID}/reviews, where
// the tourID parameter scopes listings and defaults the tour on create.
//
// Every endpoint requires authentication. Only plain users write reviews;
// users and admins may edit or delete them.
func (handler *Handler) Routes(protect func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()
	router.Use(protect)

	router.Get("/", handler.crud.GetAll)
	router.With(middleware.RestrictTo(sec.RoleUser)).Post("/", handler.crud.CreateOne)

	router.Get("/{reviewID}", handler.crud.GetOne)
	router.Group(func(owners chi.Router) {
		owners.Use(middleware.RestrictTo(sec.RoleUser, sec.RoleAdmin))

		owners.Patch("/{reviewID}", handler.crud.UpdateOne)
		owners.Delete("/{reviewID}", handler.crud.DeleteOne)
	})

	return router
}

// scopeToTour narrows listings to one tour when reached through the
// nested router.
func scopeToTour(request *http.Request) []query.Filter {
	tourID := requestutil.Param(request, "tourID")
	if tourID == "" {
		return nil
	}
	return []query.Filter{{Field: "tour", Op: query.OpEq, Value: tourID}}
}

// defaultRefs fills in the tour from the nested route and the author from
// the authenticated caller when the payload leaves them out.
func defaultRefs(request *http.Request, review *Review) error {
	if review.TourID == "" {
		review.TourID = requestutil.Param(request, "tourID")
	}
	if review.User.ID == "" {
		userID, err := requestutil.RequiredUserID(request)
		if err != nil {
			return err
		}
		review.User = AuthorRef{ID: userID}
	}
	return nil
}
