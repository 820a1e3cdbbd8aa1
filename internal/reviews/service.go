// Copyright (c) 2026 Trailforge. All rights reserved.

package reviews

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kasunvp/trailforge/internal/platform/apperr"
	"github.com/kasunvp/trailforge/internal/platform/ctxutil"
	"github.com/kasunvp/trailforge/internal/platform/sec"
	"github.com/kasunvp/trailforge/internal/platform/validate"
	"github.com/kasunvp/trailforge/pkg/query"
	"github.com/kasunvp/trailforge/pkg/uuidv7"
)

// Service implements the review use cases.
type Service struct {
	repository Repository
}

// NewService constructs a [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// List returns reviews through the query-feature pipeline. The nested
// tour router scopes the listing via a prepended tour filter.
func (service *Service) List(ctx context.Context, spec query.Spec) ([]Review, error) {
	return service.repository.List(ctx, spec)
}

// Get returns a single review with its author expanded.
func (service *Service) Get(ctx context.Context, id string) (Review, error) {
	review, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return Review{}, err
	}
	return *review, nil
}

// Create validates and persists a new review, then refreshes the tour's
// denormalized rating columns.
func (service *Service) Create(ctx context.Context, review Review) (Review, error) {
	review.ID = uuidv7.New()

	if err := validateReview(&review); err != nil {
		return Review{}, err
	}

	if err := service.repository.Create(ctx, &review); err != nil {
		return Review{}, err
	}
	if err := service.repository.RecalculateTourRatings(ctx, review.TourID); err != nil {
		return Review{}, err
	}

	created, err := service.repository.FindByID(ctx, review.ID)
	if err != nil {
		return Review{}, err
	}
	return *created, nil
}

// Update patches the text and rating of an existing review. The tour and
// author references are pinned to the stored row.
func (service *Service) Update(ctx context.Context, id string, patch json.RawMessage) (Review, error) {
	review, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return Review{}, err
	}
	if err := authorizeWrite(ctx, review); err != nil {
		return Review{}, err
	}
	pinnedTour, pinnedUser := review.TourID, review.User

	if err := json.Unmarshal(patch, review); err != nil {
		return Review{}, validate.ErrInvalidJSON
	}
	review.ID = id
	review.TourID = pinnedTour
	review.User = pinnedUser

	if err := validateReview(review); err != nil {
		return Review{}, err
	}

	if err := service.repository.Update(ctx, review); err != nil {
		return Review{}, err
	}
	if err := service.repository.RecalculateTourRatings(ctx, review.TourID); err != nil {
		return Review{}, err
	}

	return *review, nil
}

// Delete removes a review and refreshes the tour's rating columns.
func (service *Service) Delete(ctx context.Context, id string) error {
	review, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeWrite(ctx, review); err != nil {
		return err
	}

	if err := service.repository.Delete(ctx, id); err != nil {
		return err
	}
	return service.repository.RecalculateTourRatings(ctx, review.TourID)
}

// authorizeWrite lets a review be edited by its author or an admin.
// The route-level role gate has already run; this pins non-admin writes
// to the caller's own reviews.
func authorizeWrite(ctx context.Context, review *Review) error {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil {
		return nil // internal callers (seeding, maintenance)
	}
	if identity.Role == sec.RoleAdmin || identity.ID == review.User.ID {
		return nil
	}
	return apperr.Forbidden("You do not have enough permission to perform this action")
}

// validateReview checks the full review document.
func validateReview(review *Review) error {
	return validate.New().
		Custom("review", strings.TrimSpace(review.Review) == "", "Review can not be empty").
		Range("rating", review.Rating, 1, 5).
		Custom("tour", review.TourID == "", "Review must belong to a tour.").
		Custom("user", review.User.ID == "", "Review must belong to a user.").
		Err()
}
