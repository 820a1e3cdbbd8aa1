// Copyright (c) 2026 Trailforge. All rights reserved.

package tours

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/kasunvp/trailforge/internal/platform/validate"
	"github.com/kasunvp/trailforge/pkg/query"
	"github.com/kasunvp/trailforge/pkg/slug"
	"github.com/kasunvp/trailforge/pkg/uuidv7"
)

// tourNamePattern restricts tour names to letters and spaces.
var tourNamePattern = regexp.MustCompile(`^[A-Za-z\s]+$`)

// defaultRatingsAverage seeds a tour that has no reviews yet.
const defaultRatingsAverage = 4.5

// Service implements the tour catalog use cases.
type Service struct {
	repository Repository
	cache      *Cache
}

// NewService constructs a [Service]. The cache may be nil, in which case
// aggregations always hit the database.
func NewService(repository Repository, cache *Cache) *Service {
	return &Service{repository: repository, cache: cache}
}

// # CRUD (crud.Service[Tour])

// List returns non-secret tours through the query-feature pipeline.
func (service *Service) List(ctx context.Context, spec query.Spec) ([]Tour, error) {
	items, err := service.repository.List(ctx, spec)
	if err != nil {
		return nil, err
	}
	for i := range items {
		decorate(&items[i])
	}
	return items, nil
}

// Get returns a single tour with guides and reviews expanded.
func (service *Service) Get(ctx context.Context, id string) (Tour, error) {
	tour, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return Tour{}, err
	}
	decorate(tour)
	return *tour, nil
}

// GetBySlug returns a single tour by its URL slug, expanded like [Get].
func (service *Service) GetBySlug(ctx context.Context, tourSlug string) (*Tour, error) {
	tour, err := service.repository.FindBySlug(ctx, tourSlug)
	if err != nil {
		return nil, err
	}
	decorate(tour)
	return tour, nil
}

// Create validates and persists a new tour. The slug is derived from the
// name; a client-provided slug is discarded.
func (service *Service) Create(ctx context.Context, tour Tour) (Tour, error) {
	tour.ID = uuidv7.New()
	tour.Slug = slug.From(tour.Name)

	// Rating aggregates are derived from reviews, never client-set.
	tour.RatingsAverage = defaultRatingsAverage
	tour.RatingsQuantity = 0

	if err := validateTour(&tour); err != nil {
		return Tour{}, err
	}

	if err := service.repository.Create(ctx, &tour); err != nil {
		return Tour{}, err
	}
	service.invalidate(ctx)

	decorate(&tour)
	return tour, nil
}

// Update applies a partial patch over the stored tour. The slug tracks
// the (possibly patched) name.
func (service *Service) Update(ctx context.Context, id string, patch json.RawMessage) (Tour, error) {
	tour, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return Tour{}, err
	}

	pinnedAverage, pinnedQuantity := tour.RatingsAverage, tour.RatingsQuantity

	if err := json.Unmarshal(patch, tour); err != nil {
		return Tour{}, validate.ErrInvalidJSON
	}
	tour.ID = id
	tour.Slug = slug.From(tour.Name)
	tour.RatingsAverage = pinnedAverage
	tour.RatingsQuantity = pinnedQuantity

	if err := validateTour(tour); err != nil {
		return Tour{}, err
	}

	if err := service.repository.Update(ctx, tour); err != nil {
		return Tour{}, err
	}
	service.invalidate(ctx)

	decorate(tour)
	return *tour, nil
}

// Delete removes a tour and its reviews.
func (service *Service) Delete(ctx context.Context, id string) error {
	if err := service.repository.Delete(ctx, id); err != nil {
		return err
	}
	service.invalidate(ctx)
	return nil
}

// # Aggregations

// Stats returns the per-difficulty aggregation, cache first.
func (service *Service) Stats(ctx context.Context) ([]DifficultyStat, error) {
	if service.cache != nil {
		if stats, ok := service.cache.GetStats(ctx); ok {
			return stats, nil
		}
	}

	stats, err := service.repository.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if service.cache != nil {
		service.cache.SetStats(ctx, stats)
	}
	return stats, nil
}

// MonthlyPlan returns per-month departure counts for a year, cache first.
func (service *Service) MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, error) {
	if service.cache != nil {
		if plan, ok := service.cache.GetMonthlyPlan(ctx, year); ok {
			return plan, nil
		}
	}

	plan, err := service.repository.MonthlyPlan(ctx, year)
	if err != nil {
		return nil, err
	}

	if service.cache != nil {
		service.cache.SetMonthlyPlan(ctx, year, plan)
	}
	return plan, nil
}

func (service *Service) invalidate(ctx context.Context) {
	if service.cache != nil {
		service.cache.Invalidate(ctx)
	}
}

// decorate fills in the derived fields on a tour read from storage.
func decorate(tour *Tour) {
	tour.FormattedDuration = FormatDuration(tour.Duration)
}

// validateTour checks the full tour document against the catalog rules.
func validateTour(tour *Tour) error {
	validator := validate.New().
		Required("name", tour.Name).
		MinLen("name", tour.Name, 3).
		MaxLen("name", tour.Name, 30).
		Matches("name", tour.Name, tourNamePattern, "Tour name can contain only letters and spaces").
		Min("price", tour.Price, 0).
		Custom("price", tour.Price == 0, "A tour must have a price").
		OneOf("difficulty", tour.Difficulty, Difficulties...).
		Range("duration", tour.Duration, 1, 30).
		Custom("maxGroupSize", tour.MaxGroupSize < 1, "A tour must have a group size").
		Required("summary", tour.Summary).
		Required("imageCover", tour.ImageCover).
		Custom("priceDiscount", tour.PriceDiscount != 0 && tour.PriceDiscount >= tour.Price,
			"The discount price must be lower than the actual price")

	if tour.Description != "" {
		validator.MinLen("description", tour.Description, 20)
	}
	for _, location := range tour.Locations {
		validator.Custom("locations", len(location.Coordinates) != 2,
			"A location needs [longitude, latitude] coordinates")
	}
	if tour.StartLocation != nil {
		validator.Custom("startLocation", len(tour.StartLocation.Coordinates) != 2,
			"A location needs [longitude, latitude] coordinates")
	}

	return validator.Err()
}
