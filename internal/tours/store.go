// Copyright (c) 2026 Trailforge. All rights reserved.

package tours

import (
	"context"

	"github.com/kasunvp/trailforge/pkg/query"
)

// DifficultyStat is one row of the per-difficulty aggregation.
type DifficultyStat struct {
	Difficulty string  `json:"difficulty"`
	TotalTours int     `json:"totalTours"`
	NumRatings int     `json:"numRatings"`
	AvgRating  float64 `json:"avgRating"`
	AvgPrice   float64 `json:"avgPrice"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
}

// MonthlyPlanEntry is one month of the yearly departure plan, busiest
// month first.
type MonthlyPlanEntry struct {
	Month           int      `json:"month"`
	NumOfTourStarts int      `json:"numOfTourStarts"`
	Tours           []string `json:"tours"`
}

// Repository is the tour persistence contract. Every read excludes
// secret tours.
type Repository interface {
	List(ctx context.Context, spec query.Spec) ([]Tour, error)
	FindByID(ctx context.Context, id string) (*Tour, error)
	FindBySlug(ctx context.Context, slug string) (*Tour, error)
	Create(ctx context.Context, tour *Tour) error
	Update(ctx context.Context, tour *Tour) error
	Delete(ctx context.Context, id string) error

	Stats(ctx context.Context) ([]DifficultyStat, error)
	MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, error)
}
