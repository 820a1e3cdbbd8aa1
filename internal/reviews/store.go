// Copyright (c) 2026 Trailforge. All rights reserved.

package reviews

import (
	"context"

	"github.com/kasunvp/trailforge/pkg/query"
)

// Repository is the review persistence contract. Reads join the author's
// public columns.
type Repository interface {
	List(ctx context.Context, spec query.Spec) ([]Review, error)
	FindByID(ctx context.Context, id string) (*Review, error)
	Create(ctx context.Context, review *Review) error
	Update(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id string) error

	// RecalculateTourRatings refreshes the denormalized rating columns on
	// the reviewed tour after any write.
	RecalculateTourRatings(ctx context.Context, tourID string) error
}
