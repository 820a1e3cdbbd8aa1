// Copyright (c) 2026 Trailforge. All rights reserved.

package reviews

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kasunvp/trailforge/internal/platform/dberr"
	"github.com/kasunvp/trailforge/pkg/query"
)

// Schema is the query-feature whitelist for review listings. "tour" and
// "user" filter on the reference columns so the nested router can scope.
var Schema = query.Schema{
	ID: "r.id",
	Columns: map[string]string{
		"rating":    "r.rating",
		"tour":      "r.tour_id",
		"user":      "r.user_id",
		"createdAt": "r.created_at",
	},
	DefaultSort: "r.created_at DESC",
}

// reviewColumns joins the author's public columns into every read.
const reviewColumns = `r.id, r.review, r.rating, r.tour_id, r.created_at, r.updated_at,
	u.id, u.name, u.photo`

const reviewFrom = " FROM reviews r JOIN users u ON u.id = r.user_id"

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the PostgreSQL implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns reviews shaped by the request's query features.
func (repository *PostgresRepository) List(ctx context.Context, spec query.Spec) ([]Review, error) {
	baseQuery := "SELECT " + reviewColumns + reviewFrom + " WHERE u.active = TRUE"

	whereSQL, args := Schema.Where(spec, 1)
	limitSQL, limitArgs := Schema.LimitOffset(spec, len(args)+1)
	sql := baseQuery + whereSQL + Schema.OrderBy(spec) + limitSQL
	args = append(args, limitArgs...)

	rows, err := repository.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("reviews_list_failed: %w", err))
	}
	defer rows.Close()

	result := []Review{}
	for rows.Next() {
		var review Review
		if err := scanReview(rows, &review); err != nil {
			return nil, dberr.Wrap(fmt.Errorf("reviews_list_scan_failed: %w", err))
		}
		result = append(result, review)
	}

	return result, rows.Err()
}

// FindByID loads one review with its author.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Review, error) {
	const sql = "SELECT " + reviewColumns + reviewFrom + " WHERE r.id = $1"

	review := &Review{}
	if err := scanReview(repository.pool.QueryRow(ctx, sql, id), review); err != nil {
		return nil, dberr.WrapNotFound(err, "Requested doc not found")
	}

	return review, nil
}

// Create persists a new review row. The unique (tour_id, user_id) pair
// rejects a second review of the same tour by the same user.
func (repository *PostgresRepository) Create(ctx context.Context, review *Review) error {
	const sql = `
		INSERT INTO reviews (id, review, rating, tour_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, sql,
		review.ID,
		review.Review,
		review.Rating,
		review.TourID,
		review.User.ID,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err)
	}

	return nil
}

// Update persists the mutable columns: the text and the rating. The tour
// and author references never move.
func (repository *PostgresRepository) Update(ctx context.Context, review *Review) error {
	const sql = "UPDATE reviews SET review = $2, rating = $3, updated_at = $4 WHERE id = $1"

	review.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, sql, review.ID, review.Review, review.Rating, review.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.WrapNotFound(pgx.ErrNoRows, "Requested document not found")
	}

	return nil
}

// Delete removes a review row.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	const sql = "DELETE FROM reviews WHERE id = $1"

	tag, err := repository.pool.Exec(ctx, sql, id)
	if err != nil {
		return dberr.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.WrapNotFound(pgx.ErrNoRows, "Could not perform the deletion. No document found with that ID")
	}
	return nil
}

// RecalculateTourRatings rewrites the reviewed tour's denormalized rating
// columns from the surviving reviews. A tour with no reviews falls back
// to zero quantity and the neutral default average.
func (repository *PostgresRepository) RecalculateTourRatings(ctx context.Context, tourID string) error {
	const sql = `
		UPDATE tours
		SET ratings_quantity = stats.quantity,
		    ratings_average = stats.average
		FROM (
			SELECT COUNT(*) AS quantity,
			       COALESCE(ROUND(AVG(rating)::numeric, 1), 4.5) AS average
			FROM reviews
			WHERE tour_id = $1
		) AS stats
		WHERE tours.id = $1`

	if _, err := repository.pool.Exec(ctx, sql, tourID); err != nil {
		return dberr.Wrap(err)
	}
	return nil
}

// scanReview reads the reviewColumns SELECT list.
func scanReview(row pgx.Row, review *Review) error {
	return row.Scan(
		&review.ID,
		&review.Review,
		&review.Rating,
		&review.TourID,
		&review.CreatedAt,
		&review.UpdatedAt,
		&review.User.ID,
		&review.User.Name,
		&review.User.Photo,
	)
}
