// Copyright (c) 2026 Trailforge. All rights reserved.

package tours

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kasunvp/trailforge/internal/platform/dberr"
	"github.com/kasunvp/trailforge/pkg/query"
)

// Schema is the query-feature whitelist for tour listings.
var Schema = query.Schema{
	ID: "id",
	Columns: map[string]string{
		"name":            "name",
		"slug":            "slug",
		"price":           "price",
		"priceDiscount":   "price_discount",
		"ratingsAverage":  "ratings_average",
		"ratingsQuantity": "ratings_quantity",
		"difficulty":      "difficulty",
		"duration":        "duration",
		"maxGroupSize":    "max_group_size",
		"createdAt":       "created_at",
	},
	DefaultSort: "created_at DESC",
}

// tourColumns is the full SELECT list; guide references come back as bare
// IDs and get expanded separately where a read calls for it.
const tourColumns = `id, name, slug, price, price_discount, ratings_average, ratings_quantity,
	difficulty, duration, max_group_size, summary, description, image_cover, images,
	start_dates, secret_tour, start_location, locations, guides, created_at, updated_at`

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the PostgreSQL implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns non-secret tours shaped by the request's query features.
// Guides stay as bare references on listings.
func (repository *PostgresRepository) List(ctx context.Context, spec query.Spec) ([]Tour, error) {
	baseQuery := "SELECT " + tourColumns + " FROM tours WHERE secret_tour = FALSE"

	whereSQL, args := Schema.Where(spec, 1)
	limitSQL, limitArgs := Schema.LimitOffset(spec, len(args)+1)
	sql := baseQuery + whereSQL + Schema.OrderBy(spec) + limitSQL
	args = append(args, limitArgs...)

	rows, err := repository.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("tours_list_failed: %w", err))
	}
	defer rows.Close()

	result := []Tour{}
	for rows.Next() {
		var tour Tour
		if err := scanTour(rows, &tour); err != nil {
			return nil, dberr.Wrap(fmt.Errorf("tours_list_scan_failed: %w", err))
		}
		result = append(result, tour)
	}

	return result, rows.Err()
}

// FindByID loads one tour with its guide details and reviews expanded.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Tour, error) {
	const sql = "SELECT " + tourColumns + " FROM tours WHERE id = $1 AND secret_tour = FALSE"
	return repository.findOne(ctx, sql, id)
}

// FindBySlug loads one tour by its URL slug, fully expanded.
func (repository *PostgresRepository) FindBySlug(ctx context.Context, slug string) (*Tour, error) {
	const sql = "SELECT " + tourColumns + " FROM tours WHERE slug = $1 AND secret_tour = FALSE"
	return repository.findOne(ctx, sql, slug)
}

func (repository *PostgresRepository) findOne(ctx context.Context, sql string, arg any) (*Tour, error) {
	tour := &Tour{}
	if err := scanTour(repository.pool.QueryRow(ctx, sql, arg), tour); err != nil {
		return nil, dberr.WrapNotFound(err, "Requested doc not found")
	}
	if err := repository.expandGuides(ctx, tour); err != nil {
		return nil, err
	}
	if err := repository.attachReviews(ctx, tour); err != nil {
		return nil, err
	}

	return tour, nil
}

// Create persists a new tour row.
func (repository *PostgresRepository) Create(ctx context.Context, tour *Tour) error {
	const sql = `
		INSERT INTO tours (
			id, name, slug, price, price_discount, ratings_average, ratings_quantity,
			difficulty, duration, max_group_size, summary, description, image_cover, images,
			start_dates, secret_tour, start_location, locations, guides, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)`

	now := time.Now()
	tour.CreatedAt = now
	tour.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, sql,
		tour.ID,
		tour.Name,
		tour.Slug,
		tour.Price,
		tour.PriceDiscount,
		tour.RatingsAverage,
		tour.RatingsQuantity,
		tour.Difficulty,
		tour.Duration,
		tour.MaxGroupSize,
		tour.Summary,
		tour.Description,
		tour.ImageCover,
		tour.Images,
		tour.StartDates,
		tour.SecretTour,
		tour.StartLocation,
		tour.Locations,
		guideIDs(tour.Guides),
		tour.CreatedAt,
		tour.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err)
	}

	return nil
}

// Update overwrites every mutable column of an existing tour.
func (repository *PostgresRepository) Update(ctx context.Context, tour *Tour) error {
	const sql = `
		UPDATE tours
		SET name = $2, slug = $3, price = $4, price_discount = $5, ratings_average = $6,
		    ratings_quantity = $7, difficulty = $8, duration = $9, max_group_size = $10,
		    summary = $11, description = $12, image_cover = $13, images = $14,
		    start_dates = $15, secret_tour = $16, start_location = $17, locations = $18,
		    guides = $19, updated_at = $20
		WHERE id = $1`

	tour.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, sql,
		tour.ID,
		tour.Name,
		tour.Slug,
		tour.Price,
		tour.PriceDiscount,
		tour.RatingsAverage,
		tour.RatingsQuantity,
		tour.Difficulty,
		tour.Duration,
		tour.MaxGroupSize,
		tour.Summary,
		tour.Description,
		tour.ImageCover,
		tour.Images,
		tour.StartDates,
		tour.SecretTour,
		tour.StartLocation,
		tour.Locations,
		guideIDs(tour.Guides),
		tour.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.WrapNotFound(pgx.ErrNoRows, "Requested document not found")
	}

	return nil
}

// Delete removes a tour and, through the cascade, its reviews.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	const sql = "DELETE FROM tours WHERE id = $1"

	tag, err := repository.pool.Exec(ctx, sql, id)
	if err != nil {
		return dberr.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.WrapNotFound(pgx.ErrNoRows, "Could not perform the deletion. No document found with that ID")
	}
	return nil
}

// Stats aggregates the catalog per difficulty, cheapest group first.
func (repository *PostgresRepository) Stats(ctx context.Context) ([]DifficultyStat, error) {
	const sql = `
		SELECT difficulty,
		       COUNT(*),
		       COALESCE(SUM(ratings_quantity), 0),
		       COALESCE(AVG(ratings_average), 0),
		       COALESCE(AVG(price), 0),
		       COALESCE(MIN(price), 0),
		       COALESCE(MAX(price), 0)
		FROM tours
		WHERE secret_tour = FALSE
		GROUP BY difficulty
		ORDER BY AVG(price)`

	rows, err := repository.pool.Query(ctx, sql)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("tour_stats_failed: %w", err))
	}
	defer rows.Close()

	result := []DifficultyStat{}
	for rows.Next() {
		var stat DifficultyStat
		err := rows.Scan(
			&stat.Difficulty,
			&stat.TotalTours,
			&stat.NumRatings,
			&stat.AvgRating,
			&stat.AvgPrice,
			&stat.MinPrice,
			&stat.MaxPrice,
		)
		if err != nil {
			return nil, dberr.Wrap(fmt.Errorf("tour_stats_scan_failed: %w", err))
		}
		result = append(result, stat)
	}

	return result, rows.Err()
}

// MonthlyPlan unnests start dates within the given year and groups
// departures per month, busiest month first.
func (repository *PostgresRepository) MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, error) {
	const sql = `
		SELECT EXTRACT(MONTH FROM start_date)::int AS month,
		       COUNT(*) AS num_starts,
		       ARRAY_AGG(name ORDER BY name) AS tours
		FROM tours, UNNEST(start_dates) AS start_date
		WHERE secret_tour = FALSE
		  AND start_date >= $1
		  AND start_date < $2
		GROUP BY month
		ORDER BY num_starts DESC`

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(1, 0, 0)

	rows, err := repository.pool.Query(ctx, sql, from, until)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("monthly_plan_failed: %w", err))
	}
	defer rows.Close()

	result := []MonthlyPlanEntry{}
	for rows.Next() {
		var entry MonthlyPlanEntry
		if err := rows.Scan(&entry.Month, &entry.NumOfTourStarts, &entry.Tours); err != nil {
			return nil, dberr.Wrap(fmt.Errorf("monthly_plan_scan_failed: %w", err))
		}
		result = append(result, entry)
	}

	return result, rows.Err()
}

// expandGuides swaps bare guide IDs for name and photo details, skipping
// accounts that have since been deactivated.
func (repository *PostgresRepository) expandGuides(ctx context.Context, tour *Tour) error {
	if len(tour.Guides) == 0 {
		return nil
	}

	const sql = "SELECT id, name, photo FROM users WHERE id = ANY($1::uuid[]) AND active = TRUE"

	rows, err := repository.pool.Query(ctx, sql, guideIDs(tour.Guides))
	if err != nil {
		return dberr.Wrap(fmt.Errorf("tour_guides_failed: %w", err))
	}
	defer rows.Close()

	guides := []GuideRef{}
	for rows.Next() {
		var guide GuideRef
		if err := rows.Scan(&guide.ID, &guide.Name, &guide.Photo); err != nil {
			return dberr.Wrap(fmt.Errorf("tour_guides_scan_failed: %w", err))
		}
		guides = append(guides, guide)
	}
	tour.Guides = guides

	return rows.Err()
}

// attachReviews loads the tour's reviews with their authors.
func (repository *PostgresRepository) attachReviews(ctx context.Context, tour *Tour) error {
	const sql = `
		SELECT r.id, r.review, r.rating, u.id, u.name, u.photo
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.tour_id = $1
		ORDER BY r.created_at DESC`

	rows, err := repository.pool.Query(ctx, sql, tour.ID)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("tour_reviews_failed: %w", err))
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID,
			&review.Review,
			&review.Rating,
			&review.User.ID,
			&review.User.Name,
			&review.User.Photo,
		)
		if err != nil {
			return dberr.Wrap(fmt.Errorf("tour_reviews_scan_failed: %w", err))
		}
		reviews = append(reviews, review)
	}
	tour.Reviews = reviews

	return rows.Err()
}

// scanTour reads the tourColumns SELECT list. Guide IDs land as bare refs.
func scanTour(row pgx.Row, tour *Tour) error {
	var guides []string
	err := row.Scan(
		&tour.ID,
		&tour.Name,
		&tour.Slug,
		&tour.Price,
		&tour.PriceDiscount,
		&tour.RatingsAverage,
		&tour.RatingsQuantity,
		&tour.Difficulty,
		&tour.Duration,
		&tour.MaxGroupSize,
		&tour.Summary,
		&tour.Description,
		&tour.ImageCover,
		&tour.Images,
		&tour.StartDates,
		&tour.SecretTour,
		&tour.StartLocation,
		&tour.Locations,
		&guides,
		&tour.CreatedAt,
		&tour.UpdatedAt,
	)
	if err != nil {
		return err
	}

	tour.Guides = make([]GuideRef, 0, len(guides))
	for _, id := range guides {
		tour.Guides = append(tour.Guides, GuideRef{ID: id})
	}

	return nil
}

// guideIDs flattens guide refs back to the stored ID array.
func guideIDs(guides []GuideRef) []string {
	ids := make([]string, 0, len(guides))
	for _, guide := range guides {
		ids = append(ids, guide.ID)
	}
	return ids
}
