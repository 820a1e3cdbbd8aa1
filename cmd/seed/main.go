// Copyright (c) 2026 Trailforge. All rights reserved.

// Command seed loads or wipes development fixture data.
//
// Usage:
//
//	seed -import   # load data/seed/*.json into the database
//	seed -delete   # remove all rows from users, tours and reviews
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/kasunvp/trailforge/internal/platform/config"
	"github.com/kasunvp/trailforge/internal/platform/migration"
	pgstore "github.com/kasunvp/trailforge/internal/platform/postgres"
	"github.com/kasunvp/trailforge/internal/platform/sec"
	"github.com/kasunvp/trailforge/internal/reviews"
	"github.com/kasunvp/trailforge/internal/tours"
	"github.com/kasunvp/trailforge/internal/users"
	"github.com/kasunvp/trailforge/pkg/slug"
	"github.com/kasunvp/trailforge/pkg/uuidv7"
)

// seedPassword is the shared fixture credential.
const seedPassword = "test1234"

func main() {
	doImport := flag.Bool("import", false, "load fixture data")
	doDelete := flag.Bool("delete", false, "wipe all data")
	dir := flag.String("dir", "./data/seed", "fixture directory")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if *doImport == *doDelete {
		log.Error("exactly one of -import or -delete is required")
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	exitOn(log, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	exitOn(log, err)
	defer pool.Close()

	exitOn(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log))

	if *doDelete {
		exitOn(log, wipe(ctx, pool))
		log.Info("fixture data deleted")
		return
	}

	exitOn(log, load(ctx, pool, *dir))
	log.Info("fixture data imported")
}

// wipe truncates every domain table; the cascade covers reviews.
func wipe(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "TRUNCATE users, tours, reviews CASCADE")
	return err
}

// seedUser mirrors the signup payload, with the password fixed.
type seedUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Role  string `json:"role"`
}

type seedReview struct {
	Review    string `json:"review"`
	Rating    int    `json:"rating"`
	TourName  string `json:"tour"`
	UserEmail string `json:"user"`
}

// load inserts users, tours and reviews in dependency order. The fixture
// files reference tours by name and users by email; IDs are minted here.
func load(ctx context.Context, pool *pgxpool.Pool, dir string) error {
	userRepository := users.NewPostgresRepository(pool)
	tourRepository := tours.NewPostgresRepository(pool)
	reviewRepository := reviews.NewPostgresRepository(pool)

	passwordHash, err := sec.HashPassword(seedPassword)
	if err != nil {
		return err
	}

	var fixtureUsers []seedUser
	if err := readFixture(filepath.Join(dir, "users.json"), &fixtureUsers); err != nil {
		return err
	}
	userIDs := map[string]string{}
	for _, fixture := range fixtureUsers {
		user := &users.User{
			ID:           uuidv7.New(),
			Name:         fixture.Name,
			Email:        fixture.Email,
			Photo:        fixture.Photo,
			Role:         sec.Role(fixture.Role),
			PasswordHash: passwordHash,
		}
		if user.Role == "" {
			user.Role = sec.RoleUser
		}
		if err := userRepository.Create(ctx, user); err != nil {
			return err
		}
		userIDs[user.Email] = user.ID
	}

	var fixtureTours []tours.Tour
	if err := readFixture(filepath.Join(dir, "tours.json"), &fixtureTours); err != nil {
		return err
	}
	tourIDs := map[string]string{}
	for i := range fixtureTours {
		tour := &fixtureTours[i]
		tour.ID = uuidv7.New()
		tour.Slug = slug.From(tour.Name)
		if tour.RatingsAverage == 0 {
			tour.RatingsAverage = 4.5
		}
		if err := tourRepository.Create(ctx, tour); err != nil {
			return err
		}
		tourIDs[tour.Name] = tour.ID
	}

	var fixtureReviews []seedReview
	if err := readFixture(filepath.Join(dir, "reviews.json"), &fixtureReviews); err != nil {
		return err
	}
	touched := map[string]bool{}
	for _, fixture := range fixtureReviews {
		review := &reviews.Review{
			ID:     uuidv7.New(),
			Review: fixture.Review,
			Rating: fixture.Rating,
			TourID: tourIDs[fixture.TourName],
			User:   reviews.AuthorRef{ID: userIDs[fixture.UserEmail]},
		}
		if err := reviewRepository.Create(ctx, review); err != nil {
			return err
		}
		touched[review.TourID] = true
	}
	for tourID := range touched {
		if err := reviewRepository.RecalculateTourRatings(ctx, tourID); err != nil {
			return err
		}
	}

	return nil
}

func readFixture(path string, target any) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, target)
}

func exitOn(log *slog.Logger, err error) {
	if err != nil {
		log.Error("seed failure", slog.Any("error", err))
		os.Exit(1)
	}
}
