// Copyright (c) 2026 Trailforge. All rights reserved.

// Package tours owns the tour catalog: CRUD over the query-feature
// pipeline, the aggregation endpoints (stats, monthly plan), and the
// curated listing aliases.
package tours

import (
	"encoding/json"
	"fmt"
	"time"
)

// Tour difficulty levels.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// Difficulties lists every valid difficulty value, for enum validation.
var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyDifficult}

// Location is a GeoJSON point on a tour's itinerary. Type is always
// "Point"; Day is the itinerary day for waypoints and zero for the start.
type Location struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	Address     string    `json:"address,omitempty"`
	Description string    `json:"description,omitempty"`
	Day         int       `json:"day,omitempty"`
}

// GuideRef references a guide account on a tour.
//
// It unmarshals from either a bare user-ID string (the write shape) or an
// object, and always marshals as the expanded object. Reads fill in Name
// and Photo from the users table.
type GuideRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// UnmarshalJSON accepts both `"user-id"` and `{"id": "user-id", ...}`.
func (g *GuideRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &g.ID)
	}
	type alias GuideRef
	return json.Unmarshal(data, (*alias)(g))
}

// Review is the trimmed review shape embedded in a single-tour read.
type Review struct {
	ID     string    `json:"id"`
	Review string    `json:"review"`
	Rating int       `json:"rating"`
	User   ReviewRef `json:"user"`
}

// ReviewRef is the review author: name and photo only.
type ReviewRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`
}

// Tour represents one bookable tour.
//
// # Rules
//   - Name is unique, 3-30 characters, letters and spaces only.
//   - PriceDiscount, when set, must be lower than Price.
//   - Secret tours are excluded from every read path, aggregations
//     included; the flag itself still serializes so staff tooling can
//     see it on writes it performs.
//   - Slug is derived from Name on every write and never accepted from
//     the client.
type Tour struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Slug            string      `json:"slug,omitempty"`
	Price           float64     `json:"price"`
	PriceDiscount   float64     `json:"priceDiscount,omitempty"`
	RatingsAverage  float64     `json:"ratingsAverage"`
	RatingsQuantity int         `json:"ratingsQuantity"`
	Difficulty      string      `json:"difficulty"`
	Duration        int         `json:"duration"`
	MaxGroupSize    int         `json:"maxGroupSize"`
	Summary         string      `json:"summary"`
	Description     string      `json:"description,omitempty"`
	ImageCover      string      `json:"imageCover"`
	Images          []string    `json:"images,omitempty"`
	StartDates      []time.Time `json:"startDates,omitempty"`
	SecretTour      bool        `json:"secretTour"`
	StartLocation   *Location   `json:"startLocation,omitempty"`
	Locations       []Location  `json:"locations,omitempty"`
	Guides          []GuideRef  `json:"guides,omitempty"`

	// Reviews is populated on single-tour reads only.
	Reviews []Review `json:"reviews,omitempty"`

	// FormattedDuration is derived, never stored.
	FormattedDuration string `json:"formattedDuration,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// FormatDuration renders the duration as whole weeks plus days.
func FormatDuration(days int) string {
	return fmt.Sprintf("%d weeks %d days", days/7, days%7)
}
