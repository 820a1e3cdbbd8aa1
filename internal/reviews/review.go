// Copyright (c) 2026 Trailforge. All rights reserved.

// Package reviews owns tour reviews: creation by regular users,
// moderation by admins, and tour-scoped listings through the nested
// router.
package reviews

import (
	"encoding/json"
	"time"
)

// AuthorRef is the review author as embedded in responses: name and photo
// only, never email or role.
//
// Like a tour's guide list, it unmarshals from a bare user-ID string or an
// object and marshals as the expanded object.
type AuthorRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// UnmarshalJSON accepts both `"user-id"` and `{"id": "user-id", ...}`.
func (a *AuthorRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.ID)
	}
	type alias AuthorRef
	return json.Unmarshal(data, (*alias)(a))
}

// Review is one user's rating of one tour.
//
// # Rules
//   - The text and a 1-5 rating are required.
//   - A user may review a tour once; the storage layer enforces this
//     with a unique (tour, user) pair.
//   - The tour reference stays a bare ID in responses; only the author
//     is expanded.
type Review struct {
	ID        string    `json:"id"`
	Review    string    `json:"review"`
	Rating    int       `json:"rating"`
	TourID    string    `json:"tour"`
	User      AuthorRef `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}
