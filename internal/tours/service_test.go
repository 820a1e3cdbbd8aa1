// Copyright (c) 2026 Trailforge. All rights reserved.

package tours

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasunvp/trailforge/internal/platform/apperr"
	"github.com/kasunvp/trailforge/pkg/query"
)

// fakeRepository is an in-memory [Repository] for service tests.
type fakeRepository struct {
	byID     map[string]Tour
	lastSpec query.Spec
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byID: map[string]Tour{}}
}

var errFakeNotFound = apperr.NotFound("Requested doc not found")

func (f *fakeRepository) List(ctx context.Context, spec query.Spec) ([]Tour, error) {
	f.lastSpec = spec
	result := []Tour{}
	for _, tour := range f.byID {
		result = append(result, tour)
	}
	return result, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id string) (*Tour, error) {
	tour, ok := f.byID[id]
	if !ok {
		return nil, errFakeNotFound
	}
	clone := tour
	return &clone, nil
}

func (f *fakeRepository) FindBySlug(ctx context.Context, slug string) (*Tour, error) {
	for _, tour := range f.byID {
		if tour.Slug == slug {
			clone := tour
			return &clone, nil
		}
	}
	return nil, errFakeNotFound
}

func (f *fakeRepository) Create(ctx context.Context, tour *Tour) error {
	f.byID[tour.ID] = *tour
	return nil
}

func (f *fakeRepository) Update(ctx context.Context, tour *Tour) error {
	if _, ok := f.byID[tour.ID]; !ok {
		return apperr.NotFound("Requested document not found")
	}
	f.byID[tour.ID] = *tour
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return apperr.NotFound("Could not perform the deletion. No document found with that ID")
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeRepository) Stats(ctx context.Context) ([]DifficultyStat, error) {
	return []DifficultyStat{{Difficulty: DifficultyEasy, TotalTours: len(f.byID)}}, nil
}

func (f *fakeRepository) MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, error) {
	return []MonthlyPlanEntry{{Month: 7, NumOfTourStarts: 2, Tours: []string{"The Forest Hiker"}}}, nil
}

func validTour() Tour {
	return Tour{
		Name:         "The Forest Hiker",
		Price:        497,
		Difficulty:   DifficultyEasy,
		Duration:     14,
		MaxGroupSize: 25,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-1-cover.jpg",
	}
}

func TestCreate_DerivesSlugAndID(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository, nil)

	input := validTour()
	input.Slug = "client_supplied_slug"

	created, err := service.Create(context.Background(), input)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "the_forest_hiker", created.Slug)
	assert.Equal(t, "2 weeks 0 days", created.FormattedDuration)
}

func TestCreate_RejectsNonAlphabeticName(t *testing.T) {
	service := NewService(newFakeRepository(), nil)

	input := validTour()
	input.Name = "Tour 2024!"

	_, err := service.Create(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, "Tour name can contain only letters and spaces", fieldMessage(t, err, "name"))
}

// fieldMessage digs the validation message for one field out of an error.
func fieldMessage(t *testing.T, err error, field string) string {
	t.Helper()

	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	for _, detail := range appError.Details {
		if detail.Field == field {
			return detail.Message
		}
	}
	t.Fatalf("no validation detail for field %q", field)
	return ""
}

func TestCreate_RejectsDiscountAbovePrice(t *testing.T) {
	service := NewService(newFakeRepository(), nil)

	input := validTour()
	input.PriceDiscount = input.Price + 1

	_, err := service.Create(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, "The discount price must be lower than the actual price", fieldMessage(t, err, "priceDiscount"))

	input.PriceDiscount = input.Price - 100
	_, err = service.Create(context.Background(), input)
	assert.NoError(t, err)
}

func TestCreate_RejectsUnknownDifficulty(t *testing.T) {
	service := NewService(newFakeRepository(), nil)

	input := validTour()
	input.Difficulty = "extreme"

	_, err := service.Create(context.Background(), input)
	require.Error(t, err)
}

func TestCreate_RejectsShortDescription(t *testing.T) {
	service := NewService(newFakeRepository(), nil)

	input := validTour()
	input.Description = "too short"

	_, err := service.Create(context.Background(), input)
	require.Error(t, err)
}

func TestWrite_RatingAggregatesAreDerived(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository, nil)

	input := validTour()
	input.RatingsAverage = 1.0
	input.RatingsQuantity = 99

	created, err := service.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 4.5, created.RatingsAverage)
	assert.Equal(t, 0, created.RatingsQuantity)

	patch := json.RawMessage(`{"ratingsAverage": 5, "ratingsQuantity": 1000}`)
	updated, err := service.Update(context.Background(), created.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, 4.5, updated.RatingsAverage)
	assert.Equal(t, 0, updated.RatingsQuantity)
}

func TestUpdate_RederivesSlugFromPatchedName(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository, nil)

	created, err := service.Create(context.Background(), validTour())
	require.NoError(t, err)

	patch := json.RawMessage(`{"name": "The Sea Explorer"}`)
	updated, err := service.Update(context.Background(), created.ID, patch)
	require.NoError(t, err)

	assert.Equal(t, "The Sea Explorer", updated.Name)
	assert.Equal(t, "the_sea_explorer", updated.Slug)
	// Unpatched fields survive.
	assert.Equal(t, created.Price, updated.Price)
	assert.Equal(t, created.Duration, updated.Duration)
}

func TestUpdate_PatchCannotOverrideSlug(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository, nil)

	created, err := service.Create(context.Background(), validTour())
	require.NoError(t, err)

	patch := json.RawMessage(`{"slug": "hand_picked"}`)
	updated, err := service.Update(context.Background(), created.ID, patch)
	require.NoError(t, err)

	assert.Equal(t, "the_forest_hiker", updated.Slug)
}

func TestGuideRef_UnmarshalsFromStringAndObject(t *testing.T) {
	var tour Tour
	payload := `{"name": "x", "guides": ["u-1", {"id": "u-2", "name": "Ada"}]}`
	require.NoError(t, json.Unmarshal([]byte(payload), &tour))

	require.Len(t, tour.Guides, 2)
	assert.Equal(t, "u-1", tour.Guides[0].ID)
	assert.Equal(t, "u-2", tour.Guides[1].ID)
	assert.Equal(t, "Ada", tour.Guides[1].Name)
}

func TestTopFiveRatedCheapest_PresetsQueryFeatures(t *testing.T) {
	repository := newFakeRepository()
	handler := NewHandler(NewService(repository, nil))

	router := chiRouterForTest(handler)
	recorder := httptest.NewRecorder()
	// Client attempts to widen the listing; the presets win.
	request := httptest.NewRequest(http.MethodGet, "/top-5-rated-cheapest?limit=50&sort=price", nil)
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	spec := repository.lastSpec
	assert.Equal(t, 5, spec.Page.Limit)
	require.Len(t, spec.Sort, 2)
	assert.Equal(t, query.Sort{Field: "ratingsAverage", Desc: true}, spec.Sort[0])
	assert.Equal(t, query.Sort{Field: "price"}, spec.Sort[1])
	assert.Equal(t, []string{"name", "price", "ratingsAverage", "difficulty", "summary"}, spec.Fields)
}

func chiRouterForTest(handler *Handler) chi.Router {
	router := chi.NewRouter()
	router.Get("/top-5-rated-cheapest", handler.topFiveRatedCheapest)
	return router
}

func TestSchema_DropsUnknownFilterFields(t *testing.T) {
	whereSQL, args := Schema.Where(query.Spec{Filters: []query.Filter{
		{Field: "price", Op: query.OpGte, Value: float64(300)},
		{Field: "secretTour", Op: query.OpEq, Value: false},
	}}, 1)

	assert.Contains(t, whereSQL, "price >=")
	assert.NotContains(t, whereSQL, "secret_tour")
	assert.Len(t, args, 1)
}
