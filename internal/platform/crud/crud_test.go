// Copyright (c) 2026 Trailforge. All rights reserved.

package crud_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasunvp/trailforge/internal/platform/apperr"
	"github.com/kasunvp/trailforge/internal/platform/crud"
	"github.com/kasunvp/trailforge/pkg/query"
)

const (
	seededWidgetID  = "0191a2b3-c4d5-7e6f-8a9b-0c1d2e3f4a5b"
	missingWidgetID = "0191a2b3-c4d5-7e6f-8a9b-0c1d2e3f4a5c"
)

type widget struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Owner string  `json:"owner,omitempty"`
}

// fakeService is an in-memory Service backed by a map.
type fakeService struct {
	items    map[string]widget
	lastSpec query.Spec
}

func (f *fakeService) List(_ context.Context, spec query.Spec) ([]widget, error) {
	f.lastSpec = spec
	out := make([]widget, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeService) Get(_ context.Context, id string) (widget, error) {
	item, ok := f.items[id]
	if !ok {
		return widget{}, apperr.NotFound("No document found with that ID")
	}
	return item, nil
}

func (f *fakeService) Create(_ context.Context, entity widget) (widget, error) {
	entity.ID = "w-new"
	f.items[entity.ID] = entity
	return entity, nil
}

func (f *fakeService) Update(_ context.Context, id string, patch json.RawMessage) (widget, error) {
	item, ok := f.items[id]
	if !ok {
		return widget{}, apperr.NotFound("No document found with that ID")
	}
	if err := json.Unmarshal(patch, &item); err != nil {
		return widget{}, apperr.BadRequest("Invalid JSON payload")
	}
	item.ID = id
	f.items[id] = item
	return item, nil
}

func (f *fakeService) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return apperr.NotFound("Could not perform the deletion. No document found with that ID")
	}
	delete(f.items, id)
	return nil
}

func newTestRouter(service *fakeService, opts ...crud.Option[widget]) http.Handler {
	handlers := crud.NewHandlers[widget](service, "widgetID", opts...)

	router := chi.NewRouter()
	router.Get("/widgets", handlers.GetAll)
	router.Post("/widgets", handlers.CreateOne)
	router.Get("/widgets/{widgetID}", handlers.GetOne)
	router.Patch("/widgets/{widgetID}", handlers.UpdateOne)
	router.Delete("/widgets/{widgetID}", handlers.DeleteOne)
	return router
}

func seededService() *fakeService {
	return &fakeService{items: map[string]widget{
		seededWidgetID: {ID: seededWidgetID, Name: "anvil", Price: 10, Owner: "ada"},
	}}
}

func TestGetAll_Envelope(t *testing.T) {
	router := newTestRouter(seededService())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/widgets", nil))

	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Status    string   `json:"status"`
		TotalDocs int      `json:"totalDocs"`
		Data      []widget `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "success", envelope.Status)
	assert.Equal(t, 1, envelope.TotalDocs)
	assert.Len(t, envelope.Data, 1)
}

func TestGetAll_Projection(t *testing.T) {
	router := newTestRouter(seededService())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/widgets?fields=name", nil))

	var envelope struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)

	// id is always retained; unrequested fields are dropped.
	assert.Contains(t, envelope.Data[0], "id")
	assert.Contains(t, envelope.Data[0], "name")
	assert.NotContains(t, envelope.Data[0], "price")
	assert.NotContains(t, envelope.Data[0], "owner")
}

func TestGetAll_ScopedFilters(t *testing.T) {
	service := seededService()
	scope := func(r *http.Request) []query.Filter {
		return []query.Filter{{Field: "owner", Op: query.OpEq, Value: "ada"}}
	}
	router := newTestRouter(service, crud.WithScope[widget](scope))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/widgets?price[gt]=5", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	// The scope filter is prepended ahead of the client's filters.
	require.Len(t, service.lastSpec.Filters, 2)
	assert.Equal(t, "owner", service.lastSpec.Filters[0].Field)
	assert.Equal(t, "price", service.lastSpec.Filters[1].Field)
}

func TestGetOne_NotFound(t *testing.T) {
	router := newTestRouter(seededService())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/widgets/"+missingWidgetID, nil))

	require.Equal(t, http.StatusNotFound, recorder.Code)

	var envelope struct {
		Status string `json:"status"`
		Msg    string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "fail", envelope.Status)
	assert.Equal(t, "No document found with that ID", envelope.Msg)
}

func TestMalformedID_RejectedBeforeService(t *testing.T) {
	router := newTestRouter(seededService())

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/widgets/abc", nil),
		httptest.NewRequest(http.MethodPatch, "/widgets/abc", strings.NewReader(`{"price":1}`)),
		httptest.NewRequest(http.MethodDelete, "/widgets/abc", nil),
	}

	for _, request := range requests {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusBadRequest, recorder.Code, request.Method)

		var envelope struct {
			Status string `json:"status"`
			Msg    string `json:"msg"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.Equal(t, "fail", envelope.Status, request.Method)
		assert.Equal(t, "Invalid widgetID: abc.", envelope.Msg, request.Method)
	}
}

func TestCreateOne_PrepareHook(t *testing.T) {
	service := seededService()
	prepare := func(r *http.Request, entity *widget) error {
		if entity.Owner == "" {
			entity.Owner = "defaulted"
		}
		return nil
	}
	router := newTestRouter(service, crud.WithPrepare[widget](prepare))

	body := strings.NewReader(`{"name":"rope","price":3}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/widgets", body))

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "defaulted", service.items["w-new"].Owner)
}

func TestUpdateOne_PartialPatch(t *testing.T) {
	service := seededService()
	router := newTestRouter(service)

	body := strings.NewReader(`{"price":99}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPatch, "/widgets/"+seededWidgetID, body))

	require.Equal(t, http.StatusOK, recorder.Code)
	// Patched field changes, untouched fields survive.
	assert.Equal(t, float64(99), service.items[seededWidgetID].Price)
	assert.Equal(t, "anvil", service.items[seededWidgetID].Name)
}

func TestUpdateOne_MalformedJSON(t *testing.T) {
	router := newTestRouter(seededService())

	body := strings.NewReader(`{"price":`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPatch, "/widgets/"+seededWidgetID, body))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestDeleteOne(t *testing.T) {
	service := seededService()
	router := newTestRouter(service)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/widgets/"+seededWidgetID, nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, service.items)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/widgets/"+seededWidgetID, nil))
	require.Equal(t, http.StatusNotFound, recorder.Code)

	var envelope struct {
		Msg string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "Could not perform the deletion. No document found with that ID", envelope.Msg)
}
