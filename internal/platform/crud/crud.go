// Copyright (c) 2026 Trailforge. All rights reserved.

/*
Package crud provides generic HTTP handlers for the standard
list/get/create/update/delete operations shared by every entity.

# Architecture

Each entity package wires its service into [NewHandlers] and mounts the
resulting handlers on its router. The handlers own the request/response
mechanics (query parsing, body decoding, projection, envelopes) while the
service owns validation and persistence. Entity-specific behavior is
injected through options rather than overridden handlers: a scope derives
extra filters from the URL (nested routes), a prepare hook mutates a
decoded entity before create (defaulting the author from the caller).
*/
package crud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kasunvp/trailforge/internal/platform/apperr"
	requestutil "github.com/kasunvp/trailforge/internal/platform/request"
	"github.com/kasunvp/trailforge/internal/platform/respond"
	"github.com/kasunvp/trailforge/internal/platform/validate"
	"github.com/kasunvp/trailforge/pkg/query"
)

// Service is the persistence surface the generic handlers drive.
//
// Update receives the raw JSON patch: the service loads the current row,
// overlays the patch onto it, re-validates, and persists. Unknown and
// read-only JSON fields are therefore ignored rather than rejected.
type Service[T any] interface {
	List(ctx context.Context, spec query.Spec) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, id string, patch json.RawMessage) (T, error)
	Delete(ctx context.Context, id string) error
}

// ScopeFunc derives route-scoped filters from the request, prepended to the
// client's own filters (e.g. the parent tour ID on a nested review listing).
type ScopeFunc func(request *http.Request) []query.Filter

// PrepareFunc adjusts a decoded entity before creation.
type PrepareFunc[T any] func(request *http.Request, entity *T) error

// Handlers bundles the five standard operations for one entity.
type Handlers[T any] struct {
	service Service[T]
	idParam string
	scope   ScopeFunc
	prepare PrepareFunc[T]
}

// Option customizes a [Handlers] instance.
type Option[T any] func(*Handlers[T])

// WithScope attaches route-scoped filtering to GetAll.
func WithScope[T any](scope ScopeFunc) Option[T] {
	return func(h *Handlers[T]) { h.scope = scope }
}

// WithPrepare attaches a pre-create hook to CreateOne.
func WithPrepare[T any](prepare PrepareFunc[T]) Option[T] {
	return func(h *Handlers[T]) { h.prepare = prepare }
}

// NewHandlers creates the handler set for one entity. idParam is the chi
// URL parameter carrying the entity ID (e.g. "tourID").
func NewHandlers[T any](service Service[T], idParam string, opts ...Option[T]) *Handlers[T] {
	handlers := &Handlers[T]{service: service, idParam: idParam}
	for _, opt := range opts {
		opt(handlers)
	}
	return handlers
}

// GetAll lists entities through the full query pipeline:
// filter → sort → paginate in SQL, then project at serialization.
func (h *Handlers[T]) GetAll(writer http.ResponseWriter, request *http.Request) {
	spec := query.Parse(request.URL.Query())

	if h.scope != nil {
		spec.Filters = append(h.scope(request), spec.Filters...)
	}

	items, err := h.service.List(request.Context(), spec)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// totalDocs counts the returned page, not the full match set.
	respond.List(writer, query.Project(items, spec.Fields), len(items))
}

// requireID extracts the entity ID from the URL and rejects malformed
// values up front. A non-UUID identifier can never match a row, and the
// driver encodes parameters client-side, so letting it through would
// surface as a 500 instead of an operational 400.
func (h *Handlers[T]) requireID(request *http.Request) (string, error) {
	id := requestutil.Param(request, h.idParam)
	if validate.New().UUID(h.idParam, id).HasErrors() {
		return "", apperr.BadRequest(fmt.Sprintf("Invalid %s: %s.", h.idParam, id))
	}
	return id, nil
}

// GetOne fetches a single entity by ID.
func (h *Handlers[T]) GetOne(writer http.ResponseWriter, request *http.Request) {
	id, err := h.requireID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := h.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	spec := query.Parse(request.URL.Query())
	respond.OK(writer, query.ProjectOne(item, spec.Fields))
}

// CreateOne decodes, prepares, and persists a new entity.
func (h *Handlers[T]) CreateOne(writer http.ResponseWriter, request *http.Request) {
	var entity T
	if err := requestutil.DecodeJSON(request, &entity); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if h.prepare != nil {
		if err := h.prepare(request, &entity); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	created, err := h.service.Create(request.Context(), entity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

// UpdateOne applies a partial JSON patch to an existing entity.
func (h *Handlers[T]) UpdateOne(writer http.ResponseWriter, request *http.Request) {
	id, err := h.requireID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	patch, err := requestutil.ReadJSON(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := h.service.Update(request.Context(), id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

// DeleteOne removes an entity by ID.
func (h *Handlers[T]) DeleteOne(writer http.ResponseWriter, request *http.Request) {
	id, err := h.requireID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := h.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
