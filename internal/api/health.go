// Copyright (c) 2026 Trailforge. All rights reserved.

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/kasunvp/trailforge/internal/platform/constants"
	"github.com/kasunvp/trailforge/internal/platform/postgres"
	"github.com/kasunvp/trailforge/internal/platform/redis"
	"github.com/kasunvp/trailforge/internal/platform/respond"
)

// probeTimeout bounds each dependency check in the readiness probe.
const probeTimeout = 5 * time.Second

// health is the liveness probe: the process is up and serving.
func (server *Server) health(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{
		"app":     constants.AppName,
		"version": constants.AppVersion,
	})
}

// ready is the readiness probe: both backing stores answer.
func (server *Server) ready(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), probeTimeout)
	defer cancel()

	checks := map[string]string{"postgres": "ok", "redis": "ok"}
	healthy := true

	if err := postgres.Ping(ctx, server.pool); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	}
	if err := redis.Ping(ctx, server.cache); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	if !healthy {
		respond.JSON(writer, http.StatusServiceUnavailable, map[string]any{
			"status": "error",
			"data":   checks,
		})
		return
	}

	respond.OK(writer, checks)
}
