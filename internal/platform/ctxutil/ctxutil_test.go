// Copyright (c) 2026 Trailforge. All rights reserved.

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kasunvp/trailforge/internal/platform/ctxutil"
	"github.com/kasunvp/trailforge/internal/platform/sec"
)

func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

func TestContext_Logger(t *testing.T) {
	ctx := context.Background()

	// 1. Falls back to the default logger when absent
	assert.NotNil(t, ctxutil.GetLogger(ctx))

	// 2. Returns the injected logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Same(t, logger, ctxutil.GetLogger(ctx))
}

func TestContext_Identity(t *testing.T) {
	ctx := context.Background()

	// 1. Anonymous requests have no identity
	assert.Nil(t, ctxutil.GetIdentity(ctx))

	// 2. Inject and retrieve
	identity := &sec.Identity{ID: "u1", Role: sec.RoleAdmin}
	ctx = ctxutil.WithIdentity(ctx, identity)
	assert.Same(t, identity, ctxutil.GetIdentity(ctx))
}
