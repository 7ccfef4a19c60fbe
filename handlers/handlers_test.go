// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/blackmarket/cliparse"
	"github.com/danielhkuo/blackmarket/events"
	"github.com/danielhkuo/blackmarket/models"
	"github.com/danielhkuo/blackmarket/testutil"
	"github.com/danielhkuo/blackmarket/views"
)

// testEnv bundles what every handler constructor needs
type testEnv struct {
	db     *sql.DB
	cfg    cliparse.Config
	views  *views.Renderer
	events *events.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	renderer, err := views.New()
	require.NoError(t, err)

	cfg := testutil.GetTestConfig()
	cfg.SourceCodeMarketDir = t.TempDir()

	return &testEnv{
		db:     testutil.SetupTestDB(t),
		cfg:    cfg,
		views:  renderer,
		events: events.NewManager(),
	}
}

// reloadUser reads a user and its team back from the database
func reloadUser(t *testing.T, db *sql.DB, id string) *models.User {
	t.Helper()

	user, err := userByID(context.Background(), db, id)
	require.NoError(t, err)
	require.NotNil(t, user, "user %s no longer exists", id)
	return user
}
