// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/blackmarket/auth"
	"github.com/danielhkuo/blackmarket/middleware"
	"github.com/danielhkuo/blackmarket/models"
	"github.com/danielhkuo/blackmarket/testutil"
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name          string
		form          url.Values
		expectedError string
	}{
		{
			name: "valid credentials",
			form: url.Values{"handle": {"alice"}, "password": {"secret"}},
		},
		{
			name: "padded handle",
			form: url.Values{"handle": {" alice "}, "password": {"secret"}},
		},
		{
			name:          "wrong password",
			form:          url.Values{"handle": {"alice"}, "password": {"guess"}},
			expectedError: "Invalid handle or password",
		},
		{
			name:          "unknown handle",
			form:          url.Values{"handle": {"mallory"}, "password": {"secret"}},
			expectedError: "Invalid handle or password",
		},
		{
			name:          "missing password",
			form:          url.Values{"handle": {"alice"}},
			expectedError: "Enter your password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			handler := NewSessionHandler(env.db, env.cfg, env.views)

			team := testutil.CreateTestTeam(t, env.db, "Blue", 5000)
			testutil.CreateTestUser(t, env.db, team, "alice", "secret", auth.AlgorithmSHA256)

			w := httptest.NewRecorder()
			handler.Login(w, testutil.PostForm("/login", tt.form))

			if tt.expectedError != "" {
				testutil.AssertStatus(t, w, http.StatusOK)
				assert.Contains(t, w.Body.String(), tt.expectedError)
				assert.Zero(t, testutil.CountRows(t, env.db, "session"))
				return
			}

			testutil.AssertStatus(t, w, http.StatusFound)
			assert.Equal(t, "/password_security", w.Header().Get("Location"))
			assert.Equal(t, 1, testutil.CountRows(t, env.db, "session"))

			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
			assert.True(t, cookies[0].HttpOnly)
			assert.NotEmpty(t, cookies[0].Value)
		})
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	handler := NewSessionHandler(env.db, env.cfg, env.views)

	team := testutil.CreateTestTeam(t, env.db, "Blue", 5000)
	user := testutil.CreateTestUser(t, env.db, team, "alice", "secret", auth.AlgorithmMD5)
	token := testutil.CreateTestSession(t, env.db, user, time.Hour)

	req := httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	testutil.AssertStatus(t, w, http.StatusFound)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Zero(t, testutil.CountRows(t, env.db, "session"))
}

func TestLookupSession(t *testing.T) {
	env := newTestEnv(t)
	lookup := LookupSession(env.db)

	team := testutil.CreateTestTeam(t, env.db, "Blue", 5000)
	user := testutil.CreateTestUser(t, env.db, team, "alice", "secret", auth.AlgorithmMD5)
	valid := testutil.CreateTestSession(t, env.db, user, time.Hour)
	expired := testutil.CreateTestSession(t, env.db, user, -time.Hour)

	t.Run("valid", func(t *testing.T) {
		found, err := lookup(context.Background(), valid)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, user.ID, found.ID)
		require.NotNil(t, found.Team)
		assert.Equal(t, "Blue", found.Team.Name)
	})

	t.Run("expired", func(t *testing.T) {
		found, err := lookup(context.Background(), expired)
		require.NoError(t, err)
		assert.Nil(t, found)
		assert.Equal(t, 1, testutil.CountRows(t, env.db, "session"))
	})

	t.Run("unknown", func(t *testing.T) {
		found, err := lookup(context.Background(), "nope")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestTeamHasItem(t *testing.T) {
	env := newTestEnv(t)
	check := TeamHasItem(env.db)

	team := testutil.CreateTestTeam(t, env.db, "Blue", 5000)
	testutil.GiveTestItem(t, env.db, team, models.ItemSWAT)

	ok, err := check(context.Background(), team.ID, models.ItemSWAT)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = check(context.Background(), team.ID, models.ItemFederalReserve)
	require.NoError(t, err)
	assert.False(t, ok)
}
