// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/blackmarket/models"
)

func TestWithLogging(t *testing.T) {
	// Create a simple handler that returns OK
	handlerCalled := false
	testHandler := func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}

	// Wrap with logging middleware
	wrappedHandler := WithLogging(testHandler)

	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()

	wrappedHandler(w, req)

	assert.True(t, handlerCalled, "Expected handler to be called")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", w.Body.String())
}

func TestWithLogging_PreservesResponse(t *testing.T) {
	// Test that logging doesn't interfere with various response codes
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Found", http.StatusFound, ""},
		{"NotFound", http.StatusNotFound, "not found"},
		{"InternalError", http.StatusInternalServerError, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/swat", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			assert.Equal(t, tc.statusCode, w.Code)
			assert.Equal(t, tc.body, w.Body.String())
		})
	}
}

func TestJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()

	JSONResponse(w, http.StatusOK, models.AccountsResponse{Accounts: []string{"red", "blue"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp models.AccountsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, []string{"red", "blue"}, resp.Accounts)
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()

	ErrorResponse(w, http.StatusUnauthorized, "Login required")

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Unauthorized", resp.Error)
	assert.Equal(t, "Login required", resp.Message)
}

func TestAuthenticated(t *testing.T) {
	alice := &models.User{ID: "u1", Handle: "alice", TeamID: "t1"}

	lookup := func(ctx context.Context, token string) (*models.User, error) {
		switch token {
		case "good":
			return alice, nil
		case "broken":
			return nil, errors.New("database is down")
		}
		return nil, nil
	}

	tests := []struct {
		name           string
		path           string
		cookie         string
		expectedStatus int
		expectedUser   string
	}{
		{"valid session", "/swat", "good", http.StatusOK, "alice"},
		{"no cookie redirects", "/swat", "", http.StatusFound, ""},
		{"unknown session redirects", "/swat", "stale", http.StatusFound, ""},
		{"json endpoint gets 401", "/federal_reserve/json/ls", "", http.StatusUnauthorized, ""},
		{"lookup failure", "/swat", "broken", http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := Authenticated(lookup, func(w http.ResponseWriter, r *http.Request) {
				seen = CurrentUser(r).Handle
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()

			handler(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedUser, seen)
			if tt.expectedStatus == http.StatusFound {
				assert.Equal(t, "/login", w.Header().Get("Location"))
			}
		})
	}
}

func TestHasItem(t *testing.T) {
	check := func(ctx context.Context, teamID, item string) (bool, error) {
		if teamID == "broken" {
			return false, errors.New("database is down")
		}
		return teamID == "rich" && item == models.ItemSWAT, nil
	}
	forbidden := func(w http.ResponseWriter, r *http.Request, item string) {
		http.Error(w, "missing "+item, http.StatusForbidden)
	}

	tests := []struct {
		name           string
		user           *models.User
		item           string
		expectedStatus int
	}{
		{"team owns item", &models.User{TeamID: "rich"}, models.ItemSWAT, http.StatusOK},
		{"team lacks item", &models.User{TeamID: "rich"}, models.ItemFederalReserve, http.StatusForbidden},
		{"other team", &models.User{TeamID: "poor"}, models.ItemSWAT, http.StatusForbidden},
		{"check fails", &models.User{TeamID: "broken"}, models.ItemSWAT, http.StatusInternalServerError},
		{"no user", nil, models.ItemSWAT, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := HasItem(tt.item, check, forbidden, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/swat", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}
			w := httptest.NewRecorder()

			handler(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestDebug(t *testing.T) {
	called := false
	handler := Debug("ls", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest("GET", "/federal_reserve/json/ls", nil)
	handler(httptest.NewRecorder(), req)

	assert.True(t, called)
}

func TestWantsJSON(t *testing.T) {
	req := httptest.NewRequest("GET", "/federal_reserve/json/info", nil)
	assert.True(t, WantsJSON(req))

	req = httptest.NewRequest("GET", "/swat", nil)
	assert.False(t, WantsJSON(req))

	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	assert.True(t, WantsJSON(req))

	req = httptest.NewRequest("GET", "/swat", nil)
	req.Header.Set("Accept", "application/json")
	assert.True(t, WantsJSON(req))
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{
			name:       "X-Forwarded-For chained IPs",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.100, 10.0.0.1, 172.16.0.1"},
			remoteAddr: "127.0.0.1:12345",
			expectedIP: "192.168.1.100",
		},
		{
			name:       "X-Real-IP takes precedence over RemoteAddr",
			headers:    map[string]string{"X-Real-IP": "203.0.113.50"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "203.0.113.50",
		},
		{
			name:       "RemoteAddr with port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.50:54321",
			expectedIP: "192.168.1.50",
		},
		{
			name:       "RemoteAddr without port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.50",
			expectedIP: "192.168.1.50",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr

			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tc.expectedIP, GetClientIP(req))
		})
	}
}
