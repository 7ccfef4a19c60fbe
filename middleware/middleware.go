// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/blackmarket/models"
)

// SessionCookie is the name of the cookie holding the login session token
const SessionCookie = "session"

type contextKey string

const userKey contextKey = "user"

// SessionLookup resolves a session token to its user. It returns a nil user
// and nil error when the session does not exist or has expired.
type SessionLookup func(ctx context.Context, token string) (*models.User, error)

// ItemCheck reports whether a team owns the named Black Market item
type ItemCheck func(ctx context.Context, teamID, item string) (bool, error)

// WithLogging wraps a handler with request logging
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Log request
		slog.Info("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", GetClientIP(r),
		)

		// Call the next handler
		next(w, r)

		// Log completion
		duration := time.Since(start)
		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// Authenticated rejects requests without a valid session and stores the
// session's user in the request context. Browsers are sent to /login, JSON
// clients get a 401.
func Authenticated(lookup SessionLookup, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user *models.User
		if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
			user, err = lookup(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to look up session", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}

		if user == nil {
			if WantsJSON(r) {
				ErrorResponse(w, http.StatusUnauthorized, "Login required")
				return
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

// HasItem lets the request through only when the current user's team owns
// item. Must run inside Authenticated.
func HasItem(item string, check ItemCheck, forbidden func(w http.ResponseWriter, r *http.Request, item string), next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ok, err := check(r.Context(), user.TeamID, item)
		if err != nil {
			slog.Error("failed to check team item", "error", err, "item", item)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if !ok {
			slog.Warn("team is missing item", "user", user.Handle, "item", item)
			forbidden(w, r, item)
			return
		}

		next(w, r)
	}
}

// Debug traces a call at debug level before running it
func Debug(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := ""
		if user := CurrentUser(r); user != nil {
			handle = user.Handle
		}
		slog.Debug("debug call",
			"call", name,
			"method", r.Method,
			"path", r.URL.Path,
			"user", handle,
		)
		next(w, r)
	}
}

// WithUser returns a context carrying the authenticated user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the authenticated user, or nil outside Authenticated
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userKey).(*models.User)
	return user
}

// WantsJSON reports whether the client expects a JSON answer
func WantsJSON(r *http.Request) bool {
	if strings.Contains(r.URL.Path, "/json/") {
		return true
	}
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// GetClientIP extracts the client IP address
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr
func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For (load balancers)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take first IP in chain
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' || xff[i] == ' ' {
				return xff[:i]
			}
		}
		return xff
	}

	// Check X-Real-IP (nginx)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	// Strip port if present
	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
