// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/blackmarket/auth"
	"github.com/danielhkuo/blackmarket/cliparse"
	"github.com/danielhkuo/blackmarket/forms"
	"github.com/danielhkuo/blackmarket/middleware"
	"github.com/danielhkuo/blackmarket/models"
	"github.com/danielhkuo/blackmarket/views"
)

type SessionHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	views *views.Renderer
}

func NewSessionHandler(db *sql.DB, cfg cliparse.Config, renderer *views.Renderer) *SessionHandler {
	return &SessionHandler{db: db, cfg: cfg, views: renderer}
}

type loginPage struct {
	Handle string
	Errors []string
}

// LoginPage handles GET /login
func (h *SessionHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, "public/login.html", loginPage{})
}

// Login handles POST /login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	form := forms.New(
		forms.Field{Name: "handle", Message: "Enter your handle"},
		forms.Field{Name: "password", Message: "Enter your password"},
	)
	if errs := form.Validate(r); len(errs) > 0 {
		h.views.Render(w, http.StatusOK, "public/login.html", loginPage{
			Handle: forms.Argument(r, "handle", true),
			Errors: errs,
		})
		return
	}

	handle := forms.Argument(r, "handle", true)
	user, err := userByHandle(r.Context(), h.db, handle)
	if err != nil {
		slog.Error("failed to query user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user == nil || !auth.ValidatePassword(user.Algorithm, user.Password, forms.Argument(r, "password", true)) {
		slog.Warn("failed login", "handle", handle, "remote", middleware.GetClientIP(r))
		h.views.Render(w, http.StatusOK, "public/login.html", loginPage{
			Handle: handle,
			Errors: []string{"Invalid handle or password"},
		})
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		slog.Error("failed to generate session token", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	expires := time.Now().Add(h.cfg.SessionTTL)
	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO session (token, user_id, expires_at) VALUES ($1, $2, $3)
	`, token, user.ID, expires.Unix())
	if err != nil {
		slog.Error("failed to insert session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Info("user logged in", "handle", user.Handle, "team", user.Team.Name)
	http.Redirect(w, r, "/password_security", http.StatusFound)
}

// Logout handles POST /logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		_, err := h.db.ExecContext(r.Context(), `DELETE FROM session WHERE token = $1`, cookie.Value)
		if err != nil {
			slog.Error("failed to delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusFound)
}

// LookupSession resolves session tokens against the session table.
// Expired sessions are deleted on sight.
func LookupSession(db *sql.DB) middleware.SessionLookup {
	return func(ctx context.Context, token string) (*models.User, error) {
		var userID string
		var expiresAt int64
		err := db.QueryRowContext(ctx, `
			SELECT user_id, expires_at FROM session WHERE token = $1
		`, token).Scan(&userID, &expiresAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query session: %w", err)
		}

		if time.Now().Unix() >= expiresAt {
			if _, err := db.ExecContext(ctx, `DELETE FROM session WHERE token = $1`, token); err != nil {
				slog.Warn("failed to delete expired session", "error", err)
			}
			return nil, nil
		}

		return userByID(ctx, db, userID)
	}
}

// TeamHasItem checks the team_item table
func TeamHasItem(db *sql.DB) middleware.ItemCheck {
	return func(ctx context.Context, teamID, item string) (bool, error) {
		var n int
		err := db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM team_item WHERE team_id = $1 AND item_name = $2
		`, teamID, item).Scan(&n)
		if err != nil {
			return false, fmt.Errorf("failed to query team items: %w", err)
		}
		return n > 0, nil
	}
}
