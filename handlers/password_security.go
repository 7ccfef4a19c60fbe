// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/danielhkuo/blackmarket/auth"
	"github.com/danielhkuo/blackmarket/cliparse"
	"github.com/danielhkuo/blackmarket/forms"
	"github.com/danielhkuo/blackmarket/metrics"
	"github.com/danielhkuo/blackmarket/middleware"
	"github.com/danielhkuo/blackmarket/models"
	"github.com/danielhkuo/blackmarket/views"
)

// userError is a validation failure shown to the player as is
type userError string

func (e userError) Error() string { return string(e) }

// errUserGone means the session outlived its user
var errUserGone = errors.New("current user no longer exists")

type PasswordSecurityHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	views *views.Renderer
}

func NewPasswordSecurityHandler(db *sql.DB, cfg cliparse.Config, renderer *views.Renderer) *PasswordSecurityHandler {
	return &PasswordSecurityHandler{db: db, cfg: cfg, views: renderer}
}

type passwordSecurityPage struct {
	User      *models.User
	Cost      int64
	Next      string
	Strongest bool
	MaxLength int
	Errors    []string
}

// Get handles GET /password_security
func (h *PasswordSecurityHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, nil)
}

// Post handles POST /password_security
// Charges the team and moves the user to the next hashing algorithm
func (h *PasswordSecurityHandler) Post(w http.ResponseWriter, r *http.Request) {
	form := forms.New(
		forms.Field{Name: "old_password", Message: "Enter your existing password"},
		forms.Field{Name: "new_password1", Message: "Enter a new password"},
		forms.Field{Name: "new_password2", Message: "Confirm your new password"},
	)
	if errs := form.Validate(r); len(errs) > 0 {
		h.renderPage(w, r, errs)
		return
	}

	current := middleware.CurrentUser(r)
	oldPasswd := forms.Argument(r, "old_password", true)
	passwd := forms.Argument(r, "new_password1", true)
	confirm := forms.Argument(r, "new_password2", true)

	var algorithm string
	err := withTx(r.Context(), h.db, func(tx *sql.Tx) error {
		user, err := userByID(r.Context(), tx, current.ID)
		if err != nil {
			return err
		}
		if user == nil {
			return errUserGone
		}

		switch {
		case !auth.ValidatePassword(user.Algorithm, user.Password, oldPasswd):
			return userError("Invalid password")
		case passwd != confirm:
			return userError("New passwords do not match")
		case user.Team.Money < h.cfg.PasswordUpgradeCost:
			return userError("You cannot afford to upgrade your hash")
		case utf8.RuneCountInString(passwd) > h.cfg.MaxPasswordLength:
			return userError("New password is too long")
		}

		algorithm = auth.NextAlgorithm(user.Algorithm)
		hashed, err := auth.HashPassword(algorithm, passwd)
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return userError("New password is too long")
		}
		if err != nil {
			return err
		}

		paid, err := debitMoney(r.Context(), tx, user.TeamID, h.cfg.PasswordUpgradeCost)
		if err != nil {
			return err
		}
		if !paid {
			return userError("You cannot afford to upgrade your hash")
		}
		_, err = tx.ExecContext(r.Context(), `
			UPDATE app_user SET algorithm = $1, password = $2 WHERE id = $3
		`, algorithm, hashed, user.ID)
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return nil
	})

	var uerr userError
	if errors.As(err, &uerr) {
		h.renderPage(w, r, []string{uerr.Error()})
		return
	}
	if err != nil {
		slog.Error("failed to upgrade password", "error", err, "user", current.Handle)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	metrics.PasswordUpgrades.WithLabelValues(algorithm).Inc()
	slog.Info("password upgraded", "user", current.Handle, "algorithm", algorithm)
	h.renderPage(w, r, nil)
}

func (h *PasswordSecurityHandler) renderPage(w http.ResponseWriter, r *http.Request, errs []string) {
	user, err := userByID(r.Context(), h.db, middleware.CurrentUser(r).ID)
	if err == nil && user == nil {
		err = errUserGone
	}
	if err != nil {
		slog.Error("failed to load user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.views.Render(w, http.StatusOK, "upgrades/password_security.html", passwordSecurityPage{
		User:      user,
		Cost:      h.cfg.PasswordUpgradeCost,
		Next:      auth.NextAlgorithm(user.Algorithm),
		Strongest: auth.IsStrongest(user.Algorithm),
		MaxLength: h.cfg.MaxPasswordLength,
		Errors:    errs,
	})
}
