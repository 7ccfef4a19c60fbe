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
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/blackmarket/auth"
	"github.com/danielhkuo/blackmarket/cliparse"
	"github.com/danielhkuo/blackmarket/events"
	"github.com/danielhkuo/blackmarket/forms"
	"github.com/danielhkuo/blackmarket/metrics"
	"github.com/danielhkuo/blackmarket/middleware"
	"github.com/danielhkuo/blackmarket/models"
	"github.com/danielhkuo/blackmarket/views"
)

// SwatHandler lets users bribe the admins into raiding another user
type SwatHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	views  *views.Renderer
	events *events.Manager
}

func NewSwatHandler(db *sql.DB, cfg cliparse.Config, renderer *views.Renderer, ev *events.Manager) *SwatHandler {
	return &SwatHandler{db: db, cfg: cfg, views: renderer, events: ev}
}

type swatPage struct {
	User     *models.User
	Targets  []models.User
	Requests []models.SwatRequest
	Errors   []string
	Message  string
}

// Get handles GET /swat
func (h *SwatHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, nil, "")
}

// Post handles POST /swat
func (h *SwatHandler) Post(w http.ResponseWriter, r *http.Request) {
	form := forms.New(forms.Field{Name: "uuid", Message: "Please select a target to SWAT"})
	if errs := form.Validate(r); len(errs) > 0 {
		h.renderPage(w, r, errs, "")
		return
	}

	ctx := r.Context()
	current := middleware.CurrentUser(r)

	var target *models.User
	var bribe int64
	err := withTx(ctx, h.db, func(tx *sql.Tx) error {
		var err error
		target, err = userByUUID(ctx, tx, forms.Argument(r, "uuid", true))
		if err != nil {
			return err
		}
		if target == nil || target.TeamID == current.TeamID {
			return userError("Target user does not exist")
		}

		bribe, err = strconv.ParseInt(forms.Argument(r, "bribe", true), 10, 64)
		if err != nil {
			return userError("Invalid bribe amount, must be a number")
		}
		bribe = abs(bribe)
		if bribe == 0 {
			return userError("Bribe must be greater than $0")
		}

		user, err := userByID(ctx, tx, current.ID)
		if err != nil {
			return err
		}
		if user == nil {
			return errUserGone
		}
		if bribe >= user.Team.Money {
			return userError("You cannot afford a bribe this large")
		}

		return h.swat(ctx, tx, user, target, bribe)
	})

	var uerr userError
	if errors.As(err, &uerr) {
		h.renderPage(w, r, []string{uerr.Error()}, "")
		return
	}
	if err != nil {
		slog.Error("failed to request swat", "error", err, "user", current.Handle)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	metrics.SwatRequests.Inc()
	h.renderPage(w, r, nil, fmt.Sprintf("The admins accepted your bribe of $%d to SWAT %s", bribe, target.Handle))
}

// swat pays the bribe and files a pending request for the admins
func (h *SwatHandler) swat(ctx context.Context, tx *sql.Tx, user, target *models.User, bribe int64) error {
	paid, err := debitMoney(ctx, tx, user.TeamID, bribe)
	if err != nil {
		return err
	}
	if !paid {
		return userError("You cannot afford a bribe this large")
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO swat_request (id, uuid, user_id, target_id, bribe, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, uuid.NewString(), user.ID, target.ID, bribe, models.SwatPending, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert swat request: %w", err)
	}

	return h.events.SwatRequested(ctx, tx, user, target, bribe)
}

func (h *SwatHandler) renderPage(w http.ResponseWriter, r *http.Request, errs []string, message string) {
	ctx := r.Context()

	user, err := userByID(ctx, h.db, middleware.CurrentUser(r).ID)
	if err == nil && user == nil {
		err = errUserGone
	}
	if err != nil {
		slog.Error("failed to load user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	users, err := allUsers(ctx, h.db)
	if err != nil {
		slog.Error("failed to load targets", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	targets := []models.User{}
	for _, u := range users {
		if u.TeamID != user.TeamID {
			targets = append(targets, u)
		}
	}

	requests, err := swatRequestsBy(ctx, h.db, user.ID)
	if err != nil {
		slog.Error("failed to load swat requests", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.views.Render(w, http.StatusOK, "upgrades/swat.html", swatPage{
		User:     user,
		Targets:  targets,
		Requests: requests,
		Errors:   errs,
		Message:  message,
	})
}

// swatRequestsBy returns the requests a user paid for, newest first
func swatRequestsBy(ctx context.Context, q querier, userID string) ([]models.SwatRequest, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, uuid, user_id, target_id, bribe, status, created_at
		FROM swat_request
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query swat requests: %w", err)
	}
	defer rows.Close()

	requests := []models.SwatRequest{}
	for rows.Next() {
		var req models.SwatRequest
		var createdAt int64
		if err := rows.Scan(&req.ID, &req.UUID, &req.UserID, &req.TargetID, &req.Bribe, &req.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan swat request: %w", err)
		}
		req.CreatedAt = time.Unix(createdAt, 0)
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
