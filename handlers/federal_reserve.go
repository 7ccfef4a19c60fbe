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
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/blackmarket/auth"
	"github.com/danielhkuo/blackmarket/cliparse"
	"github.com/danielhkuo/blackmarket/events"
	"github.com/danielhkuo/blackmarket/forms"
	"github.com/danielhkuo/blackmarket/metrics"
	"github.com/danielhkuo/blackmarket/middleware"
	"github.com/danielhkuo/blackmarket/models"
	"github.com/danielhkuo/blackmarket/views"
)

// payoutRate is what reaches the destination account; the reserve keeps 15%
var payoutRate = decimal.RequireFromString("0.85")

// recentNotifications is how many notifications the reserve page shows
const recentNotifications = 10

type FederalReserveHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	views    *views.Renderer
	events   *events.Manager
	commands map[string]http.HandlerFunc
}

func NewFederalReserveHandler(db *sql.DB, cfg cliparse.Config, renderer *views.Renderer, ev *events.Manager) *FederalReserveHandler {
	h := &FederalReserveHandler{db: db, cfg: cfg, views: renderer, events: ev}
	h.commands = map[string]http.HandlerFunc{
		"ls":   middleware.Debug("ls", h.ls),         // Query
		"info": middleware.Debug("info", h.info),     // Report
		"xfer": middleware.Debug("xfer", h.transfer), // Transfer
	}
	return h
}

type federalReservePage struct {
	User          *models.User
	Notifications []models.Notification
}

// Page handles GET /federal_reserve
func (h *FederalReserveHandler) Page(w http.ResponseWriter, r *http.Request) {
	user, err := userByID(r.Context(), h.db, middleware.CurrentUser(r).ID)
	if err == nil && user == nil {
		err = errUserGone
	}
	if err != nil {
		slog.Error("failed to load user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	notifications, err := events.Recent(r.Context(), h.db, user.ID, recentNotifications)
	if err != nil {
		slog.Error("failed to load notifications", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.views.Render(w, http.StatusOK, "upgrades/federal_reserve.html", federalReservePage{
		User:          user,
		Notifications: notifications,
	})
}

// Command handles GET and POST /federal_reserve/json/{command}
func (h *FederalReserveHandler) Command(w http.ResponseWriter, r *http.Request) {
	if command, ok := h.commands[r.PathValue("command")]; ok {
		command(w, r)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ReserveResponse{Error: "No argument"})
}

// requireArgument reads a mandatory form or query argument, trimmed,
// answering 400 when it is absent
func requireArgument(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	if err := r.ParseForm(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form data")
		return "", false
	}
	v, ok := forms.Lookup(r, name, true)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing argument "+name)
		return "", false
	}
	return v, true
}

// ls lists account names or every user with their password hash
func (h *FederalReserveHandler) ls(w http.ResponseWriter, r *http.Request) {
	data, ok := requireArgument(w, r, "data")
	if !ok {
		return
	}

	switch strings.ToLower(data) {
	case "accounts":
		teams, err := allTeams(r.Context(), h.db)
		if err != nil {
			slog.Error("failed to list accounts", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		names := make([]string, 0, len(teams))
		for _, team := range teams {
			names = append(names, team.Name)
		}
		middleware.JSONResponse(w, http.StatusOK, models.AccountsResponse{Accounts: names})

	case "users":
		users, err := allUsers(r.Context(), h.db)
		if err != nil {
			slog.Error("failed to list users", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		accounts := make(map[string]models.UserAccount, len(users))
		for _, user := range users {
			accounts[user.Handle] = models.UserAccount{
				Account:   user.Team.Name,
				Algorithm: user.Algorithm,
				Password:  user.Password,
			}
		}
		middleware.JSONResponse(w, http.StatusOK, models.UsersResponse{Users: accounts})

	default:
		middleware.JSONResponse(w, http.StatusOK, models.InvalidDataResponse{Error: "Invalid data type"})
	}
}

// info reports an account's balance and members
func (h *FederalReserveHandler) info(w http.ResponseWriter, r *http.Request) {
	name, ok := requireArgument(w, r, "account")
	if !ok {
		return
	}

	team, err := teamByName(r.Context(), h.db, name)
	if err != nil {
		slog.Error("failed to query account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if team == nil {
		middleware.JSONResponse(w, http.StatusOK, models.ReserveResponse{Error: "Account does not exist"})
		return
	}

	handles, err := teamMemberHandles(r.Context(), h.db, team.ID)
	if err != nil {
		slog.Error("failed to query account members", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AccountInfoResponse{
		Name:    team.Name,
		Balance: team.Money,
		Users:   handles,
	})
}

// transfer moves money out of the account of a user whose password the
// caller has cracked
func (h *FederalReserveHandler) transfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.CurrentUser(r)

	amount, err := strconv.ParseInt(forms.Argument(r, "amount", true), 10, 64)
	if err != nil {
		amount = 0
	}
	password := forms.Argument(r, "password", true)

	var value int64
	var destinationName string
	err = withTx(ctx, h.db, func(tx *sql.Tx) error {
		source, err := teamByName(ctx, tx, forms.Argument(r, "source", true))
		if err != nil {
			return err
		}
		destination, err := teamByName(ctx, tx, forms.Argument(r, "destination", true))
		if err != nil {
			return err
		}
		victim, err := userByHandle(ctx, tx, forms.Argument(r, "user", true))
		if err != nil {
			return err
		}

		// Validate what we got from the user
		switch {
		case source == nil:
			return userError("Source account does not exist")
		case destination == nil:
			return userError("Destination account does not exist")
		case victim == nil || victim.TeamID != source.ID:
			return userError("User is not authorized for this account")
		case victim.TeamID == caller.TeamID:
			return userError("You cannot steal from your own team")
		case !(0 < amount && amount <= source.Money):
			return userError(fmt.Sprintf(
				"Invalid transfer amount; must be greater than 0 and less than $%d", source.Money,
			))
		case destination.ID == source.ID:
			return userError("Source and destination are the same account")
		case !auth.ValidatePassword(victim.Algorithm, victim.Password, password):
			return userError("Incorrect password for account, try again")
		}

		slog.Info("transfer request",
			"source", source.Name,
			"destination", destination.Name,
			"amount", amount,
			"user", caller.Handle,
		)
		destinationName = destination.Name
		value, err = h.theft(ctx, tx, caller, victim, destination, amount, password)
		return err
	})

	var uerr userError
	if errors.As(err, &uerr) {
		metrics.Transfers.WithLabelValues("rejected").Inc()
		middleware.JSONResponse(w, http.StatusOK, models.ReserveResponse{Error: uerr.Error()})
		return
	}
	if err != nil {
		slog.Error("failed to transfer money", "error", err, "user", caller.Handle)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Transfer failed")
		return
	}

	metrics.Transfers.WithLabelValues("success").Inc()
	metrics.TransferredMoney.Add(float64(value))
	middleware.JSONResponse(w, http.StatusOK, models.ReserveResponse{
		Success: fmt.Sprintf("Confirmed transfer to '%s' for $%d (after 15%% commission)", destinationName, value),
	})
}

// theft debits the victim's team, credits the destination minus commission
// and puts the victim on the wall of sheep. Returns the credited value.
func (h *FederalReserveHandler) theft(ctx context.Context, tx *sql.Tx, cracker, victim *models.User, destination *models.Team, amount int64, password string) (int64, error) {
	amount = abs(amount)
	value := afterCommission(amount)

	taken, err := debitMoney(ctx, tx, victim.TeamID, amount)
	if err != nil {
		return 0, err
	}
	if !taken {
		return 0, userError("Invalid transfer amount; must be greater than 0 and less than the account balance")
	}
	if err := adjustMoney(ctx, tx, destination.ID, value); err != nil {
		return 0, err
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		return 0, err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO wall_of_sheep (id, preimage, cracker_id, victim_id, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, password, cracker.ID, victim.ID, value, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert wall of sheep entry: %w", err)
	}

	if err := h.events.CrackedPassword(ctx, tx, cracker, victim, value); err != nil {
		return 0, err
	}
	return value, nil
}

// afterCommission returns floor(|amount| * 0.85)
func afterCommission(amount int64) int64 {
	return decimal.NewFromInt(abs(amount)).Mul(payoutRate).Floor().IntPart()
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
