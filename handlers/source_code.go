// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danielhkuo/blackmarket/cliparse"
	"github.com/danielhkuo/blackmarket/forms"
	"github.com/danielhkuo/blackmarket/metrics"
	"github.com/danielhkuo/blackmarket/middleware"
	"github.com/danielhkuo/blackmarket/models"
	"github.com/danielhkuo/blackmarket/views"
)

// unknownContentType is sent when the file name says nothing about the type
const unknownContentType = "unknown/data"

type SourceCodeMarketHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	views *views.Renderer
}

func NewSourceCodeMarketHandler(db *sql.DB, cfg cliparse.Config, renderer *views.Renderer) *SourceCodeMarketHandler {
	return &SourceCodeMarketHandler{db: db, cfg: cfg, views: renderer}
}

type marketBox struct {
	Box   models.Box
	Owned bool
}

type sourceCodeMarketPage struct {
	User   *models.User
	Boxes  []marketBox
	Errors []string
}

// Get handles GET /source_code_market
func (h *SourceCodeMarketHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, nil)
}

// Post handles POST /source_code_market
// Buys the source code of a box for the current user's team
func (h *SourceCodeMarketHandler) Post(w http.ResponseWriter, r *http.Request) {
	form := forms.New(forms.Field{Name: "box_uuid", Message: "Please select leaked code to buy"})
	if errs := form.Validate(r); len(errs) > 0 {
		h.renderPage(w, r, errs)
		return
	}

	ctx := r.Context()
	current := middleware.CurrentUser(r)

	var team *models.Team
	var box *models.Box
	err := withTx(ctx, h.db, func(tx *sql.Tx) error {
		var err error
		box, err = boxByUUID(ctx, tx, forms.Argument(r, "box_uuid", true))
		if err != nil {
			return err
		}
		if box == nil || box.SourceCode == nil {
			return userError("Box does not exist")
		}

		user, err := userByID(ctx, tx, current.ID)
		if err != nil {
			return err
		}
		if user == nil {
			return errUserGone
		}
		team = user.Team

		owned, err := teamOwnsSourceCode(ctx, tx, team.ID, box.SourceCode.ID)
		if err != nil {
			return err
		}
		if owned {
			return userError("You already own this code")
		}
		if box.SourceCode.Price > team.Money {
			return userError("You cannot afford to purchase this code")
		}

		return purchaseCode(ctx, tx, team, box.SourceCode)
	})

	var uerr userError
	if errors.As(err, &uerr) {
		h.renderPage(w, r, []string{uerr.Error()})
		return
	}
	if err != nil {
		slog.Error("failed to purchase source code", "error", err, "user", current.Handle)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	metrics.SourceCodePurchases.WithLabelValues(box.Name).Inc()
	slog.Info("source code purchased",
		"team", team.Name,
		"file", box.SourceCode.FileName,
		"price", box.SourceCode.Price,
	)
	http.Redirect(w, r, "/source_code_market", http.StatusFound)
}

// purchaseCode charges the team and records the purchase
func purchaseCode(ctx context.Context, tx *sql.Tx, team *models.Team, code *models.SourceCode) error {
	paid, err := debitMoney(ctx, tx, team.ID, abs(code.Price))
	if err != nil {
		return err
	}
	if !paid {
		return userError("You cannot afford to purchase this code")
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO team_source_code (team_id, source_code_id) VALUES ($1, $2)
	`, team.ID, code.ID)
	if err != nil {
		return fmt.Errorf("failed to record purchase: %w", err)
	}
	return nil
}

func (h *SourceCodeMarketHandler) renderPage(w http.ResponseWriter, r *http.Request, errs []string) {
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

	boxes, err := boxesWithSourceCode(ctx, h.db)
	if err != nil {
		slog.Error("failed to load boxes", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	owned, err := purchasedSourceCode(ctx, h.db, user.TeamID)
	if err != nil {
		slog.Error("failed to load purchases", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	market := make([]marketBox, 0, len(boxes))
	for _, box := range boxes {
		market = append(market, marketBox{Box: box, Owned: owned[box.SourceCode.ID]})
	}

	h.views.Render(w, http.StatusOK, "upgrades/source_code_market.html", sourceCodeMarketPage{
		User:   user,
		Boxes:  market,
		Errors: errs,
	})
}

// Download handles GET /source_code_market/download?uuid=
// Serves purchased source code as an attachment
func (h *SourceCodeMarketHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	box, err := boxByUUID(ctx, h.db, forms.Argument(r, "uuid", true))
	if err != nil {
		slog.Error("failed to query box", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if box == nil || box.SourceCode == nil {
		h.views.Render(w, http.StatusNotFound, "public/404.html", nil)
		return
	}

	owned, err := teamOwnsSourceCode(ctx, h.db, middleware.CurrentUser(r).TeamID, box.SourceCode.ID)
	if err != nil {
		slog.Error("failed to query purchases", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !owned {
		h.views.Render(w, http.StatusNotFound, "public/404.html", nil)
		return
	}

	// Files are named by the source code's uuid, never by user input
	encoded, err := os.ReadFile(filepath.Join(h.cfg.SourceCodeMarketDir, box.SourceCode.UUID))
	if err != nil {
		slog.Error("failed to read source code", "error", err, "uuid", box.SourceCode.UUID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(encoded)))
	if err != nil {
		slog.Error("failed to decode source code", "error", err, "uuid", box.SourceCode.UUID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", guessContentType(box.SourceCode.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", "attachment; filename="+box.SourceCode.FileName)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// guessContentType maps a file name's extension to a MIME type
func guessContentType(fileName string) string {
	if ct := mime.TypeByExtension(filepath.Ext(fileName)); ct != "" {
		return ct
	}
	return unknownContentType
}
