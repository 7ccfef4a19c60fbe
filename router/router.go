// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/blackmarket/cliparse"
	"github.com/danielhkuo/blackmarket/events"
	"github.com/danielhkuo/blackmarket/handlers"
	"github.com/danielhkuo/blackmarket/middleware"
	"github.com/danielhkuo/blackmarket/models"
	"github.com/danielhkuo/blackmarket/views"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) (*http.ServeMux, error) {
	renderer, err := views.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	ev := events.NewManager()

	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(db, cfg, renderer)
	passwordHandler := handlers.NewPasswordSecurityHandler(db, cfg, renderer)
	reserveHandler := handlers.NewFederalReserveHandler(db, cfg, renderer, ev)
	marketHandler := handlers.NewSourceCodeMarketHandler(db, cfg, renderer)
	swatHandler := handlers.NewSwatHandler(db, cfg, renderer, ev)

	lookup := handlers.LookupSession(db)
	check := handlers.TeamHasItem(db)
	forbidden := handlers.Forbidden(renderer)

	// upgrade guards a Black Market page: logged in, and the team owns item
	upgrade := func(item string, next http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.Authenticated(lookup, middleware.HasItem(item, check, forbidden, next)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Sessions
	mux.HandleFunc("GET /login", middleware.WithLogging(sessionHandler.LoginPage))
	mux.HandleFunc("POST /login", middleware.WithLogging(sessionHandler.Login))
	mux.HandleFunc("POST /logout", middleware.WithLogging(sessionHandler.Logout))

	// Password Security
	mux.HandleFunc("GET /password_security", upgrade(models.ItemPasswordSecurity, passwordHandler.Get))
	mux.HandleFunc("POST /password_security", upgrade(models.ItemPasswordSecurity, passwordHandler.Post))

	// Federal Reserve
	mux.HandleFunc("GET /federal_reserve", upgrade(models.ItemFederalReserve, reserveHandler.Page))
	mux.HandleFunc("GET /federal_reserve/json/{command...}", upgrade(models.ItemFederalReserve, reserveHandler.Command))
	mux.HandleFunc("POST /federal_reserve/json/{command...}", upgrade(models.ItemFederalReserve, reserveHandler.Command))

	// Source Code Market
	mux.HandleFunc("GET /source_code_market", upgrade(models.ItemSourceCodeMarket, marketHandler.Get))
	mux.HandleFunc("POST /source_code_market", upgrade(models.ItemSourceCodeMarket, marketHandler.Post))
	mux.HandleFunc("GET /source_code_market/download", upgrade(models.ItemSourceCodeMarket, marketHandler.Download))

	// SWAT
	mux.HandleFunc("GET /swat", upgrade(models.ItemSWAT, swatHandler.Get))
	mux.HandleFunc("POST /swat", upgrade(models.ItemSWAT, swatHandler.Post))

	// Everything else
	mux.HandleFunc("/", handlers.NotFound(renderer))

	return mux, nil
}
