// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Black Market.

# Route Registration

NewRouter loads the templates and returns a configured http.ServeMux:

	mux, err := router.NewRouter(db, cfg)

# Endpoints

Public:

	GET  /health  - Liveness probe
	GET  /metrics - Prometheus metrics
	GET  /login   - Login form
	POST /login   - Start a session
	POST /logout  - End the session

Upgrades (session required, and the team must own the item):

	GET|POST /password_security               - Password Security
	GET      /federal_reserve                 - Federal Reserve
	GET|POST /federal_reserve/json/{command}  - Federal Reserve (ls, info, xfer)
	GET|POST /source_code_market              - Source Code Market
	GET      /source_code_market/download     - Source Code Market
	GET|POST /swat                            - SWAT

Anything else renders the 404 page.
*/
package router
