// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# Sessions and Items

Authenticated resolves the session cookie and stores the user in the
request context. HasItem then checks that the user's team owns an item:

	middleware.Authenticated(lookup,
		middleware.HasItem(models.ItemSWAT, check, forbidden, handler))

Read the user back with CurrentUser(r).

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

# Client IP Extraction

	ip := middleware.GetClientIP(r)
*/
package middleware
