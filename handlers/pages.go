// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/blackmarket/views"
)

// NotFound renders the public 404 page
func NotFound(renderer *views.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderer.Render(w, http.StatusNotFound, "public/404.html", nil)
	}
}

// Forbidden renders the 403 page naming the item the team is missing
func Forbidden(renderer *views.Renderer) func(w http.ResponseWriter, r *http.Request, item string) {
	return func(w http.ResponseWriter, r *http.Request, item string) {
		renderer.Render(w, http.StatusForbidden, "public/403.html", item)
	}
}
