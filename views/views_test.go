// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/blackmarket/models"
)

func TestNewParsesAllPages(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for _, name := range []string{
		"public/403.html",
		"public/404.html",
		"public/login.html",
		"upgrades/password_security.html",
		"upgrades/federal_reserve.html",
		"upgrades/source_code_market.html",
		"upgrades/swat.html",
	} {
		assert.True(t, r.Has(name), "missing page %s", name)
	}
	assert.False(t, r.Has("partials/layout.html"))
}

func TestRender(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	t.Run("page with data", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.Render(w, http.StatusForbidden, "public/403.html", models.ItemSWAT)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "<strong>SWAT</strong>")
	})

	t.Run("account balance", func(t *testing.T) {
		user := &models.User{
			Handle:    "alice",
			Algorithm: "md5",
			Team:      &models.Team{Name: "Blue", Money: 4200},
		}
		w := httptest.NewRecorder()
		r.Render(w, http.StatusOK, "upgrades/federal_reserve.html", struct {
			User          *models.User
			Notifications []models.Notification
		}{User: user})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "$4200")
	})

	t.Run("escapes user text", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.Render(w, http.StatusOK, "public/login.html", struct {
			Handle string
			Errors []string
		}{Handle: `"><script>`, Errors: []string{"<b>bad</b>"}})

		assert.NotContains(t, w.Body.String(), "<script>")
		assert.NotContains(t, w.Body.String(), "<b>bad</b>")
	})

	t.Run("unknown page", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.Render(w, http.StatusOK, "public/missing.html", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("bad data", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.Render(w, http.StatusOK, "upgrades/swat.html", 42)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestMarkup(t *testing.T) {
	assert.Equal(t, template.HTML("<b>root shell</b>"), Markup("<b>root shell</b>"))
	assert.NotContains(t, string(Markup(`<script>alert(1)</script>leak`)), "<script>")
	assert.NotContains(t, string(Markup(`<img src=x onerror="alert(1)">`)), "onerror")
}
