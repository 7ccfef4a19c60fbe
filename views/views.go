// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates
var templateFS embed.FS

// Renderer executes the embedded page templates. Every page is parsed
// together with the shared partials so pages may call "header", "errors"
// and "footer".
type Renderer struct {
	pages map[string]*template.Template
}

// markupPolicy allows the formatting admins use in source code descriptions
var markupPolicy = bluemonday.UGCPolicy()

var funcs = template.FuncMap{
	"money":  func(v int64) string { return fmt.Sprintf("$%d", v) },
	"markup": Markup,
}

// Markup sanitises s and marks the rest as safe HTML
func Markup(s string) template.HTML {
	return template.HTML(markupPolicy.Sanitize(s))
}

// New parses all page templates. Page names are their paths below
// templates/, e.g. "upgrades/swat.html".
func New() (*Renderer, error) {
	partials, err := template.New("partials").Funcs(funcs).ParseFS(templateFS, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse partials: %w", err)
	}

	pages := make(map[string]*template.Template)
	err = fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".html") || strings.HasPrefix(p, "templates/partials/") {
			return nil
		}

		t, err := partials.Clone()
		if err != nil {
			return err
		}
		if _, err := t.ParseFS(templateFS, p); err != nil {
			return fmt.Errorf("failed to parse %s: %w", p, err)
		}
		pages[strings.TrimPrefix(p, "templates/")] = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Renderer{pages: pages}, nil
}

// Render writes the named page with the given status. The page is rendered
// to a buffer first so a template error still produces a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.pages[name]
	if !ok {
		slog.Error("unknown template", "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, path.Base(name), data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Has reports whether a page with the given name exists
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}
