// Package view renders the console HTML pages.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/session"
	"github.com/arguide/backoffice/web"
)

// Engine renders HTML templates. Every page is parsed into its own clone of
// the layouts and partials so pages can each define "content".
type Engine struct {
	pages map[string]*template.Template
}

// NavItem is one entry of the side navigation.
type NavItem struct {
	Href   string
	Label  string
	Active bool
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flashes     []session.Flash
	CurrentPath string
	User        *session.UserInfo
	Nav         []NavItem
	Data        any
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"toneClass": func(t listctl.Tone) string {
			if t == "" {
				return "tone-neutral"
			}
			return "tone-" + string(t)
		},
		"inc":      func(n int) int { return n + 1 },
		"dec":      func(n int) int { return n - 1 },
		"selected": func(a, b string) bool { return a == b },
	}
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	return NewEngineFS(web.Templates)
}

// NewEngineFS parses templates from fsys, which must hold a templates/
// directory with layouts, partials and pages.
func NewEngineFS(fsys fs.FS) (*Engine, error) {
	base, err := template.New("root").Funcs(Funcs()).ParseFS(fsys, "templates/layouts/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, err
	}
	names, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	e := &Engine{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		page, err := clone.ParseFS(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", name, err)
		}
		e.pages[strings.TrimSuffix(path.Base(name), ".html")] = page
	}
	return e, nil
}

// Has reports whether page exists.
func (e *Engine) Has(page string) bool {
	_, ok := e.pages[page]
	return ok
}

// Render executes page within the base layout and writes it with status.
// The page is rendered to a buffer first so template errors never leave a
// half-written response.
func (e *Engine) Render(w http.ResponseWriter, status int, page string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	tpl, ok := e.pages[page]
	if !ok {
		return fmt.Errorf("view: unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
