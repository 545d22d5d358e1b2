package view

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arguide/backoffice/internal/session"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err, "Templates should parse without error")
	for _, page := range []string{"login", "dashboard", "list", "chat", "error"} {
		assert.True(t, engine.Has(page), page)
	}
}

func TestPagesDoNotShareContent(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/layouts/base.html":  {Data: []byte(`{{define "base"}}<title>{{.Title}}</title>{{template "content" .}}{{end}}`)},
		"templates/partials/note.html": {Data: []byte(`{{define "note"}}[{{.}}]{{end}}`)},
		"templates/pages/a.html":       {Data: []byte(`{{define "content"}}A{{template "note" "x"}}{{end}}`)},
		"templates/pages/b.html":       {Data: []byte(`{{define "content"}}B{{end}}`)},
	}
	engine, err := NewEngineFS(fsys)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, engine.Render(rec, http.StatusOK, "a", TemplateData{Title: "One"}))
	assert.Equal(t, "<title>One</title>A[x]", rec.Body.String())

	rec = httptest.NewRecorder()
	require.NoError(t, engine.Render(rec, http.StatusUnprocessableEntity, "b", TemplateData{Title: "Two"}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "<title>Two</title>B", rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestRenderFailureWritesNothing(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/layouts/base.html":  {Data: []byte(`{{define "base"}}{{template "content" .}}{{end}}`)},
		"templates/partials/none.html": {Data: []byte(``)},
		"templates/pages/bad.html":     {Data: []byte(`{{define "content"}}{{.Data.Missing}}{{end}}`)},
	}
	engine, err := NewEngineFS(fsys)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, http.StatusOK, "bad", TemplateData{Data: 3})
	require.Error(t, err)
	assert.Empty(t, rec.Body.String())

	assert.Error(t, engine.Render(httptest.NewRecorder(), http.StatusOK, "missing", TemplateData{}))
}

func TestLayoutShowsFlashes(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	err = engine.Render(rec, http.StatusOK, "login", TemplateData{
		Title:   "Sign in",
		Flashes: []session.Flash{{Kind: "error", Message: "Session expired"}},
		Data:    map[string]any{},
	})
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), "Session expired")
	assert.Contains(t, rec.Body.String(), `class="toast toast-error"`)
}
