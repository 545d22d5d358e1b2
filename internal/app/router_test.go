package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arguide/backoffice/internal/console"
	"github.com/arguide/backoffice/internal/observability"
	"github.com/arguide/backoffice/internal/resources/all"
	"github.com/arguide/backoffice/internal/resources/resourcetest"
	"github.com/arguide/backoffice/internal/session"
	"github.com/arguide/backoffice/internal/view"
)

func newTestRouter(t *testing.T) (http.Handler, *resourcetest.Backend) {
	t.Helper()
	backend := resourcetest.New(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry, err := all.Registry()
	require.NoError(t, err)
	templates, err := view.NewEngine()
	require.NoError(t, err)
	csrf := session.NewCSRF("csrf")
	metrics := observability.NewMetrics()

	h, err := console.New(console.Options{
		Registry:  registry,
		API:       backend.Client(),
		Templates: templates,
		CSRF:      csrf,
		Logger:    logger,
		Observer:  metrics,
	})
	require.NoError(t, err)

	return NewRouter(RouterParams{
		Logger:         logger,
		Config:         &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second},
		SessionManager: session.NewManager(client, "bo_session", "secret", time.Hour, false),
		CSRF:           csrf,
		Console:        h,
		Metrics:        metrics,
	}), backend
}

var csrfField = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func TestHealthAndMetricsSkipSessions(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestPostWithoutCSRFTokenIsForbidden(t *testing.T) {
	router, backend := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a%40b.io&password=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, backend.Requests())
}

func TestLoginWithCSRFTokenThenBrowse(t *testing.T) {
	router, backend := newTestRouter(t)
	backend.Result(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"accessToken": "tok",
		"user":        map[string]any{"id": "u1", "name": "Mina", "role": "ADMIN"},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	match := csrfField.FindStringSubmatch(rec.Body.String())
	require.Len(t, match, 2)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	form := url.Values{"email": {"mina@arguide.io"}, "password": {"pw"}, "csrf_token": {match[1]}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/r/courses", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mina")
}
