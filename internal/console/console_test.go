package console

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/arguide/backoffice/internal/platform/cache"
	"github.com/arguide/backoffice/internal/resources/all"
	"github.com/arguide/backoffice/internal/resources/resourcetest"
	"github.com/arguide/backoffice/internal/session"
	"github.com/arguide/backoffice/internal/view"
)

type fixture struct {
	t       *testing.T
	backend *resourcetest.Backend
	manager *session.Manager
	router  http.Handler
	cookie  *http.Cookie
}

func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	t.Helper()
	backend := resourcetest.New(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	registry, err := all.Registry()
	require.NoError(t, err)
	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	opts := Options{
		Registry:  registry,
		API:       backend.Client(),
		Templates: templates,
		CSRF:      session.NewCSRF("csrf-secret"),
		Logger:    logger,
		Counters:  cache.NewCache(client, "dashboard", time.Minute),
		NewToken:  func() (string, error) { return "tok-1", nil },
	}
	for _, fn := range configure {
		fn(&opts)
	}
	h, err := New(opts)
	require.NoError(t, err)

	manager := session.NewManager(client, "bo_session", "session-secret", time.Hour, false)
	r := chi.NewRouter()
	r.Use(manager.Middleware(logger))
	h.MountRoutes(r)
	return &fixture{t: t, backend: backend, manager: manager, router: r}
}

// signIn stores a session for an operator holding user-token.
func (f *fixture) signIn() {
	f.t.Helper()
	sess, err := f.manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(f.t, err)
	session.Login(sess, session.UserInfo{ID: "u1", Name: "Mina", Email: "mina@arguide.io", Role: "ADMIN", AccessToken: "user-token"})
	rec := httptest.NewRecorder()
	require.NoError(f.t, f.manager.Commit(context.Background(), rec, sess))
	f.cookie = rec.Result().Cookies()[0]
}

func (f *fixture) get(target string) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (f *fixture) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(req)
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	f.t.Helper()
	if f.cookie != nil {
		req.AddCookie(f.cookie)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			f.cookie = nil
			continue
		}
		f.cookie = c
	}
	return rec
}

// session loads the fixture's current session.
func (f *fixture) session() *session.Session {
	f.t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if f.cookie != nil {
		req.AddCookie(f.cookie)
	}
	sess, err := f.manager.Load(context.Background(), req)
	require.NoError(f.t, err)
	return sess
}
