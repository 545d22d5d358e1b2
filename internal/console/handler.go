// Package console serves the operator back office: sign-in, the review
// dashboard, one list page per registered resource with its confirmation
// dialogs, PDF export and the revision request chat.
package console

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/platform/cache"
	"github.com/arguide/backoffice/internal/platform/httpx"
	"github.com/arguide/backoffice/internal/resources"
	"github.com/arguide/backoffice/internal/session"
	"github.com/arguide/backoffice/internal/view"
	"github.com/arguide/backoffice/report"
)

const (
	exportRateLimit  = 10
	exportRateWindow = time.Minute
)

// Options are the console collaborators.
type Options struct {
	Registry  *resources.Registry
	API       *apiclient.Client
	Templates *view.Engine
	CSRF      *session.CSRF
	Logger    *slog.Logger
	Observer  listctl.Observer
	Guard     resources.Guard
	Auditor   resources.Auditor
	// Counters caches dashboard review counts per operator.
	Counters *cache.Cache
	// Reports enables PDF export when set.
	Reports  *report.Renderer
	Validate *validator.Validate
	PageSize int
	NewToken func() (string, error)
}

// Handler serves the console routes.
type Handler struct {
	registry  *resources.Registry
	api       *apiclient.Client
	templates *view.Engine
	csrf      *session.CSRF
	logger    *slog.Logger
	observer  listctl.Observer
	guard     resources.Guard
	auditor   resources.Auditor
	counters  *cache.Cache
	reports   *report.Renderer
	validate  *validator.Validate
	pageSize  int
	newToken  func() (string, error)
}

// New validates opts and builds the handler.
func New(opts Options) (*Handler, error) {
	if opts.Registry == nil {
		return nil, errors.New("console: registry required")
	}
	if opts.Templates == nil {
		return nil, errors.New("console: templates required")
	}
	if opts.CSRF == nil {
		return nil, errors.New("console: csrf required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	validate := opts.Validate
	if validate == nil {
		validate = listctl.NewValidator()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = listctl.DefaultPageSize
	}
	return &Handler{
		registry:  opts.Registry,
		api:       opts.API,
		templates: opts.Templates,
		csrf:      opts.CSRF,
		logger:    logger,
		observer:  opts.Observer,
		guard:     opts.Guard,
		auditor:   opts.Auditor,
		counters:  opts.Counters,
		reports:   opts.Reports,
		validate:  validate,
		pageSize:  pageSize,
		newToken:  opts.NewToken,
	}, nil
}

// MountRoutes registers the console routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(h.requireUser)
		r.Get("/", h.dashboard)
		r.Route("/r/{resource}", func(r chi.Router) {
			r.Get("/", h.list)
			r.Post("/search", h.search)
			r.Post("/rows/{id}/actions/{action}", h.openAction)
			r.Post("/confirm", h.confirm)
			r.Post("/cancel", h.cancel)
			r.Group(func(r chi.Router) {
				r.Use(httprate.Limit(exportRateLimit, exportRateWindow,
					httprate.WithKeyFuncs(rateLimitKey),
					httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
						httpx.Problem(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "Too many exports, try again in a minute.")
					}),
				))
				r.Get("/export.pdf", h.export)
			})
		})
		r.Get("/revisions/{id}", h.chat)
		r.Post("/revisions/{id}/messages", h.postMessage)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if user, ok := session.UserFrom(r.Context()); ok {
		return "user:" + user.ID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

// requireUser sends anonymous and expired sessions to the sign-in page.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.UserFrom(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		target := "/login"
		if _, stale := session.FromContext(r.Context()).User(); stale {
			target += "?expired=1"
		} else if r.Method == http.MethodGet && r.URL.Path != "/" {
			target += "?next=" + url.QueryEscape(r.URL.RequestURI())
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}

// apiContext carries the operator's access token to the backend client.
func (h *Handler) apiContext(r *http.Request) context.Context {
	ctx := r.Context()
	if user, ok := session.UserFrom(ctx); ok {
		ctx = apiclient.WithToken(ctx, user.AccessToken)
	}
	return ctx
}

func (h *Handler) deps() resources.Deps {
	return resources.Deps{
		API:      h.api,
		Logger:   h.logger,
		Notifier: flashNotifier{},
		Observer: h.observer,
		Validate: h.validate,
		PageSize: h.pageSize,
		NewToken: h.newToken,
		Guard:    h.guard,
		Auditor:  h.auditor,
	}
}

// binding resolves the {resource} URL parameter.
func (h *Handler) binding(w http.ResponseWriter, r *http.Request) (resources.Binding, bool) {
	b, ok := h.registry.Lookup(chi.URLParam(r, "resource"))
	if !ok {
		h.fail(w, r, httpx.ErrNotFound)
		return nil, false
	}
	return b, true
}

func (h *Handler) pageData(r *http.Request, title string, data any) view.TemplateData {
	sess := session.FromContext(r.Context())
	td := view.TemplateData{
		Title:       title,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if sess != nil {
		td.CSRFToken = h.csrf.Token(sess)
		td.Flashes = sess.PopFlashes()
	}
	if user, ok := session.UserFrom(r.Context()); ok {
		td.User = &user
		td.Nav = h.nav(r.URL.Path)
	}
	return td
}

func (h *Handler) nav(current string) []view.NavItem {
	items := []view.NavItem{{Href: "/", Label: "Dashboard", Active: current == "/"}}
	for _, b := range h.registry.All() {
		href := "/r/" + b.Name()
		items = append(items, view.NavItem{
			Href:   href,
			Label:  b.Title(),
			Active: current == href || strings.HasPrefix(current, href+"/"),
		})
	}
	return items
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data view.TemplateData) {
	if err := h.templates.Render(w, status, page, data); err != nil {
		h.logger.Error("render page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type errorPage struct {
	Status  int
	Message string
}

// fail renders err as an error page, or signs the operator out when the
// backend rejected their token.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apiclient.IsUnauthorized(err) {
		h.expire(w, r)
		return
	}
	status := httpx.Status(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("console request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	message := listctl.UserMessage(err)
	if errors.Is(err, httpx.ErrNotFound) {
		message = "Page not found."
	}
	h.render(w, r, status, "error", h.pageData(r, http.StatusText(status), errorPage{Status: status, Message: message}))
}

// expire ends a session whose access token the backend no longer accepts.
func (h *Handler) expire(w http.ResponseWriter, r *http.Request) {
	if sess := session.FromContext(r.Context()); sess != nil {
		session.Logout(sess)
	}
	http.Redirect(w, r, "/login?expired=1", http.StatusSeeOther)
}
