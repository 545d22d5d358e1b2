package console

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/session"
)

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type loginPage struct {
	Email string
	Error string
	Next  string
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.UserFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	page := loginPage{Next: safeNext(r.URL.Query().Get("next"))}
	if r.URL.Query().Get("expired") == "1" {
		page.Error = "Your session has expired. Please sign in again."
	}
	h.render(w, r, http.StatusOK, "login", h.pageData(r, "Sign in", page))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	page := loginPage{Email: form.Email, Next: safeNext(r.PostFormValue("next"))}

	if err := h.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			page.Error = "Enter a valid email and password."
			h.render(w, r, http.StatusUnprocessableEntity, "login", h.pageData(r, "Sign in", page))
			return
		}
		h.fail(w, r, err)
		return
	}

	res, err := h.api.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		status := http.StatusBadGateway
		var server *apiclient.ServerError
		switch {
		case errors.As(err, &server) && server.Status >= 400 && server.Status < 500:
			status = http.StatusUnauthorized
			page.Error = "Invalid email or password."
		default:
			h.logger.Error("login failed", slog.Any("error", err))
			page.Error = listctl.UserMessage(err)
		}
		h.render(w, r, status, "login", h.pageData(r, "Sign in", page))
		return
	}

	sess := session.FromContext(r.Context())
	session.Login(sess, session.UserInfo{
		ID:          res.User.ID,
		Name:        res.User.Name,
		Email:       res.User.Email,
		Role:        res.User.Role,
		CompanyID:   res.User.CompanyID,
		AccessToken: res.AccessToken,
	})
	h.logger.Info("operator signed in", slog.String("user_id", res.User.ID))
	target := page.Next
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if sess := session.FromContext(r.Context()); sess != nil {
		session.Logout(sess)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// safeNext keeps only same-site absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
