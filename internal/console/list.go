package console

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/platform/httpx"
	"github.com/arguide/backoffice/internal/resources"
	"github.com/arguide/backoffice/internal/session"
)

type filterInput struct {
	Field listctl.FilterField
	Value string
}

type listPage struct {
	Resource   string
	CSRFToken  string
	Grid       resources.Grid
	Filters    []filterInput
	Dialog     resources.Dialog
	Values     map[string]string
	Return     string
	PrevHref   string
	NextHref   string
	Sizes      []sizeOption
	JSONHref   string
	ExportHref string
	ChatBase   string
}

func returnKey(resource string) string { return "return:" + resource }

// mount opens a controller for b and loads the page described by values.
// The returned handle must be closed. Fetch failures come back with the
// handle so the page can still be rendered.
func (h *Handler) mount(ctx context.Context, b resources.Binding, values url.Values) (resources.Handle, error) {
	handle, err := b.Open(h.deps())
	if err != nil {
		return nil, err
	}
	q, err := parseQuery(b.Schema(), values, handle.Query())
	if err != nil {
		handle.Close()
		return nil, err
	}
	_, err = handle.Load(ctx, q)
	return handle, err
}

// restore reopens the dialog the session remembers for b.
func (h *Handler) restore(sess *session.Session, b resources.Binding, handle resources.Handle) {
	p, ok := sess.Pending(b.Name())
	if !ok {
		return
	}
	if err := handle.Restore(p); err != nil {
		h.logger.Warn("drop stale dialog", slog.String("resource", b.Name()), slog.Any("error", err))
		sess.ClearPending(b.Name())
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	b, ok := h.binding(w, r)
	if !ok {
		return
	}
	handle, err := h.mount(h.apiContext(r), b, r.URL.Query())
	if handle == nil {
		h.fail(w, r, err)
		return
	}
	defer handle.Close()
	if apiclient.IsUnauthorized(err) {
		h.expire(w, r)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, handle.Envelope())
		return
	}

	h.restore(session.FromContext(r.Context()), b, handle)
	status := http.StatusOK
	if err != nil {
		status = httpx.Status(err)
	}
	h.renderList(w, r, status, b, handle, nil)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, status int, b resources.Binding, handle resources.Handle, values map[string]string) {
	grid := handle.Grid()
	q := grid.Query
	if q.PageSize == 0 {
		q = handle.Query()
		grid.Query = q
	}
	path := "/r/" + b.Name()
	page := listPage{
		Resource: b.Name(),
		Grid:     grid,
		Dialog:   handle.Dialog(),
		Values:   values,
		Return:   encodeQuery(q).Encode(),
	}
	for _, field := range b.Schema() {
		page.Filters = append(page.Filters, filterInput{Field: field, Value: q.Filter(field.Name)})
	}
	page.PrevHref, page.NextHref, page.Sizes = pageLinks(path, q, grid.TotalPages)
	jsonValues := encodeQuery(q)
	jsonValues.Set("format", "json")
	page.JSONHref = path + "?" + jsonValues.Encode()
	if h.reports != nil {
		page.ExportHref = path + "/export.pdf?" + page.Return
	}
	if b.Name() == "revisions" {
		page.ChatBase = "/revisions/"
	}

	data := h.pageData(r, b.Title(), page)
	page.CSRFToken = data.CSRFToken
	data.Data = page
	h.render(w, r, status, "list", data)
}

// search applies the submitted filters and moves to page 0.
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	b, ok := h.binding(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, listctl.ErrInvalidQuery)
		return
	}
	values := url.Values{}
	for _, field := range b.Schema() {
		values.Set(field.Name, r.PostForm.Get(field.Name))
	}
	if size := r.PostForm.Get("size"); size != "" {
		values.Set("size", size)
	}
	q, err := parseQuery(b.Schema(), values, listctl.NewQuery(h.pageSize, nil))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/r/"+b.Name()+"?"+encodeQuery(q).Encode(), http.StatusSeeOther)
}

// openAction opens the confirmation dialog for a row on the operator's
// current page and remembers it in the session.
func (h *Handler) openAction(w http.ResponseWriter, r *http.Request) {
	b, ok := h.binding(w, r)
	if !ok {
		return
	}
	ret := r.PostFormValue("return")
	values, err := url.ParseQuery(ret)
	if err != nil {
		h.fail(w, r, listctl.ErrInvalidQuery)
		return
	}
	handle, err := h.mount(h.apiContext(r), b, values)
	if handle == nil {
		h.fail(w, r, err)
		return
	}
	defer handle.Close()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	sess := session.FromContext(r.Context())
	h.restore(sess, b, handle)
	pending, err := handle.Open(chi.URLParam(r, "id"), chi.URLParam(r, "action"))
	if err != nil {
		sess.AddFlash(session.Flash{Kind: string(listctl.KindError), Message: listctl.UserMessage(err)})
		h.renderList(w, r, httpx.Status(err), b, handle, nil)
		return
	}
	sess.SetPending(b.Name(), pending)
	sess.Set(returnKey(b.Name()), ret)
	http.Redirect(w, r, "/r/"+b.Name()+"?"+ret, http.StatusSeeOther)
}

// confirm submits the remembered dialog. The dialog stays open on failure
// and a retry reuses its token.
func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	b, ok := h.binding(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, err)
		return
	}
	sess := session.FromContext(r.Context())
	ret := sess.Get(returnKey(b.Name()))
	p, ok := sess.Pending(b.Name())
	if !ok {
		h.fail(w, r, listctl.ErrNoDialog)
		return
	}

	handle, err := b.Open(h.deps())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer handle.Close()
	if err := handle.Restore(p); err != nil {
		sess.ClearPending(b.Name())
		h.fail(w, r, err)
		return
	}

	values := formValues(r.PostForm)
	ctx := h.apiContext(r)
	err = handle.Confirm(ctx, values)
	if err == nil {
		sess.ClearPending(b.Name())
		sess.Delete(returnKey(b.Name()))
		if err := h.counters.Bump(ctx); err != nil {
			h.logger.Warn("invalidate dashboard counters", slog.Any("error", err))
		}
		http.Redirect(w, r, "/r/"+b.Name()+"?"+ret, http.StatusSeeOther)
		return
	}
	if apiclient.IsUnauthorized(err) {
		h.expire(w, r)
		return
	}

	pageValues, _ := url.ParseQuery(ret)
	q, qerr := parseQuery(b.Schema(), pageValues, handle.Query())
	if qerr == nil {
		_, _ = handle.Load(ctx, q)
	}
	h.renderList(w, r, httpx.Status(err), b, handle, values)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	b, ok := h.binding(w, r)
	if !ok {
		return
	}
	sess := session.FromContext(r.Context())
	ret := sess.Get(returnKey(b.Name()))
	sess.ClearPending(b.Name())
	sess.Delete(returnKey(b.Name()))
	http.Redirect(w, r, "/r/"+b.Name()+"?"+ret, http.StatusSeeOther)
}

// export renders the requested page as a PDF.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	b, ok := h.binding(w, r)
	if !ok {
		return
	}
	if h.reports == nil {
		h.fail(w, r, httpx.ErrNotFound)
		return
	}
	ctx := h.apiContext(r)
	handle, err := h.mount(ctx, b, r.URL.Query())
	if handle == nil {
		h.fail(w, r, err)
		return
	}
	defer handle.Close()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	grid := handle.Grid()
	pdf, err := h.reports.Grid(ctx, grid)
	if err != nil {
		h.logger.Error("render list pdf", slog.String("resource", b.Name()), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Export Failed", "The PDF could not be generated. Try again later.")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-page-%d.pdf"`, b.Name(), grid.Query.Page+1))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// formValues flattens the dialog form, dropping the CSRF token.
func formValues(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for k := range form {
		if k == session.CSRFFormField {
			continue
		}
		out[k] = form.Get(k)
	}
	return out
}
