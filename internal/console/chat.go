package console

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/platform/httpx"
	"github.com/arguide/backoffice/internal/resources/revisions"
)

type chatPage struct {
	Thread    revisions.Thread
	Draft     string
	Error     string
	MaxLength int
}

func (h *Handler) chatEnabled() bool {
	_, ok := h.registry.Lookup("revisions")
	return ok
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	if !h.chatEnabled() {
		h.fail(w, r, httpx.ErrNotFound)
		return
	}
	thread, err := revisions.NewChat(h.api, h.logger).Thread(h.apiContext(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "chat", h.pageData(r, thread.Request.Title, chatPage{Thread: thread, MaxLength: revisions.MaxMessageLength}))
}

// postMessage appends the operator's message. On failure the thread is
// shown again with the draft kept.
func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request) {
	if !h.chatEnabled() {
		h.fail(w, r, httpx.ErrNotFound)
		return
	}
	id := chi.URLParam(r, "id")
	body := r.PostFormValue("body")
	chat := revisions.NewChat(h.api, h.logger)
	ctx := h.apiContext(r)

	_, err := chat.Post(ctx, id, body)
	if err == nil {
		http.Redirect(w, r, "/revisions/"+id, http.StatusSeeOther)
		return
	}
	if apiclient.IsUnauthorized(err) {
		h.expire(w, r)
		return
	}
	thread, terr := chat.Thread(ctx, id)
	if terr != nil {
		h.fail(w, r, terr)
		return
	}
	page := chatPage{Thread: thread, Draft: body, Error: listctl.UserMessage(err), MaxLength: revisions.MaxMessageLength}
	h.render(w, r, httpx.Status(err), "chat", h.pageData(r, thread.Request.Title, page))
}
