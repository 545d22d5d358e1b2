package console

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
	"github.com/arguide/backoffice/internal/session"
)

type dashboardCard struct {
	Resource string `json:"resource"`
	Title    string `json:"title"`
	Href     string `json:"href"`
	Pending  int    `json:"pending"`
	Err      string `json:"error,omitempty"`
}

type dashboardPage struct {
	Cards []dashboardCard
}

var errPartialCounts = errors.New("console: some review counts failed")

// reviewCounts totals the review queue of every resource that has one.
// Queues are counted concurrently; one failing queue does not hide the rest.
func (h *Handler) reviewCounts(ctx context.Context) ([]dashboardCard, error) {
	var (
		mu    sync.Mutex
		cards []dashboardCard
		idx   = map[string]int{}
	)
	for _, b := range h.registry.All() {
		if _, ok := b.PendingQuery(); ok {
			idx[b.Name()] = len(cards)
			cards = append(cards, dashboardCard{Resource: b.Name(), Title: b.Title()})
		}
	}

	deps := h.deps()
	deps.Notifier = listctl.LogNotifier{Logger: h.logger}
	var failed bool
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, b := range h.registry.All() {
		q, ok := b.PendingQuery()
		if !ok {
			continue
		}
		g.Go(func() error {
			card := dashboardCard{Resource: b.Name(), Title: b.Title(), Href: "/r/" + b.Name() + "?" + encodeQuery(q).Encode()}
			handle, err := b.Open(deps)
			if err == nil {
				var grid resources.Grid
				grid, err = handle.Load(gctx, q)
				card.Pending = grid.TotalCount
				handle.Close()
			}
			if err != nil {
				card.Err = listctl.UserMessage(err)
			}
			mu.Lock()
			cards[idx[b.Name()]] = card
			if err != nil {
				failed = true
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if failed {
		return cards, errPartialCounts
	}
	return cards, nil
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := h.apiContext(r)
	user, _ := session.UserFrom(r.Context())

	var fresh []dashboardCard
	loader := func(ctx context.Context) (any, error) {
		cards, err := h.reviewCounts(ctx)
		fresh = cards
		return cards, err
	}

	var cards []dashboardCard
	key, err := h.counters.Key(ctx, "review", user.ID)
	if err == nil {
		err = h.counters.FetchJSON(ctx, key, &cards, loader)
	}
	switch {
	case errors.Is(err, errPartialCounts):
		cards = fresh
	case err != nil:
		h.logger.Warn("dashboard counters cache", slog.Any("error", err))
		if fresh == nil {
			fresh, _ = h.reviewCounts(ctx)
		}
		cards = fresh
	}
	h.render(w, r, http.StatusOK, "dashboard", h.pageData(r, "Dashboard", dashboardPage{Cards: cards}))
}
