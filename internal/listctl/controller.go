package listctl

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Config assembles a Controller for one resource.
type Config[R Row[S], S comparable] struct {
	Resource       string
	Source         Source[R]
	Catalog        Catalog[S]
	Filters        []FilterField
	DefaultFilters map[string]string
	PageSize       int
	Notifier       Notifier
	Observer       Observer
	Logger         *slog.Logger
	Validate       *validator.Validate
	NewToken       func() (string, error)
}

// Controller wires filter and pagination state, the fetcher and the
// confirmer of one list page. It is safe for concurrent use.
type Controller[R Row[S], S comparable] struct {
	resource string
	catalog  Catalog[S]
	logger   *slog.Logger

	mu         sync.Mutex
	filters    *FilterState
	pagination *PaginationState

	fetcher   *Fetcher[R]
	confirmer *Confirmer[S]
}

// New builds a Controller. Nothing is fetched until Load or Search.
func New[R Row[S], S comparable](cfg Config[R, S]) (*Controller[R, S], error) {
	if cfg.Source == nil {
		return nil, errors.New("listctl: source required")
	}
	if cfg.Resource == "" {
		return nil, errors.New("listctl: resource name required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("resource", cfg.Resource))
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	c := &Controller[R, S]{
		resource:   cfg.Resource,
		catalog:    cfg.Catalog,
		logger:     logger,
		filters:    NewFilterState(cfg.Filters, cfg.DefaultFilters),
		pagination: NewPaginationState(cfg.PageSize),
	}
	c.fetcher = NewFetcher[R](cfg.Source, FetcherOptions{
		Resource: cfg.Resource,
		Logger:   logger,
		Notifier: notifier,
		Observer: cfg.Observer,
	})
	c.confirmer = NewConfirmer(cfg.Catalog, ConfirmerOptions{
		Resource: cfg.Resource,
		Logger:   logger,
		Notifier: notifier,
		Observer: cfg.Observer,
		Validate: cfg.Validate,
		NewToken: cfg.NewToken,
		Refresh: func(ctx context.Context) error {
			// A dialog restored on a fresh handle has no query to refetch;
			// the caller reloads the page itself.
			if !c.fetcher.Dispatched() {
				return nil
			}
			_, err := c.fetcher.Refresh(ctx)
			return err
		},
	})
	return c, nil
}

// Resource returns the resource name.
func (c *Controller[R, S]) Resource() string { return c.resource }

// Catalog returns the action catalog.
func (c *Controller[R, S]) Catalog() Catalog[S] { return c.catalog }

// Schema returns the filter fields.
func (c *Controller[R, S]) Schema() []FilterField { return c.filters.Schema() }

// Query returns the applied query.
func (c *Controller[R, S]) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queryLocked()
}

func (c *Controller[R, S]) queryLocked() Query {
	return Query{Filters: c.filters.Applied(), Page: c.pagination.Page(), PageSize: c.pagination.Size()}
}

// Draft returns the in-progress filter inputs.
func (c *Controller[R, S]) Draft() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.Draft()
}

// SetDraft edits a filter input. It never triggers a fetch.
func (c *Controller[R, S]) SetDraft(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.SetDraft(name, value)
}

// Load mounts the page at q (applied filters, page and size) and fetches it.
func (c *Controller[R, S]) Load(ctx context.Context, q Query) (Snapshot[R], error) {
	if err := q.Validate(); err != nil {
		return c.fetcher.Snapshot(), err
	}
	c.mu.Lock()
	if err := c.filters.Apply(q.Filters); err != nil {
		c.mu.Unlock()
		return c.fetcher.Snapshot(), err
	}
	_ = c.pagination.SetPageSize(q.PageSize)
	_ = c.pagination.SetPage(q.Page)
	next := c.queryLocked()
	c.mu.Unlock()
	return c.fetcher.Fetch(ctx, next)
}

// Search commits the draft filters and fetches page 0.
func (c *Controller[R, S]) Search(ctx context.Context) (Snapshot[R], error) {
	c.mu.Lock()
	c.filters.Commit()
	c.pagination.Reset()
	next := c.queryLocked()
	c.mu.Unlock()
	return c.fetcher.Fetch(ctx, next)
}

// ResetFilters restores default filters and fetches page 0.
func (c *Controller[R, S]) ResetFilters(ctx context.Context) (Snapshot[R], error) {
	c.mu.Lock()
	c.filters.Reset()
	c.pagination.Reset()
	next := c.queryLocked()
	c.mu.Unlock()
	return c.fetcher.Fetch(ctx, next)
}

// SetPage moves to page n with the applied filters.
func (c *Controller[R, S]) SetPage(ctx context.Context, n int) (Snapshot[R], error) {
	c.mu.Lock()
	if err := c.pagination.SetPage(n); err != nil {
		c.mu.Unlock()
		return c.fetcher.Snapshot(), err
	}
	next := c.queryLocked()
	c.mu.Unlock()
	return c.fetcher.Fetch(ctx, next)
}

// SetPageSize changes the page size and fetches page 0.
func (c *Controller[R, S]) SetPageSize(ctx context.Context, n int) (Snapshot[R], error) {
	c.mu.Lock()
	if err := c.pagination.SetPageSize(n); err != nil {
		c.mu.Unlock()
		return c.fetcher.Snapshot(), err
	}
	next := c.queryLocked()
	c.mu.Unlock()
	return c.fetcher.Fetch(ctx, next)
}

// Refresh re-fetches the current query.
func (c *Controller[R, S]) Refresh(ctx context.Context) (Snapshot[R], error) {
	return c.fetcher.Refresh(ctx)
}

// Snapshot returns the visible rows and status.
func (c *Controller[R, S]) Snapshot() Snapshot[R] {
	return c.fetcher.Snapshot()
}

// Actions returns the actions permitted for row.
func (c *Controller[R, S]) Actions(row R) []Action[S] {
	return c.catalog.ForRow(row)
}

// Row finds a row on the visible page.
func (c *Controller[R, S]) Row(id string) (R, bool) {
	for _, row := range c.fetcher.Snapshot().Rows {
		if row.RowID() == id {
			return row, true
		}
	}
	var zero R
	return zero, false
}

// Open starts the confirmation for a row on the visible page.
func (c *Controller[R, S]) Open(rowID, actionKey string) (PendingMutation, error) {
	row, ok := c.Row(rowID)
	if !ok {
		return PendingMutation{}, ErrRowNotFound
	}
	return c.confirmer.Open(row, actionKey)
}

// Restore reopens a dialog captured by an earlier Open.
func (c *Controller[R, S]) Restore(p PendingMutation) error {
	return c.confirmer.Restore(p)
}

// Confirm submits the open dialog.
func (c *Controller[R, S]) Confirm(ctx context.Context, values map[string]string) error {
	return c.confirmer.Confirm(ctx, values)
}

// Cancel closes the open dialog without side effects.
func (c *Controller[R, S]) Cancel() error {
	return c.confirmer.Cancel()
}

// Dialog exposes the confirmation state machine.
func (c *Controller[R, S]) Dialog() *Confirmer[S] {
	return c.confirmer
}

// Close unmounts the page: in-flight fetches are cancelled and late
// completions of fetches or mutations are ignored.
func (c *Controller[R, S]) Close() {
	c.fetcher.Close()
	c.confirmer.Close()
}
