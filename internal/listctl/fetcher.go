package listctl

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Snapshot is the visible state of a fetcher.
type Snapshot[R any] struct {
	Query      Query
	Rows       []R
	TotalCount int
	Loading    bool
	Err        error
	Generation uint64
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	Resource string
	Logger   *slog.Logger
	Notifier Notifier
	Observer Observer
}

// Fetcher loads pages from a Source. Every dispatch is tagged with a
// monotonically increasing generation and only the newest generation may
// update the visible snapshot; superseded requests are cancelled and their
// results discarded.
type Fetcher[R any] struct {
	source   Source[R]
	resource string
	logger   *slog.Logger
	notifier Notifier
	observer Observer

	mu       sync.Mutex
	gen      uint64
	current  Query
	state    Snapshot[R]
	inflight map[uint64]context.CancelFunc
	closed   bool
}

// NewFetcher constructs a Fetcher.
func NewFetcher[R any](source Source[R], opts FetcherOptions) *Fetcher[R] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Fetcher[R]{
		source:   source,
		resource: opts.Resource,
		logger:   logger,
		notifier: notifier,
		observer: observer,
		state:    Snapshot[R]{Rows: []R{}},
		inflight: make(map[uint64]context.CancelFunc),
	}
}

// Fetch loads q and, if no newer fetch was dispatched meanwhile, publishes
// the result. On failure the previous rows stay visible. A superseded fetch
// returns ErrStale and leaves the snapshot untouched.
func (f *Fetcher[R]) Fetch(ctx context.Context, q Query) (Snapshot[R], error) {
	if err := q.Validate(); err != nil {
		return f.Snapshot(), err
	}
	q = q.Clone()

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return Snapshot[R]{}, ErrClosed
	}
	for gen, cancel := range f.inflight {
		cancel()
		delete(f.inflight, gen)
	}
	f.gen++
	gen := f.gen
	fctx, cancel := context.WithCancel(ctx)
	f.inflight[gen] = cancel
	f.current = q
	f.state.Loading = true
	f.mu.Unlock()

	start := time.Now()
	page, err := f.source.List(fctx, q)
	took := time.Since(start)
	cancel()

	f.mu.Lock()
	delete(f.inflight, gen)
	if f.closed {
		f.mu.Unlock()
		return Snapshot[R]{}, ErrClosed
	}
	if gen != f.gen {
		f.mu.Unlock()
		f.logger.Debug("discard stale page", slog.String("resource", f.resource), slog.Uint64("generation", gen))
		return f.Snapshot(), ErrStale
	}
	f.state.Loading = false
	f.state.Generation = gen
	if err != nil {
		f.state.Err = err
		snap := f.snapshotLocked()
		f.mu.Unlock()

		f.observer.ObserveFetch(f.resource, took, err)
		if !errors.Is(err, context.Canceled) {
			f.logger.Error("fetch page failed",
				slog.String("resource", f.resource),
				slog.Int("page", q.Page),
				slog.Int("size", q.PageSize),
				slog.Any("error", err))
			f.notifier.Notify(ctx, Notification{Kind: KindError, Resource: f.resource, Message: UserMessage(err)})
		}
		return snap, err
	}

	page, fixed := normalize(page, q.PageSize)
	f.state.Query = q
	f.state.Rows = page.Rows
	f.state.TotalCount = page.TotalCount
	f.state.Err = nil
	snap := f.snapshotLocked()
	f.mu.Unlock()

	if fixed {
		f.logger.Warn("source returned an inconsistent page",
			slog.String("resource", f.resource),
			slog.Int("size", q.PageSize),
			slog.Int("total", page.TotalCount))
	}
	f.observer.ObserveFetch(f.resource, took, nil)
	return snap, nil
}

// Refresh re-fetches the most recently dispatched query.
func (f *Fetcher[R]) Refresh(ctx context.Context) (Snapshot[R], error) {
	f.mu.Lock()
	q := f.current
	f.mu.Unlock()
	return f.Fetch(ctx, q)
}

// Dispatched reports whether any fetch has been issued.
func (f *Fetcher[R]) Dispatched() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gen > 0
}

// Current returns the most recently dispatched query.
func (f *Fetcher[R]) Current() Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current.Clone()
}

// Snapshot returns a copy of the visible state.
func (f *Fetcher[R]) Snapshot() Snapshot[R] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Fetcher[R]) snapshotLocked() Snapshot[R] {
	snap := f.state
	snap.Query = f.state.Query.Clone()
	snap.Rows = append([]R(nil), f.state.Rows...)
	return snap
}

// Close cancels in-flight fetches and ignores any later completion.
func (f *Fetcher[R]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for gen, cancel := range f.inflight {
		cancel()
		delete(f.inflight, gen)
	}
}

// Closed reports whether Close was called.
func (f *Fetcher[R]) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
