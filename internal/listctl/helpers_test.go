package listctl

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
)

type status string

const (
	statusPending    status = "PENDING"
	statusProcessing status = "PROCESSING"
	statusApproved   status = "APPROVED"
)

type item struct {
	ID     string
	Name   string
	Status status
}

func (i item) RowID() string     { return i.ID }
func (i item) RowStatus() status { return i.Status }

// memorySource pages over a fixed slice and records every query it served.
type memorySource struct {
	mu      sync.Mutex
	rows    []item
	err     error
	queries []Query
}

func newMemorySource(n int) *memorySource {
	rows := make([]item, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, item{ID: strconv.Itoa(i), Name: "row " + strconv.Itoa(i), Status: statusPending})
	}
	return &memorySource{rows: rows}
}

func (s *memorySource) List(ctx context.Context, q Query) (PageResult[item], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q.Clone())
	if s.err != nil {
		return PageResult[item]{}, s.err
	}
	filtered := make([]item, 0, len(s.rows))
	for _, row := range s.rows {
		if search := q.Filter("search"); search != "" && !strings.Contains(row.Name, search) {
			continue
		}
		if st := q.Filter("status"); st != "" && string(row.Status) != st {
			continue
		}
		filtered = append(filtered, row)
	}
	start := q.Offset()
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + q.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return PageResult[item]{Rows: append([]item(nil), filtered[start:end]...), TotalCount: len(filtered)}, nil
}

func (s *memorySource) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *memorySource) served() []Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Query(nil), s.queries...)
}

// gatedSource blocks each call until the test releases it.
type gatedSource struct {
	calls chan gatedCall
}

type gatedCall struct {
	query   Query
	ctx     context.Context
	release chan PageResult[item]
}

func newGatedSource() *gatedSource {
	return &gatedSource{calls: make(chan gatedCall, 8)}
}

func (s *gatedSource) List(ctx context.Context, q Query) (PageResult[item], error) {
	call := gatedCall{query: q, ctx: ctx, release: make(chan PageResult[item], 1)}
	s.calls <- call
	return <-call.release, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

func (r *recordingNotifier) last() Notification {
	all := r.all()
	if len(all) == 0 {
		return Notification{}
	}
	return all[len(all)-1]
}

type conflictErr struct{}

func (conflictErr) Error() string       { return "resource in use" }
func (conflictErr) UserMessage() string { return "The record is still in use." }

var errBoom = errors.New("boom")

type reasonPayload struct {
	Reason string `form:"reason" validate:"required,max=20"`
}

func (p *reasonPayload) Bind(values map[string]string) {
	p.Reason = strings.TrimSpace(values["reason"])
}
