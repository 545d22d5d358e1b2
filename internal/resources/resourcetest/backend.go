// Package resourcetest provides a fake backend for resource tests.
package resourcetest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
)

// Request is a recorded backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]any
}

type failure struct {
	status int
	body   string
}

// Backend is an httptest server speaking the result envelope.
type Backend struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	lists    map[string][]byte
	paged    map[string][]json.RawMessage
	results  map[string][]byte
	failures map[string]failure
	requests []Request
}

// New starts a Backend that is closed with the test.
func New(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		t:        t,
		lists:    make(map[string][]byte),
		paged:    make(map[string][]json.RawMessage),
		results:  make(map[string][]byte),
		failures: make(map[string]failure),
	}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

// URL returns the server base URL.
func (b *Backend) URL() string { return b.srv.URL }

// Client returns an API client pointed at the backend.
func (b *Backend) Client() *apiclient.Client {
	return apiclient.New(apiclient.Options{BaseURL: b.srv.URL, Token: "test-token"})
}

// Deps returns resource deps wired to the backend with a fixed dialog token.
func (b *Backend) Deps() resources.Deps {
	return resources.Deps{
		API:      b.Client(),
		PageSize: 10,
		NewToken: func() (string, error) { return "tok-test", nil },
	}
}

// List serves rows at GET path.
func (b *Backend) List(path string, rows any, total int) {
	data, err := json.Marshal(map[string]any{"result": map[string]any{"objectList": rows, "totalItems": total}})
	require.NoError(b.t, err)
	b.mu.Lock()
	b.lists[path] = data
	b.mu.Unlock()
}

// PagedList serves rows at GET path, slicing them by the zero-based page
// and size query parameters. totalItems is always len(rows).
func (b *Backend) PagedList(path string, rows any) {
	data, err := json.Marshal(rows)
	require.NoError(b.t, err)
	var raw []json.RawMessage
	require.NoError(b.t, json.Unmarshal(data, &raw))
	b.mu.Lock()
	b.paged[path] = raw
	b.mu.Unlock()
}

func pageOf(rows []json.RawMessage, q url.Values) []json.RawMessage {
	page, _ := strconv.Atoi(q.Get("page"))
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size <= 0 {
		size = len(rows)
	}
	start := page * size
	if page < 0 || start >= len(rows) {
		return []json.RawMessage{}
	}
	return rows[start:min(start+size, len(rows))]
}

// Result serves a bare result for method and path.
func (b *Backend) Result(method, path string, result any) {
	data, err := json.Marshal(map[string]any{"result": result})
	require.NoError(b.t, err)
	b.mu.Lock()
	b.results[method+" "+path] = data
	b.mu.Unlock()
}

// Fail answers method and path with status and a {code, message} body.
func (b *Backend) Fail(method, path string, status int, code, message string) {
	data, err := json.Marshal(map[string]string{"code": code, "message": message})
	require.NoError(b.t, err)
	b.mu.Lock()
	b.failures[method+" "+path] = failure{status: status, body: string(data)}
	b.mu.Unlock()
}

// Requests returns the recorded calls.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Mutations returns the recorded non-GET calls.
func (b *Backend) Mutations() []Request {
	var out []Request
	for _, r := range b.Requests() {
		if r.Method != http.MethodGet {
			out = append(out, r)
		}
	}
	return out
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	rec := Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Header: r.Header.Clone()}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}
	key := r.Method + " " + r.URL.Path

	b.mu.Lock()
	b.requests = append(b.requests, rec)
	fail, failed := b.failures[key]
	list, listed := b.lists[r.URL.Path]
	paged, isPaged := b.paged[r.URL.Path]
	result, hasResult := b.results[key]
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case failed:
		w.WriteHeader(fail.status)
		_, _ = io.WriteString(w, fail.body)
	case r.Method == http.MethodGet && isPaged:
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{
			"objectList": pageOf(paged, rec.Query),
			"totalItems": len(paged),
		}})
	case r.Method == http.MethodGet && listed:
		_, _ = w.Write(list)
	case hasResult:
		_, _ = w.Write(result)
	case r.Method == http.MethodGet:
		_, _ = io.WriteString(w, `{"result":{"objectList":[],"totalItems":0}}`)
	default:
		_, _ = io.WriteString(w, `{"result":null}`)
	}
}

// AssertCatalog checks that every action gates on declared statuses and that
// every declared status has a label.
func AssertCatalog[S ~string](t *testing.T, catalog listctl.Catalog[S], table resources.StatusTable[S]) {
	t.Helper()
	for _, opt := range table {
		assert.NotEmpty(t, opt.Label, "status %s has no label", opt.Value)
		assert.NotEqual(t, resources.UnknownLabel, opt.Label)
	}
	for _, action := range catalog {
		assert.NotEmpty(t, action.RequiredStatus, "action %s has no required status", action.Key)
		for _, s := range action.RequiredStatus {
			assert.True(t, table.Known(s), "action %s requires undeclared status %s", action.Key, s)
		}
	}
	assert.Empty(t, catalog.Dispatch(S("NOT_A_STATUS")))
}

// ActionKeys returns the keys dispatched for status.
func ActionKeys[S comparable](catalog listctl.Catalog[S], status S) []string {
	actions := catalog.Dispatch(status)
	keys := make([]string, 0, len(actions))
	for _, a := range actions {
		keys = append(keys, a.Key)
	}
	return keys
}
