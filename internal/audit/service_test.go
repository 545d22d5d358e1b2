package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
	"github.com/arguide/backoffice/internal/session"
)

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	execs   []execCall
	queries []execCall
	total   int
	rows    [][]any
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, execCall{sql: sql, args: args})
	return &fakeRows{rows: f.rows, idx: -1}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, execCall{sql: sql, args: args})
	return countRow(f.total)
}

type countRow int

func (c countRow) Scan(dest ...any) error {
	*dest[0].(*int) = int(c)
	return nil
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.idx], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx]
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *time.Time:
			*p = row[i].(time.Time)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

func entryRow(id, outcome string, at time.Time) []any {
	return []any{id, "payments", "approve", "p1", outcome, "", "u1", "ops@example.com", "tok", at}
}

func TestBuildWhere(t *testing.T) {
	where, args := buildWhere(listctl.NewQuery(10, nil))
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = buildWhere(listctl.NewQuery(10, map[string]string{
		"resource": "payments",
		"status":   "error",
		"search":   " ops ",
	}))
	assert.Equal(t, " WHERE resource = $1 AND outcome = $2 AND (target ILIKE '%' || $3 || '%' OR actor_email ILIKE '%' || $3 || '%')", where)
	assert.Equal(t, []any{"payments", "error", "ops"}, args)
}

func TestRepositoryRecordValidates(t *testing.T) {
	db := &fakeDB{}
	repo := NewRepository(db)

	err := repo.Record(context.Background(), Entry{ID: "a1", Resource: "payments", Action: "approve", Outcome: "maybe", Target: "p1"})
	require.Error(t, err)
	assert.Empty(t, db.execs)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Record(context.Background(), Entry{
		ID: "a1", Resource: "payments", Action: "approve", Target: "p1",
		Outcome: OutcomeSuccess, OccurredAt: at,
	}))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0].sql, "ON CONFLICT (id) DO NOTHING")
	assert.Equal(t, "a1", db.execs[0].args[0])
	assert.Equal(t, at, db.execs[0].args[9])
}

func TestRepositoryListPaginates(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	db := &fakeDB{total: 12, rows: [][]any{entryRow("a1", "success", at), entryRow("a2", "error", at)}}
	repo := NewRepository(db)

	q := listctl.Query{Filters: map[string]string{"status": "error"}, Page: 1, PageSize: 10}
	page, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 12, page.TotalCount)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, OutcomeError, page.Rows[1].Outcome)
	assert.Equal(t, "ops@example.com", page.Rows[0].ActorEmail)

	require.Len(t, db.queries, 2)
	assert.Contains(t, db.queries[1].sql, "LIMIT $2 OFFSET $3")
	assert.Equal(t, []any{"error", 10, 10}, db.queries[1].args)

	_, err = repo.List(context.Background(), listctl.Query{Page: -1, PageSize: 10})
	assert.ErrorIs(t, err, listctl.ErrInvalidQuery)
}

func TestRecorderBuildsEntries(t *testing.T) {
	var got []Entry
	rec := NewRecorder(SinkFunc(func(_ context.Context, e Entry) error {
		got = append(got, e)
		return nil
	}), nil)
	rec.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	rec.Audit(context.Background(), resources.MutationEvent{Resource: "payments", Action: "approve", RowID: "p1", Token: "tok"})
	rec.Audit(context.Background(), resources.MutationEvent{
		Resource: "courses", Action: "delete", RowID: "c1",
		Err: &apiclient.ConflictError{Server: &apiclient.ServerError{Status: 409, Message: "Course is in use"}},
	})

	require.Len(t, got, 2)
	assert.Equal(t, OutcomeSuccess, got[0].Outcome)
	assert.Equal(t, "p1", got[0].Target)
	assert.Equal(t, "tok", got[0].Token)
	assert.NotEmpty(t, got[0].ID)
	assert.NoError(t, got[0].Validate())

	assert.Equal(t, OutcomeError, got[1].Outcome)
	assert.Equal(t, "Course is in use", got[1].Message)
}

func TestRecorderSwallowsSinkErrors(t *testing.T) {
	rec := NewRecorder(SinkFunc(func(context.Context, Entry) error { return errors.New("queue down") }), nil)
	assert.NotPanics(t, func() {
		rec.Audit(context.Background(), resources.MutationEvent{Resource: "payments", Action: "approve", RowID: "p1"})
	})
}

func TestRecorderAttachesOperator(t *testing.T) {
	var got Entry
	rec := NewRecorder(SinkFunc(func(_ context.Context, e Entry) error {
		got = e
		return nil
	}), nil)

	m := session.NewManager(nil, "bo", "secret", time.Hour, false)
	sess, err := m.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	session.Login(sess, session.UserInfo{ID: "u7", Email: "ops@example.com", ExpiresAt: time.Now().Add(time.Hour)})
	ctx := session.WithSession(context.Background(), sess)

	rec.Audit(ctx, resources.MutationEvent{Resource: "payments", Action: "approve", RowID: "p1"})
	assert.Equal(t, "u7", got.ActorID)
	assert.Equal(t, "ops@example.com", got.ActorEmail)
}

func TestAuditPageIsReadOnly(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	db := &fakeDB{total: 1, rows: [][]any{entryRow("a1", "success", at)}}
	b := Binding(NewRepository(db), []string{"payments", "courses"})
	assert.Equal(t, "audit", b.Name())
	assert.Empty(t, b.ActionKeys())
	_, pending := b.PendingQuery()
	assert.False(t, pending)

	h, err := b.Open(resources.Deps{PageSize: 10})
	require.NoError(t, err)
	defer h.Close()

	grid, err := h.Load(context.Background(), listctl.NewQuery(10, nil))
	require.NoError(t, err)
	require.Len(t, grid.Rows, 1)
	assert.Equal(t, "Success", grid.Rows[0].Status.Label)
	assert.Empty(t, grid.Rows[0].Actions)
	assert.Contains(t, grid.Rows[0].Cells, "ops@example.com")

	_, err = h.Open("a1", "delete")
	assert.ErrorIs(t, err, listctl.ErrUnknownAction)
}
