package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arguide/backoffice/internal/listctl"
)

// DBTX is the subset of pgx used by the repository; *pgxpool.Pool and
// pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores entries in audit_logs.
type Repository struct {
	db DBTX
}

// NewRepository returns a Repository over db.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

const insertEntry = `INSERT INTO audit_logs
	(id, resource, action, target, outcome, message, actor_id, actor_email, token, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO NOTHING`

// Record persists e. Replays of the same entry are ignored.
func (r *Repository) Record(ctx context.Context, e Entry) error {
	if r == nil || r.db == nil {
		return errors.New("audit: repository not configured")
	}
	if err := e.Validate(); err != nil {
		return err
	}
	at := e.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(ctx, insertEntry,
		e.ID, e.Resource, e.Action, e.Target, string(e.Outcome), e.Message,
		e.ActorID, e.ActorEmail, e.Token, at.UTC())
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// List returns one page of entries, newest first.
func (r *Repository) List(ctx context.Context, q listctl.Query) (listctl.PageResult[Entry], error) {
	if r == nil || r.db == nil {
		return listctl.PageResult[Entry]{}, errors.New("audit: repository not configured")
	}
	if err := q.Validate(); err != nil {
		return listctl.PageResult[Entry]{}, err
	}
	where, args := buildWhere(q)

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM audit_logs"+where, args...).Scan(&total); err != nil {
		return listctl.PageResult[Entry]{}, fmt.Errorf("audit: count: %w", err)
	}

	limit := len(args) + 1
	sql := fmt.Sprintf(`SELECT id, resource, action, target, outcome, message, actor_id, actor_email, token, occurred_at
FROM audit_logs%s
ORDER BY occurred_at DESC, id
LIMIT $%d OFFSET $%d`, where, limit, limit+1)
	rows, err := r.db.Query(ctx, sql, append(args, q.PageSize, q.Offset())...)
	if err != nil {
		return listctl.PageResult[Entry]{}, fmt.Errorf("audit: list: %w", err)
	}
	defer rows.Close()

	items := make([]Entry, 0, q.PageSize)
	for rows.Next() {
		var (
			e       Entry
			outcome string
		)
		if err := rows.Scan(&e.ID, &e.Resource, &e.Action, &e.Target, &outcome, &e.Message,
			&e.ActorID, &e.ActorEmail, &e.Token, &e.OccurredAt); err != nil {
			return listctl.PageResult[Entry]{}, fmt.Errorf("audit: scan: %w", err)
		}
		e.Outcome = Outcome(outcome)
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return listctl.PageResult[Entry]{}, fmt.Errorf("audit: rows: %w", err)
	}
	return listctl.PageResult[Entry]{Rows: items, TotalCount: total}, nil
}

// buildWhere translates the applied filters into a WHERE clause with
// positional arguments.
func buildWhere(q listctl.Query) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if v := strings.TrimSpace(q.Filter("resource")); v != "" {
		clauses = append(clauses, "resource = "+next(v))
	}
	if v := strings.TrimSpace(q.Filter("status")); v != "" {
		clauses = append(clauses, "outcome = "+next(v))
	}
	if v := strings.TrimSpace(q.Filter("search")); v != "" {
		p := next(v)
		clauses = append(clauses, fmt.Sprintf("(target ILIKE '%%' || %s || '%%' OR actor_email ILIKE '%%' || %s || '%%')", p, p))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
