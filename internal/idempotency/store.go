// Package idempotency reserves confirmation tokens in Postgres so that one
// dialog cannot be submitted twice concurrently.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arguide/backoffice/internal/resources"
)

// Execer is the subset of pgx the store needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists reserved keys.
type Store struct {
	db  Execer
	now func() time.Time
}

// NewStore constructs the store.
func NewStore(db Execer) *Store {
	return &Store{db: db, now: time.Now}
}

var _ resources.Guard = (*Store)(nil)

// ConflictError reports a key that is already reserved.
type ConflictError struct {
	Key   string
	Scope string
}

func (e *ConflictError) Error() string {
	return "idempotency: key already reserved for " + e.Scope
}

// UserMessage implements listctl.Messager.
func (e *ConflictError) UserMessage() string {
	return "This action has already been submitted."
}

// IsConflict reports whether err is a duplicate reservation.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

const uniqueViolation = "23505"

// Reserve inserts key for scope, failing with *ConflictError when it exists.
func (s *Store) Reserve(ctx context.Context, key, scope string) error {
	if s == nil || s.db == nil {
		return errors.New("idempotency: store not initialised")
	}
	if key == "" {
		return errors.New("idempotency: key required")
	}
	if scope == "" {
		return errors.New("idempotency: scope required")
	}
	_, err := s.db.Exec(ctx, `INSERT INTO idempotency_keys (key, scope, created_at) VALUES ($1, $2, $3)`, key, scope, s.now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return &ConflictError{Key: key, Scope: scope}
		}
		return err
	}
	return nil
}

// Release removes a key so a failed submission can be retried.
func (s *Store) Release(ctx context.Context, key string) error {
	if s == nil {
		return nil
	}
	if key == "" {
		return errors.New("idempotency: key required")
	}
	_, err := s.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE key = $1`, key)
	return err
}

// Cleanup removes keys older than retention and returns how many were deleted.
func (s *Store) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	if s == nil {
		return 0, nil
	}
	cutoff := s.now().Add(-retention).UTC()
	tag, err := s.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
