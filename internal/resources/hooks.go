package resources

import (
	"context"
	"log/slog"

	"github.com/arguide/backoffice/internal/listctl"
)

// MutationEvent describes one submitted confirmation and its outcome.
type MutationEvent struct {
	Resource string
	Action   string
	RowID    string
	Token    string
	Err      error
}

// Auditor records submitted confirmations.
type Auditor interface {
	Audit(ctx context.Context, ev MutationEvent)
}

// Guard reserves a confirmation token so a dialog is submitted at most once
// at a time. Release makes the token usable again after a failure.
type Guard interface {
	Reserve(ctx context.Context, token, scope string) error
	Release(ctx context.Context, token string) error
}

// wrap decorates every mutation of catalog with the guard and the auditor.
func wrap[S comparable](resource string, catalog listctl.Catalog[S], deps Deps) listctl.Catalog[S] {
	if deps.Guard == nil && deps.Auditor == nil {
		return catalog
	}
	out := make(listctl.Catalog[S], len(catalog))
	for i, action := range catalog {
		if action.Mutate != nil && !action.Incomplete {
			action.Mutate = guarded(resource, action.Key, action.Mutate, deps)
		}
		out[i] = action
	}
	return out
}

func guarded(resource, key string, next listctl.MutationFunc, deps Deps) listctl.MutationFunc {
	return func(ctx context.Context, rowID string, payload listctl.Payload) error {
		token := listctl.IdempotencyKey(ctx)
		err := deps.reserve(ctx, resource+":"+key+":"+rowID, token, func() error {
			return next(ctx, rowID, payload)
		})
		if deps.Auditor != nil {
			deps.Auditor.Audit(ctx, MutationEvent{
				Resource: resource,
				Action:   key,
				RowID:    rowID,
				Token:    token,
				Err:      err,
			})
		}
		return err
	}
}

func (d Deps) reserve(ctx context.Context, scope, token string, fn func() error) error {
	if d.Guard == nil || token == "" {
		return fn()
	}
	if err := d.Guard.Reserve(ctx, token, scope); err != nil {
		return err
	}
	err := fn()
	if err != nil {
		if rerr := d.Guard.Release(ctx, token); rerr != nil {
			logger := d.Logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Warn("release idempotency key", slog.String("scope", scope), slog.Any("error", rerr))
		}
	}
	return err
}
