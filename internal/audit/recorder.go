package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
	"github.com/arguide/backoffice/internal/session"
)

// Recorder turns submitted confirmations into entries and hands them to a
// Sink. Sink failures are logged; they never fail the mutation.
type Recorder struct {
	sink   Sink
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder returns a Recorder writing to sink.
func NewRecorder(sink Sink, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{sink: sink, logger: logger, now: time.Now}
}

var _ resources.Auditor = (*Recorder)(nil)

// Audit implements resources.Auditor.
func (r *Recorder) Audit(ctx context.Context, ev resources.MutationEvent) {
	if r == nil || r.sink == nil {
		return
	}
	entry := r.entry(ctx, ev)
	if err := r.sink.Record(ctx, entry); err != nil {
		r.logger.Error("audit record failed",
			slog.String("resource", entry.Resource),
			slog.String("action", entry.Action),
			slog.String("target", entry.Target),
			slog.Any("error", err))
	}
}

func (r *Recorder) entry(ctx context.Context, ev resources.MutationEvent) Entry {
	e := Entry{
		ID:         uuid.NewString(),
		Resource:   ev.Resource,
		Action:     ev.Action,
		Target:     ev.RowID,
		Outcome:    OutcomeSuccess,
		Token:      ev.Token,
		OccurredAt: r.now().UTC(),
	}
	if ev.Err != nil {
		e.Outcome = OutcomeError
		e.Message = listctl.UserMessage(ev.Err)
	}
	if user, ok := session.UserFrom(ctx); ok {
		e.ActorID = user.ID
		e.ActorEmail = user.Email
	}
	return e
}
