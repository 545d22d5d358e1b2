package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/arguide/backoffice/internal/audit"
	jobmetrics "github.com/arguide/backoffice/internal/jobs"
)

// AuditRecordJob persists queued audit entries.
type AuditRecordJob struct {
	Sink    audit.Sink
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewAuditRecordJob initialises the handler over sink, usually the audit
// repository.
func NewAuditRecordJob(sink audit.Sink, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditRecordJob {
	return &AuditRecordJob{Sink: sink, Logger: logger, Metrics: metrics}
}

// Handle decodes and stores one entry. Malformed payloads are not retried.
func (j *AuditRecordJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Sink == nil {
		return errors.New("audit record: handler not configured")
	}
	tracker := j.Metrics.Track(TaskAuditRecord)
	defer func() { err = tracker.End(err) }()

	var entry audit.Entry
	if err := json.Unmarshal(t.Payload(), &entry); err != nil {
		return fmt.Errorf("audit record: decode: %v: %w", err, asynq.SkipRetry)
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("audit record: %v: %w", err, asynq.SkipRetry)
	}
	if err := j.Sink.Record(ctx, entry); err != nil {
		j.logger().Error("store audit entry",
			slog.String("id", entry.ID),
			slog.String("resource", entry.Resource),
			slog.Any("error", err))
		return err
	}
	j.logger().Debug("stored audit entry", slog.String("id", entry.ID), slog.String("resource", entry.Resource), slog.String("action", entry.Action))
	return nil
}

func (j *AuditRecordJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
