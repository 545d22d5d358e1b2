package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/arguide/backoffice/internal/audit"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueAudit carries audit entries so they are not starved by
	// maintenance tasks.
	QueueAudit = "audit"

	// TaskAuditRecord persists one audit entry.
	TaskAuditRecord = "audit:record"
	// TaskIdempotencyCleanup removes expired confirmation tokens.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// NewAuditRecordTask wraps e in a task. The entry id doubles as the task
// id, so enqueuing the same entry twice is rejected by the queue.
func NewAuditRecordTask(e audit.Entry) (*asynq.Task, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("jobs: encode audit entry: %w", err)
	}
	return asynq.NewTask(TaskAuditRecord, data,
		asynq.Queue(QueueAudit),
		asynq.TaskID(e.ID),
		asynq.MaxRetry(10),
	), nil
}

// CleanupPayload configures an idempotency cleanup run.
type CleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// Retention returns the configured retention, defaulting to a day.
func (p CleanupPayload) Retention() time.Duration {
	if p.RetentionHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(p.RetentionHours) * time.Hour
}

// NewIdempotencyCleanupTask builds the cleanup task.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(CleanupPayload{RetentionHours: int(retention / time.Hour)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data, asynq.Queue(QueueDefault)), nil
}
