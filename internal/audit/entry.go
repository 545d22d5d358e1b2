// Package audit keeps the trail of confirmed list actions. Entries are
// enqueued by the console, persisted by the worker and listed back on the
// audit page through the same list controller as every other resource.
package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
)

// Outcome is the result of a submitted confirmation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// Outcomes is the status table of the audit page.
var Outcomes = resources.StatusTable[Outcome]{
	{Value: OutcomeSuccess, Label: "Success", Tone: listctl.TonePrimary},
	{Value: OutcomeError, Label: "Failed", Tone: listctl.ToneDanger},
}

// Entry is one audit record. Target is the id of the row the action was
// applied to.
type Entry struct {
	ID         string    `json:"id"`
	Resource   string    `json:"resource"`
	Action     string    `json:"action"`
	Target     string    `json:"target"`
	Outcome    Outcome   `json:"outcome"`
	Message    string    `json:"message,omitempty"`
	ActorID    string    `json:"actorId,omitempty"`
	ActorEmail string    `json:"actorEmail,omitempty"`
	Token      string    `json:"token,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (e Entry) RowID() string      { return e.ID }
func (e Entry) RowStatus() Outcome { return e.Outcome }

// Validate checks the fields required to persist e.
func (e Entry) Validate() error {
	if e.ID == "" {
		return errors.New("audit: entry id required")
	}
	if strings.TrimSpace(e.Resource) == "" || strings.TrimSpace(e.Action) == "" || strings.TrimSpace(e.Target) == "" {
		return errors.New("audit: entry requires resource/action/target")
	}
	if !Outcomes.Known(e.Outcome) {
		return errors.New("audit: unknown outcome " + string(e.Outcome))
	}
	return nil
}

// Sink accepts entries for persistence.
type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, e Entry) error

// Record implements Sink.
func (f SinkFunc) Record(ctx context.Context, e Entry) error { return f(ctx, e) }
