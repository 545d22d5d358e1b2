package listctl

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mutationRecorder struct {
	mu    sync.Mutex
	calls []mutationCall
	err   error
}

type mutationCall struct {
	RowID   string
	Payload Payload
	Key     string
}

func (m *mutationRecorder) mutate(ctx context.Context, rowID string, payload Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, mutationCall{RowID: rowID, Payload: payload, Key: IdempotencyKey(ctx)})
	return m.err
}

func (m *mutationRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func testCatalog(rec *mutationRecorder) Catalog[status] {
	return Catalog[status]{
		{Key: "approve", Label: "Approve", RequiredStatus: []status{statusPending}, Mutate: rec.mutate},
		{Key: "cancel", Label: "Cancel", RequiredStatus: []status{statusPending, statusProcessing}, Tone: ToneDanger, Mutate: rec.mutate},
		{
			Key: "reject", Label: "Reject", RequiredStatus: []status{statusPending},
			Fields:     []PayloadField{{Name: "reason", Label: "Reason", Multiline: true}},
			NewPayload: func() Payload { return &reasonPayload{} },
			Mutate:     rec.mutate,
		},
		{Key: "disable", Label: "Disable", RequiredStatus: []status{statusApproved}, Incomplete: true},
	}
}

func fixedToken() (string, error) { return "tok-1", nil }

func TestConfirmerCancelMakesNoCall(t *testing.T) {
	rec := &mutationRecorder{}
	c := NewConfirmer(testCatalog(rec), ConfirmerOptions{Resource: "items", NewToken: fixedToken})
	row := item{ID: "X", Status: statusPending}

	pending, err := c.Open(row, "approve")
	require.NoError(t, err)
	assert.Equal(t, PendingMutation{RowID: "X", ActionKey: "approve", Token: "tok-1"}, pending)
	assert.Equal(t, ConfirmOpen, c.State())

	require.NoError(t, c.Cancel())
	assert.Equal(t, Idle, c.State())
	_, ok := c.Pending()
	assert.False(t, ok)
	assert.Zero(t, rec.count())
	assert.Equal(t, statusPending, row.Status)
}

func TestConfirmerNeverMutatesOutsideSubmitting(t *testing.T) {
	rec := &mutationRecorder{}
	c := NewConfirmer(testCatalog(rec), ConfirmerOptions{Resource: "items", NewToken: fixedToken})

	assert.ErrorIs(t, c.Confirm(context.Background(), nil), ErrNoDialog)
	assert.Zero(t, rec.count())

	_, err := c.Open(item{ID: "X", Status: statusPending}, "approve")
	require.NoError(t, err)
	assert.Zero(t, rec.count(), "opening the dialog must not mutate")

	_, err = c.Open(item{ID: "Y", Status: statusPending}, "approve")
	assert.ErrorIs(t, err, ErrDialogOpen)
	assert.Zero(t, rec.count())

	require.NoError(t, c.Confirm(context.Background(), nil))
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, "tok-1", rec.calls[0].Key)
	assert.Equal(t, Idle, c.State())
}

func TestConfirmerRejectsActionOutsideStatus(t *testing.T) {
	rec := &mutationRecorder{}
	c := NewConfirmer(testCatalog(rec), ConfirmerOptions{Resource: "items", NewToken: fixedToken})

	_, err := c.Open(item{ID: "X", Status: statusApproved}, "approve")
	assert.ErrorIs(t, err, ErrActionNotPermitted)
	_, err = c.Open(item{ID: "X", Status: statusPending}, "nope")
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, Idle, c.State())
}

func TestConfirmerConflictKeepsDialogOpen(t *testing.T) {
	rec := &mutationRecorder{err: conflictErr{}}
	notes := &recordingNotifier{}
	refreshed := 0
	c := NewConfirmer(testCatalog(rec), ConfirmerOptions{
		Resource: "items",
		Notifier: notes,
		NewToken: fixedToken,
		Refresh:  func(context.Context) error { refreshed++; return nil },
	})

	_, err := c.Open(item{ID: "X", Status: statusPending}, "cancel")
	require.NoError(t, err)

	err = c.Confirm(context.Background(), nil)
	require.ErrorAs(t, err, &conflictErr{})
	assert.Equal(t, ConfirmOpen, c.State())
	assert.Equal(t, conflictErr{}, c.LastError())
	assert.Equal(t, Notification{Kind: KindError, Resource: "items", Message: "The record is still in use."}, notes.last())
	assert.Zero(t, refreshed)

	// The action stays retryable.
	rec.err = nil
	require.NoError(t, c.Confirm(context.Background(), nil))
	assert.Equal(t, 2, rec.count())
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, 1, refreshed)
	assert.Equal(t, KindSuccess, notes.last().Kind)
}

func TestConfirmerValidationStaysLocal(t *testing.T) {
	rec := &mutationRecorder{}
	c := NewConfirmer(testCatalog(rec), ConfirmerOptions{Resource: "items", NewToken: fixedToken})

	_, err := c.Open(item{ID: "X", Status: statusPending}, "reject")
	require.NoError(t, err)

	err = c.Confirm(context.Background(), map[string]string{"reason": "  "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["reason"])
	assert.Equal(t, ConfirmOpen, c.State())
	assert.Zero(t, rec.count())

	err = c.Confirm(context.Background(), map[string]string{"reason": "duplicate payment"})
	require.NoError(t, err)
	require.Equal(t, 1, rec.count())
	assert.Equal(t, &reasonPayload{Reason: "duplicate payment"}, rec.calls[0].Payload)
}

func TestConfirmerIncompleteActionNeverCallsAPI(t *testing.T) {
	rec := &mutationRecorder{}
	c := NewConfirmer(testCatalog(rec), ConfirmerOptions{Resource: "items", NewToken: fixedToken})

	_, err := c.Open(item{ID: "X", Status: statusApproved}, "disable")
	require.NoError(t, err)
	assert.ErrorIs(t, c.Confirm(context.Background(), nil), ErrActionIncomplete)
	assert.Equal(t, ConfirmOpen, c.State())
	assert.Zero(t, rec.count())
}

func TestConfirmerCancelRejectedWhileSubmitting(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	catalog := Catalog[status]{{
		Key: "approve", Label: "Approve", RequiredStatus: []status{statusPending},
		Mutate: func(ctx context.Context, rowID string, payload Payload) error {
			close(started)
			<-release
			return nil
		},
	}}
	c := NewConfirmer(catalog, ConfirmerOptions{Resource: "items", NewToken: fixedToken})
	_, err := c.Open(item{ID: "X", Status: statusPending}, "approve")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Confirm(ctx, nil) }()
	<-started

	assert.Equal(t, Submitting, c.State())
	assert.ErrorIs(t, c.Cancel(), ErrSubmitting)
	assert.ErrorIs(t, c.Confirm(context.Background(), nil), ErrSubmitting)

	// Cancelling the caller does not abort the mutation.
	cancel()
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, Idle, c.State())
}

func TestConfirmerRestore(t *testing.T) {
	rec := &mutationRecorder{}
	c := NewConfirmer(testCatalog(rec), ConfirmerOptions{Resource: "items"})

	require.NoError(t, c.Restore(PendingMutation{RowID: "X", ActionKey: "approve", Token: "abc"}))
	assert.Equal(t, ConfirmOpen, c.State())
	require.NoError(t, c.Confirm(context.Background(), nil))
	assert.Equal(t, "abc", rec.calls[0].Key)

	assert.ErrorIs(t, c.Restore(PendingMutation{RowID: "X", ActionKey: "approve"}), ErrNoDialog)
	assert.ErrorIs(t, c.Restore(PendingMutation{RowID: "X", ActionKey: "zzz", Token: "t"}), ErrUnknownAction)
}
