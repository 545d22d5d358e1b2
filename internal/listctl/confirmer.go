package listctl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// State is a Confirmer state.
type State int

const (
	Idle State = iota
	ConfirmOpen
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ConfirmOpen:
		return "confirm_open"
	case Submitting:
		return "submitting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// PendingMutation captures the dialog target while it is open.
type PendingMutation struct {
	RowID     string `json:"row_id"`
	ActionKey string `json:"action"`
	Token     string `json:"token"`
}

// ConfirmerOptions configures a Confirmer.
type ConfirmerOptions struct {
	Resource string
	Logger   *slog.Logger
	Notifier Notifier
	Observer Observer
	Validate *validator.Validate
	// Refresh re-fetches the current query after a successful mutation.
	Refresh func(ctx context.Context) error
	// NewToken overrides the dialog token generator.
	NewToken func() (string, error)
}

// Confirmer is the "are you sure" state machine:
//
//	Idle -> ConfirmOpen -> Submitting -> Idle (ok) | ConfirmOpen (error)
//
// The mutation is only ever invoked on the ConfirmOpen -> Submitting edge.
type Confirmer[S comparable] struct {
	catalog  Catalog[S]
	resource string
	logger   *slog.Logger
	notifier Notifier
	observer Observer
	validate *validator.Validate
	refresh  func(ctx context.Context) error
	newToken func() (string, error)

	mu      sync.Mutex
	state   State
	pending *PendingMutation
	action  Action[S]
	lastErr error
	closed  bool
}

// NewConfirmer constructs a Confirmer over catalog.
func NewConfirmer[S comparable](catalog Catalog[S], opts ConfirmerOptions) *Confirmer[S] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	validate := opts.Validate
	if validate == nil {
		validate = NewValidator()
	}
	newToken := opts.NewToken
	if newToken == nil {
		newToken = func() (string, error) { return nanoid.New() }
	}
	return &Confirmer[S]{
		catalog:  catalog,
		resource: opts.Resource,
		logger:   logger,
		notifier: notifier,
		observer: observer,
		validate: validate,
		refresh:  opts.Refresh,
		newToken: newToken,
	}
}

// State returns the current state.
func (c *Confirmer[S]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending returns the open dialog target, if any.
func (c *Confirmer[S]) Pending() (PendingMutation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return PendingMutation{}, false
	}
	return *c.pending, true
}

// Action returns the action of the open dialog.
func (c *Confirmer[S]) Action() (Action[S], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Action[S]{}, false
	}
	return c.action, true
}

// LastError returns the error shown in the open dialog.
func (c *Confirmer[S]) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Open moves Idle -> ConfirmOpen for the given row and action.
func (c *Confirmer[S]) Open(row Row[S], actionKey string) (PendingMutation, error) {
	action, ok := c.catalog.Lookup(actionKey)
	if !ok {
		return PendingMutation{}, fmt.Errorf("%w: %s", ErrUnknownAction, actionKey)
	}
	if !action.Allows(row.RowStatus()) {
		return PendingMutation{}, fmt.Errorf("%w: %s on %v", ErrActionNotPermitted, actionKey, row.RowStatus())
	}
	token, err := c.newToken()
	if err != nil {
		return PendingMutation{}, fmt.Errorf("listctl: dialog token: %w", err)
	}
	pending := PendingMutation{RowID: row.RowID(), ActionKey: action.Key, Token: token}
	if err := c.open(pending, action); err != nil {
		return PendingMutation{}, err
	}
	return pending, nil
}

// Restore reopens a dialog captured earlier, e.g. across HTTP requests.
// The row status was checked when the dialog was first opened.
func (c *Confirmer[S]) Restore(p PendingMutation) error {
	if p.RowID == "" || p.Token == "" {
		return ErrNoDialog
	}
	action, ok := c.catalog.Lookup(p.ActionKey)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, p.ActionKey)
	}
	return c.open(p, action)
}

func (c *Confirmer[S]) open(p PendingMutation, action Action[S]) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	switch c.state {
	case ConfirmOpen:
		return ErrDialogOpen
	case Submitting:
		return ErrSubmitting
	}
	c.state = ConfirmOpen
	c.pending = &p
	c.action = action
	c.lastErr = nil
	return nil
}

// Cancel discards the open dialog without calling the backend.
func (c *Confirmer[S]) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Submitting:
		return ErrSubmitting
	case ConfirmOpen:
		c.resetLocked()
	}
	return nil
}

// Confirm validates values, then moves ConfirmOpen -> Submitting and runs the
// mutation. The mutation is detached from ctx cancellation and always runs to
// completion. On success the dialog closes, a success notification is sent
// and the list is refreshed at its current query; on failure the dialog stays
// open with the error so the operator can retry.
func (c *Confirmer[S]) Confirm(ctx context.Context, values map[string]string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	switch c.state {
	case Idle:
		c.mu.Unlock()
		return ErrNoDialog
	case Submitting:
		c.mu.Unlock()
		return ErrSubmitting
	}
	action := c.action
	pending := *c.pending

	if action.Incomplete || action.Mutate == nil {
		c.lastErr = ErrActionIncomplete
		c.mu.Unlock()
		c.logger.Warn("incomplete action requested",
			slog.String("resource", c.resource),
			slog.String("action", action.Key),
			slog.String("row_id", pending.RowID))
		c.notifier.Notify(ctx, Notification{Kind: KindError, Resource: c.resource, Message: UserMessage(ErrActionIncomplete)})
		return ErrActionIncomplete
	}

	var payload Payload
	if action.NewPayload != nil {
		payload = action.NewPayload()
		payload.Bind(values)
		if err := c.check(payload); err != nil {
			c.lastErr = err
			c.mu.Unlock()
			return err
		}
	}

	c.state = Submitting
	c.lastErr = nil
	c.mu.Unlock()

	mctx := WithIdempotencyKey(context.WithoutCancel(ctx), pending.Token)
	err := action.Mutate(mctx, pending.RowID, payload)
	c.observer.ObserveMutation(c.resource, action.Key, err)

	c.mu.Lock()
	if c.closed {
		c.resetLocked()
		c.mu.Unlock()
		c.logger.Info("mutation finished after close",
			slog.String("resource", c.resource),
			slog.String("action", action.Key),
			slog.String("row_id", pending.RowID),
			slog.Any("error", err))
		return ErrClosed
	}
	if err != nil {
		c.state = ConfirmOpen
		c.lastErr = err
		c.mu.Unlock()
		c.logger.Error("mutation failed",
			slog.String("resource", c.resource),
			slog.String("action", action.Key),
			slog.String("row_id", pending.RowID),
			slog.Any("error", err))
		c.notifier.Notify(ctx, Notification{Kind: KindError, Resource: c.resource, Message: UserMessage(err)})
		return err
	}
	c.resetLocked()
	c.mu.Unlock()

	c.logger.Info("mutation applied",
		slog.String("resource", c.resource),
		slog.String("action", action.Key),
		slog.String("row_id", pending.RowID))
	c.notifier.Notify(ctx, Notification{Kind: KindSuccess, Resource: c.resource, Message: action.SuccessMessage()})
	if c.refresh != nil {
		// Fetch failures are surfaced by the fetcher itself.
		_ = c.refresh(ctx)
	}
	return nil
}

// Close drops callbacks of any mutation still in flight.
func (c *Confirmer[S]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.state == ConfirmOpen {
		c.resetLocked()
	}
}

func (c *Confirmer[S]) resetLocked() {
	c.state = Idle
	c.pending = nil
	c.action = Action[S]{}
	c.lastErr = nil
}

func (c *Confirmer[S]) check(payload Payload) error {
	err := c.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

// NewValidator returns a validator that reports fields by their `form` tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}
