package listctl

import (
	"context"
	"slices"
)

// Tone hints how an action control is styled.
type Tone string

const (
	TonePrimary Tone = "primary"
	ToneDanger  Tone = "danger"
	ToneNeutral Tone = "neutral"
)

// Payload is the input collected by a confirmation dialog. Bind copies form
// values into the struct; validation runs on its `validate` tags.
type Payload interface {
	Bind(values map[string]string)
}

// PayloadField describes one dialog input for rendering.
type PayloadField struct {
	Name      string
	Label     string
	Multiline bool
}

// MutationFunc performs the state transition on the backend.
type MutationFunc func(ctx context.Context, rowID string, payload Payload) error

// Action is one catalog entry: a status-gated operation behind a
// confirmation dialog.
type Action[S comparable] struct {
	Key            string
	Label          string
	RequiredStatus []S
	Confirmation   string
	Success        string
	Tone           Tone
	Fields         []PayloadField
	NewPayload     func() Payload
	Mutate         MutationFunc
	// Incomplete marks actions whose target transition has not been defined
	// by the backend. They are listed but never submitted.
	Incomplete bool
}

// Allows reports whether status is in RequiredStatus.
func (a Action[S]) Allows(status S) bool {
	return slices.Contains(a.RequiredStatus, status)
}

// SuccessMessage returns the toast text for a completed mutation.
func (a Action[S]) SuccessMessage() string {
	if a.Success != "" {
		return a.Success
	}
	return a.Label + " completed"
}

// Catalog is the ordered, static table of actions for a resource.
type Catalog[S comparable] []Action[S]

// Dispatch returns, in catalog order, exactly the actions permitted for
// status. A status without matching actions yields an empty slice.
func (c Catalog[S]) Dispatch(status S) []Action[S] {
	out := make([]Action[S], 0, len(c))
	for _, action := range c {
		if action.Allows(status) {
			out = append(out, action)
		}
	}
	return out
}

// ForRow is Dispatch applied to the row's status.
func (c Catalog[S]) ForRow(row Row[S]) []Action[S] {
	return c.Dispatch(row.RowStatus())
}

// Lookup finds an action by key.
func (c Catalog[S]) Lookup(key string) (Action[S], bool) {
	for _, action := range c {
		if action.Key == key {
			return action, true
		}
	}
	return Action[S]{}, false
}

// Keys returns the action keys in catalog order.
func (c Catalog[S]) Keys() []string {
	keys := make([]string, 0, len(c))
	for _, action := range c {
		keys = append(keys, action.Key)
	}
	return keys
}
