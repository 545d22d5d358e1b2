package resources

import (
	"errors"

	"github.com/arguide/backoffice/internal/listctl"
)

// StatusView is a rendered status badge.
type StatusView struct {
	Value string
	Label string
	Tone  listctl.Tone
}

// ActionView is a rendered row action control.
type ActionView struct {
	Key        string
	Label      string
	Tone       listctl.Tone
	Incomplete bool
}

// GridRow is one rendered row.
type GridRow struct {
	ID      string
	Cells   []string
	Status  StatusView
	Actions []ActionView
}

// Grid is the rendered state of a list page.
type Grid struct {
	Resource   string
	Title      string
	Columns    []string
	Query      listctl.Query
	Rows       []GridRow
	TotalCount int
	TotalPages int
	Loading    bool
	Err        error
}

// ErrMessage is the operator-facing text of the last fetch error.
func (g Grid) ErrMessage() string {
	if g.Err == nil {
		return ""
	}
	return listctl.UserMessage(g.Err)
}

// HasPrev reports whether a previous page exists.
func (g Grid) HasPrev() bool { return g.Query.Page > 0 }

// HasNext reports whether a next page exists.
func (g Grid) HasNext() bool { return g.Query.Page+1 < g.TotalPages }

// Dialog is the rendered confirmation dialog.
type Dialog struct {
	State        listctl.State
	Pending      listctl.PendingMutation
	Title        string
	Confirmation string
	Tone         listctl.Tone
	Fields       []listctl.PayloadField
	Incomplete   bool
	Err          error
}

// Open reports whether the dialog is visible.
func (d Dialog) Open() bool { return d.State != listctl.Idle }

// Submitting reports whether the confirm control must be disabled.
func (d Dialog) Submitting() bool { return d.State == listctl.Submitting }

// ErrMessage is the operator-facing text of the last submit error.
func (d Dialog) ErrMessage() string {
	if d.Err == nil {
		return ""
	}
	return listctl.UserMessage(d.Err)
}

// FieldErrors returns per-field validation messages.
func (d Dialog) FieldErrors() map[string]string {
	var verr *listctl.ValidationError
	if errors.As(d.Err, &verr) {
		return verr.Fields
	}
	return nil
}
