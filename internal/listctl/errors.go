package listctl

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrClosed is returned once the controller has been unmounted.
	ErrClosed = errors.New("listctl: controller closed")
	// ErrStale marks a fetch that completed after a newer one was dispatched.
	ErrStale = errors.New("listctl: superseded by a newer fetch")
	// ErrInvalidQuery indicates a negative page or non-positive page size.
	ErrInvalidQuery = errors.New("listctl: invalid query")
	// ErrUnknownFilter indicates a filter name outside the schema.
	ErrUnknownFilter = errors.New("listctl: unknown filter")
	// ErrInvalidFilterValue indicates an enum filter value outside its options.
	ErrInvalidFilterValue = errors.New("listctl: invalid filter value")
	// ErrUnknownAction indicates an action key missing from the catalog.
	ErrUnknownAction = errors.New("listctl: unknown action")
	// ErrActionNotPermitted indicates the row status does not allow the action.
	ErrActionNotPermitted = errors.New("listctl: action not permitted for row status")
	// ErrActionIncomplete marks catalog entries whose transition is not defined yet.
	ErrActionIncomplete = errors.New("listctl: action is not available yet")
	// ErrDialogOpen is returned when opening a dialog while one is already open.
	ErrDialogOpen = errors.New("listctl: confirmation already open")
	// ErrNoDialog is returned when confirming or restoring without an open dialog.
	ErrNoDialog = errors.New("listctl: no confirmation open")
	// ErrSubmitting is returned while a mutation is in flight.
	ErrSubmitting = errors.New("listctl: mutation in progress")
	// ErrRowNotFound is returned when the row is not on the current page.
	ErrRowNotFound = errors.New("listctl: row not found on current page")
)

// ValidationError carries per-field messages for a rejected action payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "listctl: validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "listctl: validation failed (" + strings.Join(parts, "; ") + ")"
}

// UserMessage implements Messager.
func (e *ValidationError) UserMessage() string {
	return "Please correct the highlighted fields."
}

// Messager is implemented by errors that carry text safe to show to operators.
type Messager interface {
	UserMessage() string
}

// UserMessage returns operator-facing text for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var m Messager
	if errors.As(err, &m) {
		if msg := m.UserMessage(); msg != "" {
			return msg
		}
	}
	switch {
	case errors.Is(err, ErrActionIncomplete):
		return "This action is not available yet."
	case errors.Is(err, ErrActionNotPermitted):
		return "This action is not allowed for the current status."
	case errors.Is(err, ErrRowNotFound):
		return "The selected record is no longer on this page."
	case errors.Is(err, ErrSubmitting):
		return "The request is still being processed."
	}
	return "Something went wrong. Please try again."
}
