// Package resources declares the managed back-office resources: their rows,
// status tables, filters, grid columns, action catalogs and API bindings.
// Definitions are generic; Binding and Handle erase the row and status types
// for the console, the CLI and the dashboard.
package resources

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/listctl"
)

// ErrNoAPI is returned when an API-backed resource is opened without a client.
var ErrNoAPI = errors.New("resources: api client required")

// Deps are the collaborators a resource controller is built with.
type Deps struct {
	API      *apiclient.Client
	Logger   *slog.Logger
	Notifier listctl.Notifier
	Observer listctl.Observer
	Validate *validator.Validate
	PageSize int
	NewToken func() (string, error)
	// Guard and Auditor wrap every submitted mutation when set.
	Guard   Guard
	Auditor Auditor
}

// Column renders one grid cell.
type Column[R any] struct {
	Key   string
	Label string
	Value func(R) string
}

// Definition describes one resource list page.
type Definition[R listctl.Row[S], S ~string] struct {
	Name           string
	Title          string
	Columns        []Column[R]
	Filters        []listctl.FilterField
	DefaultFilters map[string]string
	Statuses       StatusTable[S]
	// Pending is the status counted on the dashboard. Empty when the
	// resource has no review queue.
	Pending S
	Source  func(Deps) (listctl.Source[R], error)
	Actions func(Deps) listctl.Catalog[S]
}

// Binding is a type-erased resource definition.
type Binding interface {
	Name() string
	Title() string
	Columns() []string
	Schema() []listctl.FilterField
	Statuses() []StatusView
	ActionKeys() []string
	// PendingQuery is the query whose total is the resource's review queue.
	PendingQuery() (listctl.Query, bool)
	Open(deps Deps) (Handle, error)
}

// Handle is a mounted list controller with its rows rendered for display.
type Handle interface {
	Resource() string
	Load(ctx context.Context, q listctl.Query) (Grid, error)
	Refresh(ctx context.Context) (Grid, error)
	Grid() Grid
	Query() listctl.Query
	Open(rowID, action string) (listctl.PendingMutation, error)
	Restore(p listctl.PendingMutation) error
	Confirm(ctx context.Context, values map[string]string) error
	Cancel() error
	Dialog() Dialog
	// Envelope returns the visible page in the backend list format.
	Envelope() any
	Close()
}
