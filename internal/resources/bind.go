package resources

import (
	"context"
	"strings"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/listctl"
)

// Bind erases the row and status types of d.
func Bind[R listctl.Row[S], S ~string](d Definition[R, S]) Binding {
	return &binding[R, S]{def: d}
}

type binding[R listctl.Row[S], S ~string] struct {
	def Definition[R, S]
}

func (b *binding[R, S]) Name() string  { return b.def.Name }
func (b *binding[R, S]) Title() string { return b.def.Title }

func (b *binding[R, S]) Columns() []string {
	out := make([]string, 0, len(b.def.Columns))
	for _, col := range b.def.Columns {
		out = append(out, col.Label)
	}
	return out
}

func (b *binding[R, S]) Schema() []listctl.FilterField {
	return append([]listctl.FilterField(nil), b.def.Filters...)
}

func (b *binding[R, S]) Statuses() []StatusView {
	out := make([]StatusView, 0, len(b.def.Statuses))
	for _, opt := range b.def.Statuses {
		out = append(out, StatusView{Value: string(opt.Value), Label: opt.Label, Tone: opt.Tone})
	}
	return out
}

func (b *binding[R, S]) ActionKeys() []string {
	if b.def.Actions == nil {
		return nil
	}
	return b.def.Actions(Deps{}).Keys()
}

func (b *binding[R, S]) PendingQuery() (listctl.Query, bool) {
	if b.def.Pending == "" {
		return listctl.Query{}, false
	}
	return listctl.NewQuery(1, map[string]string{"status": string(b.def.Pending)}), true
}

func (b *binding[R, S]) Open(deps Deps) (Handle, error) {
	src, err := b.def.Source(deps)
	if err != nil {
		return nil, err
	}
	var catalog listctl.Catalog[S]
	if b.def.Actions != nil {
		catalog = wrap(b.def.Name, b.def.Actions(deps), deps)
	}
	validate := deps.Validate
	if validate == nil {
		validate = listctl.NewValidator()
	}
	ctrl, err := listctl.New(listctl.Config[R, S]{
		Resource:       b.def.Name,
		Source:         src,
		Catalog:        catalog,
		Filters:        b.def.Filters,
		DefaultFilters: b.def.DefaultFilters,
		PageSize:       deps.PageSize,
		Notifier:       deps.Notifier,
		Observer:       deps.Observer,
		Logger:         deps.Logger,
		Validate:       validate,
		NewToken:       deps.NewToken,
	})
	if err != nil {
		return nil, err
	}
	return &handle[R, S]{def: &b.def, ctrl: ctrl}, nil
}

type handle[R listctl.Row[S], S ~string] struct {
	def  *Definition[R, S]
	ctrl *listctl.Controller[R, S]
}

func (h *handle[R, S]) Resource() string { return h.def.Name }

func (h *handle[R, S]) Load(ctx context.Context, q listctl.Query) (Grid, error) {
	snap, err := h.ctrl.Load(ctx, q)
	return h.render(snap), err
}

func (h *handle[R, S]) Refresh(ctx context.Context) (Grid, error) {
	snap, err := h.ctrl.Refresh(ctx)
	return h.render(snap), err
}

func (h *handle[R, S]) Grid() Grid { return h.render(h.ctrl.Snapshot()) }

func (h *handle[R, S]) Query() listctl.Query { return h.ctrl.Query() }

func (h *handle[R, S]) Open(rowID, action string) (listctl.PendingMutation, error) {
	return h.ctrl.Open(rowID, action)
}

func (h *handle[R, S]) Restore(p listctl.PendingMutation) error { return h.ctrl.Restore(p) }

func (h *handle[R, S]) Confirm(ctx context.Context, values map[string]string) error {
	return h.ctrl.Confirm(ctx, values)
}

func (h *handle[R, S]) Cancel() error { return h.ctrl.Cancel() }

func (h *handle[R, S]) Close() { h.ctrl.Close() }

func (h *handle[R, S]) Envelope() any {
	snap := h.ctrl.Snapshot()
	return apiclient.NewListEnvelope(snap.Rows, snap.TotalCount)
}

func (h *handle[R, S]) Dialog() Dialog {
	confirmer := h.ctrl.Dialog()
	pending, ok := confirmer.Pending()
	if !ok {
		return Dialog{State: confirmer.State()}
	}
	action, _ := confirmer.Action()
	return Dialog{
		State:        confirmer.State(),
		Pending:      pending,
		Title:        action.Label,
		Confirmation: confirmationCopy(action),
		Tone:         action.Tone,
		Fields:       action.Fields,
		Incomplete:   action.Incomplete,
		Err:          confirmer.LastError(),
	}
}

func (h *handle[R, S]) render(snap listctl.Snapshot[R]) Grid {
	grid := Grid{
		Resource:   h.def.Name,
		Title:      h.def.Title,
		Columns:    make([]string, 0, len(h.def.Columns)),
		Query:      snap.Query,
		Rows:       make([]GridRow, 0, len(snap.Rows)),
		TotalCount: snap.TotalCount,
		TotalPages: listctl.PageResult[R]{TotalCount: snap.TotalCount}.TotalPages(snap.Query.PageSize),
		Loading:    snap.Loading,
		Err:        snap.Err,
	}
	for _, col := range h.def.Columns {
		grid.Columns = append(grid.Columns, col.Label)
	}
	for _, row := range snap.Rows {
		cells := make([]string, 0, len(h.def.Columns))
		for _, col := range h.def.Columns {
			cells = append(cells, col.Value(row))
		}
		actions := h.ctrl.Actions(row)
		views := make([]ActionView, 0, len(actions))
		for _, a := range actions {
			views = append(views, ActionView{Key: a.Key, Label: a.Label, Tone: a.Tone, Incomplete: a.Incomplete})
		}
		grid.Rows = append(grid.Rows, GridRow{
			ID:      row.RowID(),
			Cells:   cells,
			Status:  h.def.Statuses.View(row.RowStatus()),
			Actions: views,
		})
	}
	return grid
}

func confirmationCopy[S comparable](a listctl.Action[S]) string {
	if a.Confirmation != "" {
		return a.Confirmation
	}
	return "Are you sure you want to " + strings.ToLower(a.Label) + " this record?"
}
