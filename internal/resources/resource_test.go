package resources

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arguide/backoffice/internal/listctl"
)

type ticketStatus string

type ticket struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Status ticketStatus `json:"status"`
}

func (t ticket) RowID() string           { return t.ID }
func (t ticket) RowStatus() ticketStatus { return t.Status }

var ticketStatuses = StatusTable[ticketStatus]{
	{Value: "OPEN", Label: "Open", Tone: listctl.TonePrimary},
	{Value: "CLOSED", Label: "Closed", Tone: listctl.ToneNeutral},
}

func ticketDefinition(rows []ticket, mutate listctl.MutationFunc) Definition[ticket, ticketStatus] {
	return Definition[ticket, ticketStatus]{
		Name:  "tickets",
		Title: "Tickets",
		Columns: []Column[ticket]{
			{Key: "title", Label: "Title", Value: func(t ticket) string { return t.Title }},
		},
		Filters:  []listctl.FilterField{SearchFilter("Title"), ticketStatuses.Filter()},
		Statuses: ticketStatuses,
		Pending:  "OPEN",
		Source: func(Deps) (listctl.Source[ticket], error) {
			return listctl.SourceFunc[ticket](func(ctx context.Context, q listctl.Query) (listctl.PageResult[ticket], error) {
				return listctl.PageResult[ticket]{Rows: rows, TotalCount: len(rows)}, nil
			}), nil
		},
		Actions: func(Deps) listctl.Catalog[ticketStatus] {
			return listctl.Catalog[ticketStatus]{
				{Key: "close", Label: "Close", RequiredStatus: []ticketStatus{"OPEN"}, Tone: listctl.ToneDanger, Mutate: mutate},
			}
		},
	}
}

func TestStatusTableUnknown(t *testing.T) {
	opt := ticketStatuses.Lookup("MERGED")
	assert.Equal(t, UnknownLabel, opt.Label)
	assert.Equal(t, listctl.ToneNeutral, opt.Tone)
	assert.False(t, ticketStatuses.Known("MERGED"))
	assert.True(t, ticketStatuses.Known("OPEN"))
	assert.Equal(t, []listctl.Option{{Value: "OPEN", Label: "Open"}, {Value: "CLOSED", Label: "Closed"}}, ticketStatuses.Options())
}

func TestBindingRendersGrid(t *testing.T) {
	b := Bind(ticketDefinition([]ticket{
		{ID: "1", Title: "Broken anchor", Status: "OPEN"},
		{ID: "2", Title: "Typo", Status: "CLOSED"},
		{ID: "3", Title: "Mystery", Status: "MERGED"},
	}, nil))

	assert.Equal(t, "tickets", b.Name())
	assert.Equal(t, []string{"Title"}, b.Columns())
	assert.Equal(t, []string{"close"}, b.ActionKeys())
	q, ok := b.PendingQuery()
	require.True(t, ok)
	assert.Equal(t, "OPEN", q.Filter("status"))

	h, err := b.Open(Deps{PageSize: 2})
	require.NoError(t, err)
	t.Cleanup(h.Close)

	grid, err := h.Load(context.Background(), listctl.NewQuery(2, nil))
	require.NoError(t, err)
	// oversized pages are truncated
	require.Len(t, grid.Rows, 2)
	assert.Equal(t, 3, grid.TotalCount)
	assert.Equal(t, 2, grid.TotalPages)
	assert.True(t, grid.HasNext())
	assert.False(t, grid.HasPrev())

	assert.Equal(t, []string{"Broken anchor"}, grid.Rows[0].Cells)
	assert.Equal(t, []ActionView{{Key: "close", Label: "Close", Tone: listctl.ToneDanger}}, grid.Rows[0].Actions)
	assert.Empty(t, grid.Rows[1].Actions)
	assert.Equal(t, "Closed", grid.Rows[1].Status.Label)
}

func TestHandleDialogLifecycle(t *testing.T) {
	var closed []string
	mutate := func(ctx context.Context, rowID string, _ listctl.Payload) error {
		closed = append(closed, rowID)
		return nil
	}
	h, err := Bind(ticketDefinition([]ticket{{ID: "1", Status: "OPEN"}}, mutate)).Open(Deps{
		NewToken: func() (string, error) { return "t1", nil },
	})
	require.NoError(t, err)
	t.Cleanup(h.Close)
	ctx := context.Background()

	_, err = h.Load(ctx, listctl.NewQuery(10, nil))
	require.NoError(t, err)
	assert.False(t, h.Dialog().Open())

	pending, err := h.Open("1", "close")
	require.NoError(t, err)
	assert.Equal(t, "t1", pending.Token)

	dialog := h.Dialog()
	assert.True(t, dialog.Open())
	assert.False(t, dialog.Submitting())
	assert.Equal(t, "Are you sure you want to close this record?", dialog.Confirmation)

	require.NoError(t, h.Confirm(ctx, nil))
	assert.Equal(t, []string{"1"}, closed)
	assert.False(t, h.Dialog().Open())
}

func TestEnvelope(t *testing.T) {
	h, err := Bind(ticketDefinition([]ticket{{ID: "1", Title: "A", Status: "OPEN"}}, nil)).Open(Deps{})
	require.NoError(t, err)
	t.Cleanup(h.Close)
	_, err = h.Load(context.Background(), listctl.NewQuery(10, nil))
	require.NoError(t, err)

	data, err := json.Marshal(h.Envelope())
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":{"objectList":[{"id":"1","title":"A","status":"OPEN"}],"totalItems":1}}`, string(data))
}

func TestAPISourceRequiresClient(t *testing.T) {
	_, err := APISource[ticket]("/x")(Deps{})
	assert.True(t, errors.Is(err, ErrNoAPI))
}

func TestRegistry(t *testing.T) {
	b := Bind(ticketDefinition(nil, nil))
	reg, err := NewRegistry(b)
	require.NoError(t, err)

	got, ok := reg.Lookup("tickets")
	require.True(t, ok)
	assert.Equal(t, "Tickets", got.Title())
	assert.Error(t, reg.Register(b))
	assert.Equal(t, []string{"tickets"}, reg.Names())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "USD 1,234.50", Money(1234.5, "USD"))
	assert.Equal(t, "1,234.50 XYZ1", Money(1234.5, "XYZ1"))
	assert.Equal(t, "12,345", Count(12345))
}
