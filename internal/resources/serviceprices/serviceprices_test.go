package serviceprices

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
	"github.com/arguide/backoffice/internal/resources/resourcetest"
)

func TestCatalog(t *testing.T) {
	catalog := Catalog(resources.Deps{})
	resourcetest.AssertCatalog(t, catalog, Statuses)
	assert.Empty(t, resourcetest.ActionKeys(catalog, StatusActive))
	assert.Equal(t, []string{"delete"}, resourcetest.ActionKeys(catalog, StatusInactive))
}

func TestActiveRowCannotBeDeleted(t *testing.T) {
	backend := resourcetest.New(t)
	backend.List(listPath, []Price{{
		ID: "sp1", PlanName: "Enterprise", Amount: 990000, Currency: "KRW", PeriodMonths: 12,
		SeatLimit: 1000, Status: StatusActive, EffectiveFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}}, 1)

	h, err := Binding().Open(backend.Deps())
	require.NoError(t, err)
	t.Cleanup(h.Close)

	grid, err := h.Load(context.Background(), listctl.NewQuery(10, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"Enterprise", "KRW 990,000", "12", "1,000", "2026-01-01"}, grid.Rows[0].Cells)
	assert.Empty(t, grid.Rows[0].Actions)

	_, err = h.Open("sp1", "delete")
	assert.ErrorIs(t, err, listctl.ErrActionNotPermitted)
	assert.Empty(t, backend.Mutations())
}
