package employees

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
	"github.com/arguide/backoffice/internal/resources/resourcetest"
)

func TestCatalog(t *testing.T) {
	catalog := Catalog(resources.Deps{})
	resourcetest.AssertCatalog(t, catalog, Statuses)
	assert.Equal(t, []string{"disable", "remove"}, resourcetest.ActionKeys(catalog, StatusActive))
	assert.Equal(t, []string{"enable", "remove"}, resourcetest.ActionKeys(catalog, StatusInactive))
}

func TestRemoveDeletesAndRefetchesSamePage(t *testing.T) {
	backend := resourcetest.New(t)
	backend.List(listPath, []Employee{{ID: "e1", Name: "Kim", Points: 12500, Status: StatusActive}}, 31)

	h, err := Binding().Open(backend.Deps())
	require.NoError(t, err)
	t.Cleanup(h.Close)
	ctx := context.Background()

	q := listctl.Query{Filters: map[string]string{"companyName": "Hanbit"}, Page: 3, PageSize: 10}
	grid, err := h.Load(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, "12,500", grid.Rows[0].Cells[4])
	assert.Equal(t, 4, grid.TotalPages)
	assert.False(t, grid.HasNext())

	_, err = h.Open("e1", "remove")
	require.NoError(t, err)
	require.NoError(t, h.Confirm(ctx, nil))

	reqs := backend.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, http.MethodDelete, reqs[1].Method)
	assert.Equal(t, "/api/v1/employees/e1", reqs[1].Path)
	assert.Equal(t, "3", reqs[2].Query.Get("page"))
	assert.Equal(t, "Hanbit", reqs[2].Query.Get("companyName"))
	assert.True(t, h.Query().Equal(q))
}
