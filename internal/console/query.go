package console

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/listctl"
)

// MaxPageSize bounds the rows requested per page.
const MaxPageSize = 100

// PageSizes are the page sizes offered under the grid.
var PageSizes = []int{10, 20, 50}

// appliedParam marks URLs whose filters were applied explicitly, so an
// empty filter set does not fall back to the resource defaults.
const appliedParam = "applied"

// parseQuery reads page, size and filters from the URL. Filters default to
// base when the URL names none and carries no applied marker.
func parseQuery(schema []listctl.FilterField, values url.Values, base listctl.Query) (listctl.Query, error) {
	q := listctl.Query{Page: 0, PageSize: base.PageSize}
	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return listctl.Query{}, listctl.ErrInvalidQuery
		}
		q.Page = n
	}
	if raw := values.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > MaxPageSize {
			return listctl.Query{}, listctl.ErrInvalidQuery
		}
		q.PageSize = n
	}

	explicit := values.Get(appliedParam) == "1"
	filters := make(map[string]string)
	for _, field := range schema {
		if _, ok := values[field.Name]; ok {
			explicit = true
			if v := strings.TrimSpace(values.Get(field.Name)); v != "" {
				filters[field.Name] = v
			}
		}
	}
	if explicit {
		q.Filters = filters
	} else {
		q.Filters = base.Clone().Filters
	}
	return q, nil
}

// encodeQuery renders q as URL parameters with the applied marker.
func encodeQuery(q listctl.Query) url.Values {
	values := apiclient.EncodeQuery(q)
	values.Set(appliedParam, "1")
	return values
}

type sizeOption struct {
	Size   int
	Href   string
	Active bool
}

// pageLinks builds the pager hrefs for q on a list with totalPages pages.
func pageLinks(path string, q listctl.Query, totalPages int) (prev, next string, sizes []sizeOption) {
	at := func(page, size int) string {
		moved := q.Clone()
		moved.Page = page
		moved.PageSize = size
		return path + "?" + encodeQuery(moved).Encode()
	}
	if q.Page > 0 {
		prev = at(q.Page-1, q.PageSize)
	}
	if q.Page+1 < totalPages {
		next = at(q.Page+1, q.PageSize)
	}
	for _, size := range PageSizes {
		sizes = append(sizes, sizeOption{Size: size, Href: at(0, size), Active: size == q.PageSize})
	}
	return prev, next, sizes
}
