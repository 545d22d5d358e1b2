package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/arguide/backoffice/internal/resources"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printGrid(w io.Writer, grid resources.Grid) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := append([]string{"ID"}, upper(grid.Columns)...)
	header = append(header, "STATUS", "ACTIONS")
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range grid.Rows {
		cells := append([]string{row.ID}, row.Cells...)
		keys := make([]string, 0, len(row.Actions))
		for _, a := range row.Actions {
			key := a.Key
			if a.Incomplete {
				key += "*"
			}
			keys = append(keys, key)
		}
		cells = append(cells, row.Status.Label, strings.Join(keys, ","))
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()

	if len(grid.Rows) == 0 {
		fmt.Fprintln(w, "No records match the current filters.")
	}
	pages := grid.TotalPages
	if pages == 0 {
		pages = 1
	}
	fmt.Fprintf(w, "\n%s: page %d of %d, %d records\n", grid.Title, grid.Query.Page+1, pages, grid.TotalCount)
}

func printResources(w io.Writer, bindings []resources.Binding) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTITLE\tFILTERS\tACTIONS")
	for _, b := range bindings {
		info := describe(b)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Name, info.Title, strings.Join(info.Filters, ","), strings.Join(info.Actions, ","))
	}
	tw.Flush()
}

func upper(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}
