package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
)

// queryFlags are the paging and filter flags shared by list and act.
type queryFlags struct {
	filters []string
	page    int
	size    int
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "filter as name=value (repeatable; replaces the default filters)")
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&f.size, "size", listctl.DefaultPageSize, "rows per page")
}

// query builds the applied query. Without --filter the resource defaults
// stay in place.
func (f *queryFlags) query(schema []listctl.FilterField, defaults listctl.Query) (listctl.Query, error) {
	if f.page < 1 || f.size <= 0 {
		return listctl.Query{}, fmt.Errorf("%w: page must be >= 1 and size > 0", listctl.ErrInvalidQuery)
	}
	q := listctl.Query{Page: f.page - 1, PageSize: f.size, Filters: defaults.Clone().Filters}
	if len(f.filters) == 0 {
		return q, nil
	}
	known := make(map[string]bool, len(schema))
	for _, field := range schema {
		known[field.Name] = true
	}
	filters := make(map[string]string, len(f.filters))
	for _, raw := range f.filters {
		name, value, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return listctl.Query{}, fmt.Errorf("filter %q must be name=value", raw)
		}
		if !known[name] {
			return listctl.Query{}, fmt.Errorf("unknown filter %q", name)
		}
		if v := strings.TrimSpace(value); v != "" {
			filters[name] = v
		}
	}
	q.Filters = filters
	return q, nil
}

func newResourcesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "resources",
		Short:   "List the resources that can be browsed",
		GroupID: "lists",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.jsonOutput {
				out := make([]resourceInfo, 0, len(c.registry.All()))
				for _, b := range c.registry.All() {
					out = append(out, describe(b))
				}
				return printJSON(c.stdout, out)
			}
			printResources(c.stdout, c.registry.All())
			return nil
		},
	}
}

func newListCmd(c *cli) *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:     "list <resource>",
		Short:   "Show one page of a resource list",
		GroupID: "lists",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.binding(args[0])
			if err != nil {
				return err
			}
			h, err := b.Open(c.deps(flags.size))
			if err != nil {
				return err
			}
			defer h.Close()

			q, err := flags.query(b.Schema(), h.Query())
			if err != nil {
				return err
			}
			grid, err := h.Load(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("%s: %s", b.Title(), listctl.UserMessage(err))
			}
			if c.jsonOutput {
				return printJSON(c.stdout, h.Envelope())
			}
			printGrid(c.stdout, grid)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

type resourceInfo struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Filters []string `json:"filters"`
	Actions []string `json:"actions"`
}

func describe(b resources.Binding) resourceInfo {
	info := resourceInfo{Name: b.Name(), Title: b.Title(), Actions: b.ActionKeys()}
	for _, f := range b.Schema() {
		info.Filters = append(info.Filters, f.Name)
	}
	return info
}
