package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arguide/backoffice/internal/listctl"
)

func newActCmd(c *cli) *cobra.Command {
	var (
		flags  queryFlags
		fields []string
		yes    bool
	)
	cmd := &cobra.Command{
		Use:     "act <resource> <row-id> <action>",
		Short:   "Run a row action after confirmation",
		GroupID: "lists",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, rowID, action := args[0], args[1], args[2]
			b, err := c.binding(resource)
			if err != nil {
				return err
			}
			values, err := parseFields(fields)
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
			if _, err := h.Load(cmd.Context(), q); err != nil {
				return fmt.Errorf("%s: %s", b.Title(), listctl.UserMessage(err))
			}
			if _, err := h.Open(rowID, action); err != nil {
				if errors.Is(err, listctl.ErrRowNotFound) {
					return fmt.Errorf("row %s is not on page %d of %s; narrow it with --filter or --page", rowID, flags.page, resource)
				}
				return fmt.Errorf("%s %s: %s", action, rowID, listctl.UserMessage(err))
			}

			dialog := h.Dialog()
			fmt.Fprintf(c.stdout, "%s\n%s\n", dialog.Title, dialog.Confirmation)
			if dialog.Incomplete {
				_ = h.Cancel()
				return fmt.Errorf("%s: %s", action, listctl.UserMessage(listctl.ErrActionIncomplete))
			}
			for _, field := range dialog.Fields {
				if _, ok := values[field.Name]; ok || !c.isTerminal() {
					continue
				}
				fmt.Fprintf(c.stdout, "%s: ", field.Label)
				v, err := c.readLine()
				if err != nil {
					return err
				}
				values[field.Name] = v
			}

			if !yes {
				if !c.isTerminal() {
					_ = h.Cancel()
					return errors.New("refusing to submit without --yes on non-interactive input")
				}
				fmt.Fprint(c.stdout, "Proceed? [y/N] ")
				answer, err := c.readLine()
				if err != nil {
					return err
				}
				if a := strings.ToLower(answer); a != "y" && a != "yes" {
					_ = h.Cancel()
					fmt.Fprintln(c.stdout, "Cancelled.")
					return nil
				}
			}

			if err := h.Confirm(cmd.Context(), values); err != nil {
				var verr *listctl.ValidationError
				if errors.As(err, &verr) {
					names := make([]string, 0, len(verr.Fields))
					for name := range verr.Fields {
						names = append(names, name)
					}
					sort.Strings(names)
					for _, name := range names {
						fmt.Fprintf(c.stderr, "  %s: %s\n", name, verr.Fields[name])
					}
				}
				return fmt.Errorf("%s %s: %s", action, rowID, listctl.UserMessage(err))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringArrayVar(&fields, "field", nil, "dialog input as name=value (repeatable)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func parseFields(raw []string) (map[string]string, error) {
	values := make(map[string]string, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("field %q must be name=value", kv)
		}
		values[strings.TrimSpace(name)] = value
	}
	return values, nil
}
