package audit

import (
	"context"

	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
)

// Lister reads entries page by page.
type Lister interface {
	List(ctx context.Context, q listctl.Query) (listctl.PageResult[Entry], error)
}

// Definition describes the read-only audit page. resourceNames populate the
// resource filter.
func Definition(store Lister, resourceNames []string) resources.Definition[Entry, Outcome] {
	opts := make([]listctl.Option, 0, len(resourceNames))
	for _, name := range resourceNames {
		opts = append(opts, listctl.Option{Value: name, Label: name})
	}
	return resources.Definition[Entry, Outcome]{
		Name:  "audit",
		Title: "Audit trail",
		Columns: []resources.Column[Entry]{
			{Key: "at", Label: "When", Value: func(e Entry) string { return resources.DateTime(e.OccurredAt) }},
			{Key: "actor", Label: "Operator", Value: func(e Entry) string { return e.ActorEmail }},
			{Key: "resource", Label: "Resource", Value: func(e Entry) string { return e.Resource }},
			{Key: "action", Label: "Action", Value: func(e Entry) string { return e.Action }},
			{Key: "target", Label: "Record", Value: func(e Entry) string { return e.Target }},
			{Key: "message", Label: "Message", Value: func(e Entry) string { return e.Message }},
		},
		Filters: []listctl.FilterField{
			resources.SearchFilter("Record or operator"),
			{Name: "resource", Label: "Resource", Kind: listctl.FieldEnum, Options: opts},
			Outcomes.Filter(),
		},
		Statuses: Outcomes,
		Source: func(resources.Deps) (listctl.Source[Entry], error) {
			if store == nil {
				return nil, resources.ErrNoAPI
			}
			return listctl.SourceFunc[Entry](store.List), nil
		},
	}
}

// Binding registers the audit page.
func Binding(store Lister, resourceNames []string) resources.Binding {
	return resources.Bind(Definition(store, resourceNames))
}
