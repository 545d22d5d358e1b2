// Package pointoptions manages the reward catalogue employees redeem points
// against.
package pointoptions

import (
	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

var Statuses = resources.StatusTable[Status]{
	{Value: StatusActive, Label: "Active", Tone: listctl.TonePrimary},
	{Value: StatusInactive, Label: "Inactive", Tone: listctl.ToneNeutral},
}

type Option struct {
	ID     string `json:"optionId"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Stock  int    `json:"stock"`
	Status Status `json:"status"`
}

func (o Option) RowID() string     { return o.ID }
func (o Option) RowStatus() Status { return o.Status }

const (
	listPath = "/api/v1/point-options"
	itemPath = "/api/v1/point-options/%s"
)

func Catalog(d resources.Deps) listctl.Catalog[Status] {
	return listctl.Catalog[Status]{
		{
			Key:            "delete",
			Label:          "Delete",
			RequiredStatus: []Status{StatusActive, StatusInactive},
			Confirmation:   "Delete this point option? Options with open requests cannot be deleted.",
			Success:        "Point option deleted",
			Tone:           listctl.ToneDanger,
			Mutate:         d.Delete(itemPath),
		},
	}
}

func Definition() resources.Definition[Option, Status] {
	return resources.Definition[Option, Status]{
		Name:  "pointoptions",
		Title: "Point options",
		Columns: []resources.Column[Option]{
			{Key: "name", Label: "Name", Value: func(o Option) string { return o.Name }},
			{Key: "points", Label: "Points", Value: func(o Option) string { return resources.Count(o.Points) }},
			{Key: "stock", Label: "Stock", Value: func(o Option) string { return resources.Count(o.Stock) }},
		},
		Filters: []listctl.FilterField{
			resources.SearchFilter("Name"),
			Statuses.Filter(),
		},
		Statuses: Statuses,
		Source:   resources.APISource[Option](listPath),
		Actions:  Catalog,
	}
}

func Binding() resources.Binding { return resources.Bind(Definition()) }
