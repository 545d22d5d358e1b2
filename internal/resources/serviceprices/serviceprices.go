// Package serviceprices manages subscription plan prices.
package serviceprices

import (
	"time"

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

type Price struct {
	ID            string    `json:"priceId"`
	PlanName      string    `json:"planName"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	PeriodMonths  int       `json:"periodMonths"`
	SeatLimit     int       `json:"seatLimit"`
	Status        Status    `json:"status"`
	EffectiveFrom time.Time `json:"effectiveFrom"`
}

func (p Price) RowID() string     { return p.ID }
func (p Price) RowStatus() Status { return p.Status }

const (
	listPath = "/api/v1/service-prices"
	itemPath = "/api/v1/service-prices/%s"
)

// Catalog only allows deleting retired prices; prices referenced by a
// subscription fail with a conflict.
func Catalog(d resources.Deps) listctl.Catalog[Status] {
	return listctl.Catalog[Status]{
		{
			Key:            "delete",
			Label:          "Delete",
			RequiredStatus: []Status{StatusInactive},
			Confirmation:   "Delete this price permanently?",
			Success:        "Service price deleted",
			Tone:           listctl.ToneDanger,
			Mutate:         d.Delete(itemPath),
		},
	}
}

func Definition() resources.Definition[Price, Status] {
	return resources.Definition[Price, Status]{
		Name:  "serviceprices",
		Title: "Service prices",
		Columns: []resources.Column[Price]{
			{Key: "plan", Label: "Plan", Value: func(p Price) string { return p.PlanName }},
			{Key: "amount", Label: "Price", Value: func(p Price) string { return resources.Money(p.Amount, p.Currency) }},
			{Key: "period", Label: "Months", Value: func(p Price) string { return resources.Int(p.PeriodMonths) }},
			{Key: "seats", Label: "Seats", Value: func(p Price) string { return resources.Count(p.SeatLimit) }},
			{Key: "from", Label: "Effective", Value: func(p Price) string { return resources.Date(p.EffectiveFrom) }},
		},
		Filters:  []listctl.FilterField{Statuses.Filter()},
		Statuses: Statuses,
		Source:   resources.APISource[Price](listPath),
		Actions:  Catalog,
	}
}

func Binding() resources.Binding { return resources.Bind(Definition()) }
