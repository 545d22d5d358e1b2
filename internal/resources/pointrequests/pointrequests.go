// Package pointrequests manages employee requests to redeem points.
package pointrequests

import (
	"time"

	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var Statuses = resources.StatusTable[Status]{
	{Value: StatusPending, Label: "Pending", Tone: listctl.TonePrimary},
	{Value: StatusApproved, Label: "Approved", Tone: listctl.ToneNeutral},
	{Value: StatusRejected, Label: "Rejected", Tone: listctl.ToneDanger},
}

type Request struct {
	ID           string    `json:"requestId"`
	EmployeeName string    `json:"employeeName"`
	OptionName   string    `json:"optionName"`
	Points       int       `json:"points"`
	Status       Status    `json:"status"`
	RequestedAt  time.Time `json:"requestedAt"`
}

func (r Request) RowID() string     { return r.ID }
func (r Request) RowStatus() Status { return r.Status }

const (
	listPath    = "/api/v1/point-requests"
	approvePath = "/api/v1/point-requests/%s/approve"
	rejectPath  = "/api/v1/point-requests/%s/reject"
)

func Catalog(d resources.Deps) listctl.Catalog[Status] {
	return listctl.Catalog[Status]{
		{
			Key:            "approve",
			Label:          "Approve",
			RequiredStatus: []Status{StatusPending},
			Confirmation:   "Approve this request? The points will be deducted.",
			Success:        "Point request approved",
			Tone:           listctl.TonePrimary,
			Mutate:         d.Post(approvePath),
		},
		{
			Key:            "reject",
			Label:          "Reject",
			RequiredStatus: []Status{StatusPending},
			Success:        "Point request rejected",
			Tone:           listctl.ToneDanger,
			Fields:         []listctl.PayloadField{resources.ReasonField},
			NewPayload:     resources.NewReasonPayload,
			Mutate:         d.Post(rejectPath),
		},
	}
}

func Definition() resources.Definition[Request, Status] {
	return resources.Definition[Request, Status]{
		Name:  "pointrequests",
		Title: "Point requests",
		Columns: []resources.Column[Request]{
			{Key: "employee", Label: "Employee", Value: func(r Request) string { return r.EmployeeName }},
			{Key: "option", Label: "Option", Value: func(r Request) string { return r.OptionName }},
			{Key: "points", Label: "Points", Value: func(r Request) string { return resources.Count(r.Points) }},
			{Key: "requested", Label: "Requested", Value: func(r Request) string { return resources.DateTime(r.RequestedAt) }},
		},
		Filters: []listctl.FilterField{
			resources.SearchFilter("Employee"),
			Statuses.Filter(),
		},
		DefaultFilters: map[string]string{"status": string(StatusPending)},
		Statuses:       Statuses,
		Pending:        StatusPending,
		Source:         resources.APISource[Request](listPath),
		Actions:        Catalog,
	}
}

func Binding() resources.Binding { return resources.Bind(Definition()) }
