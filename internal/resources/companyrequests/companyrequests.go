// Package companyrequests manages sign-up requests from companies.
package companyrequests

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
	ID            string    `json:"requestId"`
	CompanyName   string    `json:"companyName"`
	BusinessNo    string    `json:"businessNumber"`
	ContactName   string    `json:"contactName"`
	ContactEmail  string    `json:"contactEmail"`
	EmployeeCount int       `json:"employeeCount"`
	Status        Status    `json:"status"`
	RequestedAt   time.Time `json:"requestedAt"`
}

func (r Request) RowID() string     { return r.ID }
func (r Request) RowStatus() Status { return r.Status }

const (
	listPath    = "/api/v1/company-requests"
	approvePath = "/api/v1/company-requests/%s/approve"
	rejectPath  = "/api/v1/company-requests/%s/reject"
)

func Catalog(d resources.Deps) listctl.Catalog[Status] {
	return listctl.Catalog[Status]{
		{
			Key:            "approve",
			Label:          "Approve",
			RequiredStatus: []Status{StatusPending},
			Confirmation:   "Approve this company? An administrator account will be created.",
			Success:        "Company approved",
			Tone:           listctl.TonePrimary,
			Mutate:         d.Post(approvePath),
		},
		{
			Key:            "reject",
			Label:          "Reject",
			RequiredStatus: []Status{StatusPending},
			Success:        "Company request rejected",
			Tone:           listctl.ToneDanger,
			Fields:         []listctl.PayloadField{resources.ReasonField},
			NewPayload:     resources.NewReasonPayload,
			Mutate:         d.Post(rejectPath),
		},
	}
}

func Definition() resources.Definition[Request, Status] {
	return resources.Definition[Request, Status]{
		Name:  "companyrequests",
		Title: "Company requests",
		Columns: []resources.Column[Request]{
			{Key: "company", Label: "Company", Value: func(r Request) string { return r.CompanyName }},
			{Key: "business", Label: "Business no.", Value: func(r Request) string { return r.BusinessNo }},
			{Key: "contact", Label: "Contact", Value: func(r Request) string { return r.ContactName + " <" + r.ContactEmail + ">" }},
			{Key: "employees", Label: "Employees", Value: func(r Request) string { return resources.Count(r.EmployeeCount) }},
			{Key: "requested", Label: "Requested", Value: func(r Request) string { return resources.Date(r.RequestedAt) }},
		},
		Filters: []listctl.FilterField{
			resources.SearchFilter("Company"),
			Statuses.Filter(),
		},
		Statuses: Statuses,
		Pending:  StatusPending,
		Source:   resources.APISource[Request](listPath),
		Actions:  Catalog,
	}
}

func Binding() resources.Binding { return resources.Bind(Definition()) }
