// Package employees manages the trainees of subscribed companies.
package employees

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

type Employee struct {
	ID          string    `json:"employeeId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CompanyName string    `json:"companyName"`
	Department  string    `json:"department"`
	Points      int       `json:"points"`
	Status      Status    `json:"status"`
	JoinedAt    time.Time `json:"joinedAt"`
}

func (e Employee) RowID() string     { return e.ID }
func (e Employee) RowStatus() Status { return e.Status }

const (
	listPath = "/api/v1/employees"
	itemPath = "/api/v1/employees/%s"
)

// Catalog is the employee action table. Removing an employee with course
// progress on record fails with a conflict.
func Catalog(d resources.Deps) listctl.Catalog[Status] {
	return listctl.Catalog[Status]{
		{
			Key:            "disable",
			Label:          "Disable",
			RequiredStatus: []Status{StatusActive},
			Tone:           listctl.ToneDanger,
			Incomplete:     true,
		},
		{
			Key:            "enable",
			Label:          "Enable",
			RequiredStatus: []Status{StatusInactive},
			Tone:           listctl.TonePrimary,
			Incomplete:     true,
		},
		{
			Key:            "remove",
			Label:          "Remove",
			RequiredStatus: []Status{StatusActive, StatusInactive},
			Confirmation:   "Remove this employee from the company?",
			Success:        "Employee removed",
			Tone:           listctl.ToneDanger,
			Mutate:         d.Delete(itemPath),
		},
	}
}

func Definition() resources.Definition[Employee, Status] {
	return resources.Definition[Employee, Status]{
		Name:  "employees",
		Title: "Employees",
		Columns: []resources.Column[Employee]{
			{Key: "name", Label: "Name", Value: func(e Employee) string { return e.Name }},
			{Key: "email", Label: "Email", Value: func(e Employee) string { return e.Email }},
			{Key: "company", Label: "Company", Value: func(e Employee) string { return e.CompanyName }},
			{Key: "department", Label: "Department", Value: func(e Employee) string { return e.Department }},
			{Key: "points", Label: "Points", Value: func(e Employee) string { return resources.Count(e.Points) }},
			{Key: "joined", Label: "Joined", Value: func(e Employee) string { return resources.Date(e.JoinedAt) }},
		},
		Filters: []listctl.FilterField{
			resources.SearchFilter("Name or email"),
			{Name: "companyName", Label: "Company", Kind: listctl.FieldText},
			Statuses.Filter(),
		},
		Statuses: Statuses,
		Source:   resources.APISource[Employee](listPath),
		Actions:  Catalog,
	}
}

func Binding() resources.Binding { return resources.Bind(Definition()) }
