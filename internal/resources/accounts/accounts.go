// Package accounts manages company administrator accounts.
package accounts

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

// Account is a company login.
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	CompanyName string    `json:"companyName"`
	Role        string    `json:"role"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (a Account) RowID() string     { return a.ID }
func (a Account) RowStatus() Status { return a.Status }

const listPath = "/api/v1/accounts"

// Catalog lists enable and disable. The backend has no transition for
// either yet, so both are shown disabled and never submitted.
func Catalog(resources.Deps) listctl.Catalog[Status] {
	return listctl.Catalog[Status]{
		{
			Key:            "disable",
			Label:          "Disable",
			RequiredStatus: []Status{StatusActive},
			Confirmation:   "Disable this account? The user will no longer be able to sign in.",
			Tone:           listctl.ToneDanger,
			Incomplete:     true,
		},
		{
			Key:            "enable",
			Label:          "Enable",
			RequiredStatus: []Status{StatusInactive},
			Confirmation:   "Enable this account?",
			Tone:           listctl.TonePrimary,
			Incomplete:     true,
		},
	}
}

func Definition() resources.Definition[Account, Status] {
	return resources.Definition[Account, Status]{
		Name:  "accounts",
		Title: "Accounts",
		Columns: []resources.Column[Account]{
			{Key: "email", Label: "Email", Value: func(a Account) string { return a.Email }},
			{Key: "company", Label: "Company", Value: func(a Account) string { return a.CompanyName }},
			{Key: "role", Label: "Role", Value: func(a Account) string { return a.Role }},
			{Key: "created", Label: "Created", Value: func(a Account) string { return resources.Date(a.CreatedAt) }},
		},
		Filters: []listctl.FilterField{
			resources.SearchFilter("Email or company"),
			Statuses.Filter(),
		},
		Statuses: Statuses,
		Source:   resources.APISource[Account](listPath),
		Actions:  Catalog,
	}
}

func Binding() resources.Binding { return resources.Bind(Definition()) }
