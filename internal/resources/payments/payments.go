// Package payments manages company subscription payments.
package payments

import (
	"time"

	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
)

// Status is the payment lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusPaid       Status = "PAID"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
)

// Statuses is the closed status table.
var Statuses = resources.StatusTable[Status]{
	{Value: StatusPending, Label: "Pending", Tone: listctl.TonePrimary},
	{Value: StatusProcessing, Label: "Processing", Tone: listctl.TonePrimary},
	{Value: StatusPaid, Label: "Paid", Tone: listctl.ToneNeutral},
	{Value: StatusFailed, Label: "Failed", Tone: listctl.ToneDanger},
	{Value: StatusCancelled, Label: "Cancelled", Tone: listctl.ToneNeutral},
}

// Payment is a subscription invoice awaiting or past settlement.
type Payment struct {
	ID          string    `json:"paymentId"`
	CompanyName string    `json:"companyName"`
	PlanName    string    `json:"planName"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Method      string    `json:"method"`
	Status      Status    `json:"status"`
	RequestedAt time.Time `json:"requestedAt"`
}

func (p Payment) RowID() string     { return p.ID }
func (p Payment) RowStatus() Status { return p.Status }

const (
	listPath    = "/api/v1/payments"
	approvePath = "/api/v1/payments/%s/approve"
	rejectPath  = "/api/v1/payments/%s/reject"
	cancelPath  = "/api/v1/payments/%s/cancel"
)

// Catalog is the payment action table.
func Catalog(d resources.Deps) listctl.Catalog[Status] {
	return listctl.Catalog[Status]{
		{
			Key:            "approve",
			Label:          "Approve",
			RequiredStatus: []Status{StatusPending},
			Confirmation:   "Approve this payment and activate the subscription?",
			Success:        "Payment approved",
			Tone:           listctl.TonePrimary,
			Mutate:         d.Post(approvePath),
		},
		{
			Key:            "reject",
			Label:          "Reject",
			RequiredStatus: []Status{StatusPending},
			Confirmation:   "Reject this payment? The company will see the reason below.",
			Success:        "Payment rejected",
			Tone:           listctl.ToneDanger,
			Fields:         []listctl.PayloadField{resources.ReasonField},
			NewPayload:     resources.NewReasonPayload,
			Mutate:         d.Post(rejectPath),
		},
		{
			Key:            "cancel",
			Label:          "Cancel",
			RequiredStatus: []Status{StatusPending, StatusProcessing},
			Confirmation:   "Cancel this payment? This cannot be undone.",
			Success:        "Payment cancelled",
			Tone:           listctl.ToneDanger,
			Mutate:         d.Post(cancelPath),
		},
	}
}

// Definition describes the payments page.
func Definition() resources.Definition[Payment, Status] {
	return resources.Definition[Payment, Status]{
		Name:  "payments",
		Title: "Payments",
		Columns: []resources.Column[Payment]{
			{Key: "company", Label: "Company", Value: func(p Payment) string { return p.CompanyName }},
			{Key: "plan", Label: "Plan", Value: func(p Payment) string { return p.PlanName }},
			{Key: "amount", Label: "Amount", Value: func(p Payment) string { return resources.Money(p.Amount, p.Currency) }},
			{Key: "method", Label: "Method", Value: func(p Payment) string { return p.Method }},
			{Key: "requested", Label: "Requested", Value: func(p Payment) string { return resources.Date(p.RequestedAt) }},
		},
		Filters: []listctl.FilterField{
			resources.SearchFilter("Company"),
			Statuses.Filter(),
		},
		Statuses: Statuses,
		Pending:  StatusPending,
		Source:   resources.APISource[Payment](listPath),
		Actions:  Catalog,
	}
}

// Binding registers the payments page.
func Binding() resources.Binding { return resources.Bind(Definition()) }
