// Package revisions manages 3D-model revision requests and their chat.
package revisions

import (
	"time"

	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusDone       Status = "DONE"
	StatusCancelled  Status = "CANCELLED"
)

var Statuses = resources.StatusTable[Status]{
	{Value: StatusPending, Label: "Pending", Tone: listctl.TonePrimary},
	{Value: StatusProcessing, Label: "In progress", Tone: listctl.TonePrimary},
	{Value: StatusDone, Label: "Done", Tone: listctl.ToneNeutral},
	{Value: StatusCancelled, Label: "Cancelled", Tone: listctl.ToneNeutral},
}

// Request asks for a change to a course's 3D model.
type Request struct {
	ID          string    `json:"revisionRequestId"`
	CourseID    string    `json:"courseId"`
	CourseTitle string    `json:"courseTitle"`
	ModelName   string    `json:"modelName"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Requester   string    `json:"requesterName"`
	CompanyName string    `json:"companyName"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (r Request) RowID() string     { return r.ID }
func (r Request) RowStatus() Status { return r.Status }

const (
	listPath     = "/api/v1/revision-requests"
	itemPath     = "/api/v1/revision-requests/%s"
	cancelPath   = "/api/v1/revision-requests/%s/cancel"
	messagesPath = "/api/v1/revision-requests/%s/messages"
)

func Catalog(d resources.Deps) listctl.Catalog[Status] {
	return listctl.Catalog[Status]{
		{
			Key:            "cancel",
			Label:          "Cancel",
			RequiredStatus: []Status{StatusPending, StatusProcessing},
			Confirmation:   "Cancel this revision request? The modelling team will stop work on it.",
			Success:        "Revision request cancelled",
			Tone:           listctl.ToneDanger,
			Mutate:         d.Post(cancelPath),
		},
	}
}

func Definition() resources.Definition[Request, Status] {
	return resources.Definition[Request, Status]{
		Name:  "revisions",
		Title: "Revision requests",
		Columns: []resources.Column[Request]{
			{Key: "title", Label: "Title", Value: func(r Request) string { return r.Title }},
			{Key: "course", Label: "Course", Value: func(r Request) string { return r.CourseTitle }},
			{Key: "model", Label: "Model", Value: func(r Request) string { return r.ModelName }},
			{Key: "company", Label: "Company", Value: func(r Request) string { return r.CompanyName }},
			{Key: "created", Label: "Created", Value: func(r Request) string { return resources.Date(r.CreatedAt) }},
		},
		Filters: []listctl.FilterField{
			resources.SearchFilter("Title or course"),
			Statuses.Filter(),
		},
		Statuses: Statuses,
		Pending:  StatusPending,
		Source:   resources.APISource[Request](listPath),
		Actions:  Catalog,
	}
}

func Binding() resources.Binding { return resources.Bind(Definition()) }
