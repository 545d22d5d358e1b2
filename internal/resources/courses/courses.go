// Package courses manages training courses and their AR guidelines.
package courses

import (
	"time"

	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

var Statuses = resources.StatusTable[Status]{
	{Value: StatusDraft, Label: "Draft", Tone: listctl.ToneNeutral},
	{Value: StatusPublished, Label: "Published", Tone: listctl.TonePrimary},
	{Value: StatusArchived, Label: "Archived", Tone: listctl.ToneNeutral},
}

// Course is a training course with its guideline steps.
type Course struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	AuthorName string    `json:"authorName"`
	StepCount  int       `json:"stepCount"`
	Status     Status    `json:"status"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (c Course) RowID() string     { return c.ID }
func (c Course) RowStatus() Status { return c.Status }

const (
	listPath   = "/api/v1/courses"
	statusPath = "/api/v1/courses/%s/status"
	itemPath   = "/api/v1/courses/%s"
)

type statusBody struct {
	Status Status `json:"status"`
}

// Catalog is the course action table. Deleting a course that is still
// assigned to employees fails with a conflict.
func Catalog(d resources.Deps) listctl.Catalog[Status] {
	return listctl.Catalog[Status]{
		{
			Key:            "publish",
			Label:          "Publish",
			RequiredStatus: []Status{StatusDraft},
			Confirmation:   "Publish this course? Employees of subscribed companies will see it.",
			Success:        "Course published",
			Tone:           listctl.TonePrimary,
			Mutate:         d.Patch(statusPath, statusBody{Status: StatusPublished}),
		},
		{
			Key:            "archive",
			Label:          "Archive",
			RequiredStatus: []Status{StatusPublished},
			Confirmation:   "Archive this course? It will be hidden from employees.",
			Success:        "Course archived",
			Tone:           listctl.ToneNeutral,
			Mutate:         d.Patch(statusPath, statusBody{Status: StatusArchived}),
		},
		{
			Key:            "delete",
			Label:          "Delete",
			RequiredStatus: []Status{StatusDraft, StatusArchived},
			Confirmation:   "Delete this course permanently?",
			Success:        "Course deleted",
			Tone:           listctl.ToneDanger,
			Mutate:         d.Delete(itemPath),
		},
	}
}

func Definition() resources.Definition[Course, Status] {
	return resources.Definition[Course, Status]{
		Name:  "courses",
		Title: "Courses",
		Columns: []resources.Column[Course]{
			{Key: "title", Label: "Title", Value: func(c Course) string { return c.Title }},
			{Key: "category", Label: "Category", Value: func(c Course) string { return c.Category }},
			{Key: "author", Label: "Author", Value: func(c Course) string { return c.AuthorName }},
			{Key: "steps", Label: "Steps", Value: func(c Course) string { return resources.Int(c.StepCount) }},
			{Key: "updated", Label: "Updated", Value: func(c Course) string { return resources.Date(c.UpdatedAt) }},
		},
		Filters: []listctl.FilterField{
			resources.SearchFilter("Title"),
			{Name: "category", Label: "Category", Kind: listctl.FieldText},
			Statuses.Filter(),
		},
		Statuses: Statuses,
		Source:   resources.APISource[Course](listPath),
		Actions:  Catalog,
	}
}

func Binding() resources.Binding { return resources.Bind(Definition()) }
