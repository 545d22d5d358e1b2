package resources

import (
	"strings"

	"github.com/arguide/backoffice/internal/listctl"
)

// ReasonField is the dialog input of reject actions.
var ReasonField = listctl.PayloadField{Name: "reason", Label: "Reason", Multiline: true}

// ReasonPayload is the body of reject actions.
type ReasonPayload struct {
	Reason string `json:"reason" form:"reason" validate:"required,max=500"`
}

// Bind implements listctl.Payload.
func (p *ReasonPayload) Bind(values map[string]string) {
	p.Reason = strings.TrimSpace(values["reason"])
}

// NewReasonPayload is a listctl.Action NewPayload factory.
func NewReasonPayload() listctl.Payload { return &ReasonPayload{} }
