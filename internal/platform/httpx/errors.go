// Package httpx provides HTTP response utilities.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/idempotency"
	"github.com/arguide/backoffice/internal/listctl"
)

// Sentinel errors for the HTTP layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Status maps err to the HTTP status of its problem response.
func Status(err error) int {
	var (
		validation *listctl.ValidationError
		server     *apiclient.ServerError
		network    *apiclient.NetworkError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case apiclient.IsConflict(err), idempotency.IsConflict(err):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized), apiclient.IsUnauthorized(err):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, listctl.ErrRowNotFound), errors.Is(err, listctl.ErrUnknownAction):
		return http.StatusNotFound
	case errors.Is(err, listctl.ErrActionNotPermitted), errors.Is(err, listctl.ErrDialogOpen),
		errors.Is(err, listctl.ErrSubmitting), errors.Is(err, listctl.ErrNoDialog):
		return http.StatusConflict
	case errors.Is(err, listctl.ErrActionIncomplete):
		return http.StatusNotImplemented
	case errors.Is(err, listctl.ErrInvalidQuery), errors.Is(err, listctl.ErrUnknownFilter), errors.Is(err, listctl.ErrInvalidFilterValue):
		return http.StatusBadRequest
	case errors.As(err, &network):
		return http.StatusBadGateway
	case errors.As(err, &server):
		if server.Status >= 400 && server.Status < 500 {
			return server.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// RespondError writes err as an RFC7807 problem. The detail is the
// operator-facing message; validation errors carry their field messages.
func RespondError(w http.ResponseWriter, err error) {
	status := Status(err)
	problem := ProblemDetail{
		Title:  http.StatusText(status),
		Status: status,
		Detail: listctl.UserMessage(err),
	}
	var validation *listctl.ValidationError
	if errors.As(err, &validation) {
		problem.Errors = validation.Fields
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem)
}
