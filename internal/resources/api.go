package resources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/listctl"
)

// APISource lists rows of type R from a paginated backend endpoint.
func APISource[R any](path string) func(Deps) (listctl.Source[R], error) {
	return func(d Deps) (listctl.Source[R], error) {
		if d.API == nil {
			return nil, ErrNoAPI
		}
		api := d.API
		return listctl.SourceFunc[R](func(ctx context.Context, q listctl.Query) (listctl.PageResult[R], error) {
			return apiclient.List[R](ctx, api, path, q)
		}), nil
	}
}

// RowPath formats pattern (one %s verb) with the escaped row id.
func RowPath(pattern, rowID string) string {
	return fmt.Sprintf(pattern, url.PathEscape(rowID))
}

// Post returns a mutation that POSTs the payload, or an empty object, to
// the row path.
func (d Deps) Post(pattern string) listctl.MutationFunc {
	return d.send(http.MethodPost, pattern, nil)
}

// Patch returns a mutation that PATCHes body to the row path. A non-nil
// dialog payload takes precedence over body.
func (d Deps) Patch(pattern string, body any) listctl.MutationFunc {
	return d.send(http.MethodPatch, pattern, body)
}

// Delete returns a mutation that deletes the row.
func (d Deps) Delete(pattern string) listctl.MutationFunc {
	return func(ctx context.Context, rowID string, _ listctl.Payload) error {
		if d.API == nil {
			return ErrNoAPI
		}
		return d.API.Delete(ctx, RowPath(pattern, rowID))
	}
}

func (d Deps) send(method, pattern string, body any) listctl.MutationFunc {
	return func(ctx context.Context, rowID string, payload listctl.Payload) error {
		if d.API == nil {
			return ErrNoAPI
		}
		var out any = body
		if payload != nil {
			out = payload
		}
		if out == nil {
			out = struct{}{}
		}
		return d.API.Mutate(ctx, method, RowPath(pattern, rowID), out, nil)
	}
}
