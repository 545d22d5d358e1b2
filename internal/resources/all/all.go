// Package all assembles the registry of backend resources.
package all

import (
	"github.com/arguide/backoffice/internal/resources"
	"github.com/arguide/backoffice/internal/resources/accounts"
	"github.com/arguide/backoffice/internal/resources/companyrequests"
	"github.com/arguide/backoffice/internal/resources/courses"
	"github.com/arguide/backoffice/internal/resources/employees"
	"github.com/arguide/backoffice/internal/resources/payments"
	"github.com/arguide/backoffice/internal/resources/pointoptions"
	"github.com/arguide/backoffice/internal/resources/pointrequests"
	"github.com/arguide/backoffice/internal/resources/revisions"
	"github.com/arguide/backoffice/internal/resources/serviceprices"
)

// Bindings returns every backend resource in navigation order.
func Bindings() []resources.Binding {
	return []resources.Binding{
		accounts.Binding(),
		courses.Binding(),
		employees.Binding(),
		payments.Binding(),
		pointoptions.Binding(),
		pointrequests.Binding(),
		serviceprices.Binding(),
		companyrequests.Binding(),
		revisions.Binding(),
	}
}

// Registry indexes Bindings plus any extra (locally backed) resources.
func Registry(extra ...resources.Binding) (*resources.Registry, error) {
	return resources.NewRegistry(append(Bindings(), extra...)...)
}
