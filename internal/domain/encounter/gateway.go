package encounter

import (
	"github.com/clinicdesk/clinicdesk/internal/platform/apiclient"
	"github.com/clinicdesk/clinicdesk/internal/store"
)

const VisitsPath = "/api/visits"

// NewVisitGateway maps visit CRUD onto /api/visits.
func NewVisitGateway(c *apiclient.Client) *apiclient.Resource[Visit, VisitInput] {
	return apiclient.NewResource[Visit, VisitInput](c, VisitsPath)
}

var _ store.Gateway[Visit, VisitInput] = (*apiclient.Resource[Visit, VisitInput])(nil)
