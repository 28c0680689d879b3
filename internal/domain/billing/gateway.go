package billing

import (
	"github.com/clinicdesk/clinicdesk/internal/platform/apiclient"
	"github.com/clinicdesk/clinicdesk/internal/store"
)

const FeesPath = "/api/fees"

// NewFeeGateway maps fee CRUD onto /api/fees.
func NewFeeGateway(c *apiclient.Client) *apiclient.Resource[Fee, FeeInput] {
	return apiclient.NewResource[Fee, FeeInput](c, FeesPath)
}

var _ store.Gateway[Fee, FeeInput] = (*apiclient.Resource[Fee, FeeInput])(nil)
