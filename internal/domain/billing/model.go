package billing

import "github.com/clinicdesk/clinicdesk/internal/platform/validation"

// Fee is one billable service in the clinic price list.
type Fee struct {
	FeeID       int64   `json:"feeId"`
	ServiceName string  `json:"serviceName"`
	Amount      float64 `json:"amount"`
}

func (f Fee) Key() int64 { return f.FeeID }

func (f Fee) Input() FeeInput {
	return FeeInput{ServiceName: f.ServiceName, Amount: f.Amount}
}

type FeeInput struct {
	ServiceName string  `json:"serviceName" validate:"required"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

func (in FeeInput) Validate() error {
	return validation.Struct(in)
}

func (in FeeInput) UpdatePayload(id int64) interface{} {
	return FeeUpdate{FeeInput: in, FeeID: id}
}

// FeeUpdate is the PUT body: the input plus the fee id.
type FeeUpdate struct {
	FeeInput
	FeeID int64 `json:"feeId"`
}
