package billing

import "context"

type Service struct {
	fees FeeRepository
}

func NewService(fees FeeRepository) *Service {
	return &Service{fees: fees}
}

func (s *Service) CreateFee(ctx context.Context, in FeeInput) (*Fee, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f := &Fee{ServiceName: in.ServiceName, Amount: in.Amount}
	if err := s.fees.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) GetFee(ctx context.Context, id int64) (*Fee, error) {
	return s.fees.GetByID(ctx, id)
}

func (s *Service) ListFees(ctx context.Context) ([]*Fee, error) {
	return s.fees.List(ctx)
}

func (s *Service) UpdateFee(ctx context.Context, id int64, in FeeInput) (*Fee, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f := &Fee{FeeID: id, ServiceName: in.ServiceName, Amount: in.Amount}
	if err := s.fees.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) DeleteFee(ctx context.Context, id int64) error {
	return s.fees.Delete(ctx, id)
}
