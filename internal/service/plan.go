package service

import (
	"context"

	"github.com/netbill/netbill/internal/api/dto"
	"github.com/netbill/netbill/internal/cache"
	"github.com/netbill/netbill/internal/domain/plan"
	"github.com/samber/lo"
)

// PlanService exposes the read-only plan catalog. Plan management lives in a
// separate back-office system; this service only reads what checkout needs.
type PlanService interface {
	GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error)
	ListPlans(ctx context.Context) (*dto.ListPlansResponse, error)
}

type planService struct {
	ServiceParams
}

// NewPlanService creates a new plan service
func NewPlanService(params ServiceParams) PlanService {
	return &planService{
		ServiceParams: params,
	}
}

func (s *planService) GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error) {
	key := cache.PrefixPlan + id
	if cached, found := s.Cache.Get(ctx, key); found {
		if p, ok := cached.(*plan.Plan); ok {
			return &dto.PlanResponse{Plan: p}, nil
		}
	}

	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Cache.Set(ctx, key, p, cache.DefaultExpiration)
	return &dto.PlanResponse{Plan: p}, nil
}

func (s *planService) ListPlans(ctx context.Context) (*dto.ListPlansResponse, error) {
	key := cache.PrefixPlan + "list"
	if cached, found := s.Cache.Get(ctx, key); found {
		if plans, ok := cached.([]*plan.Plan); ok {
			return toListPlansResponse(plans), nil
		}
	}

	plans, err := s.PlanRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	s.Cache.Set(ctx, key, plans, cache.DefaultExpiration)
	return toListPlansResponse(plans), nil
}

func toListPlansResponse(plans []*plan.Plan) *dto.ListPlansResponse {
	items := lo.Map(plans, func(p *plan.Plan, _ int) *dto.PlanResponse {
		return &dto.PlanResponse{Plan: p}
	})
	return &dto.ListPlansResponse{Items: items, Total: len(items)}
}
