package dto

import (
	"github.com/netbill/netbill/internal/domain/plan"
)

// PlanResponse represents a catalog plan in API responses
type PlanResponse struct {
	*plan.Plan
}

// ListPlansResponse represents the plan catalog listing
type ListPlansResponse struct {
	Items []*PlanResponse `json:"items"`
	Total int             `json:"total"`
}
