package types

import (
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/samber/lo"
)

// PlanType represents the product family a catalog plan belongs to.
type PlanType string

const (
	PlanTypeFibernet PlanType = "Fibernet"
	PlanTypePrepaid  PlanType = "Prepaid"
	PlanTypePostpaid PlanType = "Postpaid"
)

func (t PlanType) String() string {
	return string(t)
}

func (t PlanType) Validate() error {
	allowed := []PlanType{
		PlanTypeFibernet,
		PlanTypePrepaid,
		PlanTypePostpaid,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid plan type").
			WithHintf("Plan type %s is not valid", t).
			Mark(ierr.ErrValidation)
	}
	return nil
}
