package types

import (
	"time"

	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/samber/lo"
)

// PlanDuration is the billing period of a plan. It is a closed enum so that
// billing logic never parses the wire strings; the month count lives here.
type PlanDuration string

const (
	PlanDurationMonthly    PlanDuration = "1 Monthly"
	PlanDurationQuarterly  PlanDuration = "3 Monthly"
	PlanDurationHalfYearly PlanDuration = "6 Monthly"
	PlanDurationYearly     PlanDuration = "Yearly"
)

func (d PlanDuration) String() string {
	return string(d)
}

// Months returns the number of calendar months the duration spans.
func (d PlanDuration) Months() int {
	switch d {
	case PlanDurationQuarterly:
		return 3
	case PlanDurationHalfYearly:
		return 6
	case PlanDurationYearly:
		return 12
	default:
		return 1
	}
}

// Period returns the [start, end) billing window beginning at start.
func (d PlanDuration) Period(start time.Time) (time.Time, time.Time) {
	return start, start.AddDate(0, d.Months(), 0)
}

func (d PlanDuration) Validate() error {
	allowed := []PlanDuration{
		PlanDurationMonthly,
		PlanDurationQuarterly,
		PlanDurationHalfYearly,
		PlanDurationYearly,
	}
	if !lo.Contains(allowed, d) {
		return ierr.NewError("invalid plan duration").
			WithHintf("Plan duration %s is not valid", d).
			Mark(ierr.ErrValidation)
	}
	return nil
}
