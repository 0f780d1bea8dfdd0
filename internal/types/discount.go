package types

import (
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/samber/lo"
)

// DiscountType represents the type of a promotional discount.
type DiscountType string

const (
	// DiscountTypePercentage deducts value percent of the order amount
	DiscountTypePercentage DiscountType = "percentage"
	// DiscountTypeFlat deducts a flat value from the order amount
	DiscountTypeFlat DiscountType = "flat"
)

func (t DiscountType) String() string {
	return string(t)
}

func (t DiscountType) Validate() error {
	allowed := []DiscountType{
		DiscountTypePercentage,
		DiscountTypeFlat,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid discount type").
			WithHintf("Discount type %s is not valid", t).
			Mark(ierr.ErrValidation)
	}
	return nil
}
