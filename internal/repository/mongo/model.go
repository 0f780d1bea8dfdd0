package mongo

import (
	"github.com/shopspring/decimal"
)

// Amounts are persisted as integral currency units (int64) so the storage
// layer can apply them with $inc; the domain works in decimals.

func toAmount(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

func fromAmount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
