package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanDurationMonths(t *testing.T) {
	assert.Equal(t, 1, PlanDurationMonthly.Months())
	assert.Equal(t, 3, PlanDurationQuarterly.Months())
	assert.Equal(t, 6, PlanDurationHalfYearly.Months())
	assert.Equal(t, 12, PlanDurationYearly.Months())
}

func TestPlanDurationPeriod(t *testing.T) {
	start := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	from, to := PlanDurationMonthly.Period(start)
	assert.Equal(t, start, from)
	assert.Equal(t, time.Date(2025, 2, 15, 10, 0, 0, 0, time.UTC), to)

	_, to = PlanDurationYearly.Period(start)
	assert.Equal(t, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), to)
}

func TestPlanDurationValidate(t *testing.T) {
	assert.NoError(t, PlanDurationQuarterly.Validate())
	assert.Error(t, PlanDuration("2 Weekly").Validate())
}

func TestSubscriptionStatusIsTerminal(t *testing.T) {
	assert.False(t, SubscriptionStatusQueued.IsTerminal())
	assert.False(t, SubscriptionStatusActive.IsTerminal())
	assert.True(t, SubscriptionStatusExpired.IsTerminal())
	assert.True(t, SubscriptionStatusCancelled.IsTerminal())
}
