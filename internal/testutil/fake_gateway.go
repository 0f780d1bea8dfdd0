package testutil

import (
	"context"
	"fmt"
	"sync"

	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/integration/razorpay"
	"github.com/shopspring/decimal"
)

// FakeGateway implements razorpay.Gateway with deterministic order IDs so
// tests can sign payment proofs against a known secret.
type FakeGateway struct {
	mu      sync.Mutex
	seq     int
	orders  map[string]decimal.Decimal
	FailNow bool
}

// NewFakeGateway creates a gateway stub for tests
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		orders: make(map[string]decimal.Decimal),
	}
}

func (g *FakeGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string, notes map[string]interface{}) (*razorpay.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailNow {
		return nil, ierr.NewError("gateway unavailable").
			WithHint("Payment gateway request failed").
			Mark(ierr.ErrGateway)
	}

	g.seq++
	id := fmt.Sprintf("order_test_%d", g.seq)
	g.orders[id] = amount
	return &razorpay.Order{ID: id}, nil
}

func (g *FakeGateway) KeyID() string {
	return "rzp_test_key"
}

func (g *FakeGateway) SecretKey() string {
	return "rzp_test_secret"
}

// OrderAmount returns the amount the gateway was asked to collect for the
// given order.
func (g *FakeGateway) OrderAmount(id string) (decimal.Decimal, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	amount, ok := g.orders[id]
	return amount, ok
}
