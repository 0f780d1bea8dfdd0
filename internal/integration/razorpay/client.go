package razorpay

import (
	"context"

	"github.com/netbill/netbill/internal/config"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/logger"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

// Order is the subset of the gateway order this service needs.
type Order struct {
	ID string
}

// Gateway defines the interface for payment gateway operations. Orders are
// opened with the gateway before the client pays; the signature over the
// completed payment is verified locally (see verifier.go), never delegated.
type Gateway interface {
	// CreateOrder opens an order for the given amount in integral currency
	// units. One blocking external call, no retries; a failure aborts the
	// request with no partial state.
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string, notes map[string]interface{}) (*Order, error)

	// KeyID returns the public key the client needs to complete checkout.
	KeyID() string

	// SecretKey returns the key used to verify payment signatures.
	SecretKey() string
}

// Client handles Razorpay API client setup and order creation
type Client struct {
	client *razorpay.Client
	cfg    config.RazorpayConfig
	logger *logger.Logger
}

// NewClient creates a new Razorpay gateway client
func NewClient(cfg *config.Configuration, logger *logger.Logger) Gateway {
	return &Client{
		client: razorpay.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret),
		cfg:    cfg.Razorpay,
		logger: logger,
	}
}

func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string, notes map[string]interface{}) (*Order, error) {
	// Razorpay expects the amount in the currency subunit (paise).
	data := map[string]interface{}{
		"amount":   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"currency": "INR",
		"receipt":  receipt,
		"notes":    notes,
	}

	order, err := c.client.Order.Create(data, nil)
	if err != nil {
		c.logger.Errorw("failed to create order in Razorpay",
			"error", err,
			"receipt", receipt)
		return nil, ierr.WithError(err).
			WithHint("Unable to create order with the payment gateway").
			Mark(ierr.ErrGateway)
	}

	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return nil, ierr.NewError("gateway returned no order id").
			WithHint("Unable to create order with the payment gateway").
			Mark(ierr.ErrGateway)
	}

	c.logger.Infow("created order in Razorpay",
		"order_id", orderID,
		"receipt", receipt)

	return &Order{ID: orderID}, nil
}

func (c *Client) KeyID() string {
	return c.cfg.KeyID
}

func (c *Client) SecretKey() string {
	return c.cfg.KeySecret
}
