package mongo

import (
	"context"
	"time"

	"github.com/netbill/netbill/internal/config"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/logger"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const connectTimeout = 10 * time.Second

// Client wraps the mongo database handle used by the repository layer.
// All invariants that need atomicity are enforced with per-document
// conditional writes (filters matching the expected pre-state) and $inc
// updates, so no multi-document transaction support is required.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	logger *logger.Logger
}

// NewClient connects to MongoDB and pings the deployment
func NewClient(cfg *config.Configuration, logger *logger.Logger) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetConnectTimeout(connectTimeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to MongoDB").
			Mark(ierr.ErrDatabase)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to ping MongoDB").
			Mark(ierr.ErrDatabase)
	}

	logger.Infow("connected to mongodb", "database", cfg.Mongo.Database)

	return &Client{
		client: client,
		db:     client.Database(cfg.Mongo.Database),
		logger: logger,
	}, nil
}

// Collection returns a handle to the named collection
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Disconnect closes the underlying connections
func (c *Client) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
