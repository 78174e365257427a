package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

type Client struct {
	DB *mongo.Database
}

// New connects and verifies the deployment is reachable before returning, so
// a bad URI fails at startup rather than on the first request.
func New(uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetRetryWrites(true).
		SetServerSelectionTimeout(connectTimeout)
	conn, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := conn.Ping(ctx, nil); err != nil {
		_ = conn.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return &Client{DB: conn.Database(database)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, nil)
}

func (c *Client) Disconnect(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}
