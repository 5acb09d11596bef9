package mongorepository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"smm-market/pkg/timeutils"
)

const DefaultDatabase = "smm_market"

var DefaultRetryAttemptDelays = []time.Duration{time.Second, 3 * time.Second, 5 * time.Second}

type Config struct {
	URI                string
	Database           string
	RetryAttemptDelays []time.Duration
}

// Connect opens a client and waits until the primary answers a ping.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.RetryAttemptDelays == nil {
		cfg.RetryAttemptDelays = DefaultRetryAttemptDelays
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create a mongo client: %w", err)
	}
	_, err = timeutils.Retry(
		ctx,
		cfg.RetryAttemptDelays,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, client.Ping(ctx, readpref.Primary())
		},
		func(_ struct{}, err error) bool {
			return err != nil && ctx.Err() == nil
		},
	)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}
