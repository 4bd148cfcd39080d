package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// DefaultDatabase is used when the connection string names no database.
const DefaultDatabase = "happyThoughts"

// NewDB connects to MongoDB and returns the database named in the
// connection string.
func NewDB(ctx context.Context, connectionString string, timeout time.Duration) (*mongo.Database, error) {
	cs, err := connstring.ParseAndValidate(connectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid mongo url: %w", err)
	}

	clientOptions := options.Client().ApplyURI(connectionString)
	if timeout > 0 {
		clientOptions.SetConnectTimeout(timeout)
	}
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	name := cs.Database
	if name == "" {
		name = DefaultDatabase
	}
	return client.Database(name), nil
}
