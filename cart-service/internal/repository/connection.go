package repository

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/storefront/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client settings used where MongoConfig leaves a field unset.
const (
	defaultAppName                 = "cart-service"
	defaultMaxPoolSize      uint64 = 100
	defaultMinPoolSize      uint64 = 10
	defaultConnectTimeout          = 10 * time.Second
	defaultSelectionTimeout        = 5 * time.Second
	pingTimeout                    = 5 * time.Second
)

// Connect opens the cart database described by cfg and waits until the
// primary answers a ping. The caller owns the client and disconnects it
// through db.Client().
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	if cfg.Database == "" {
		return nil, errors.New("mongo database is required")
	}

	client, err := mongo.Connect(ctx, clientOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo primary: %w", err)
	}

	return client.Database(cfg.Database), nil
}

func clientOptions(cfg config.MongoConfig) *options.ClientOptions {
	return options.Client().
		ApplyURI(cfg.URI).
		SetAppName(cmp.Or(cfg.AppName, defaultAppName)).
		SetConnectTimeout(cmp.Or(cfg.ConnectTimeout, defaultConnectTimeout)).
		SetServerSelectionTimeout(cmp.Or(cfg.ServerSelectionTimeout, defaultSelectionTimeout)).
		SetMaxPoolSize(cmp.Or(cfg.MaxPoolSize, defaultMaxPoolSize)).
		SetMinPoolSize(cmp.Or(cfg.MinPoolSize, defaultMinPoolSize))
}
