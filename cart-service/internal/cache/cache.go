package cache

import (
	"context"
	"errors"
)

// CartCache stores serialized carts by session key.
type CartCache interface {
	Get(ctx context.Context, sessionKey string) ([]byte, error)
	Set(ctx context.Context, sessionKey string, data []byte) error
	// Fill stores data only when nothing is cached for the key yet.
	Fill(ctx context.Context, sessionKey string, data []byte) error
	Delete(ctx context.Context, sessionKey string) error
}

var ErrCacheMiss = errors.New("cache miss")
