package repository

import (
	"context"
	"errors"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository is the durable home of serialized carts.
// Consumers define this interface, not the MongoDB implementation
type CartRepository interface {
	GetCart(ctx context.Context, sessionKey string) ([]byte, error)
	SaveCart(ctx context.Context, sessionKey string, items []byte) error
	DeleteCart(ctx context.Context, sessionKey string) error
}
