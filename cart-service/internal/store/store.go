// Package store holds the cart of one session: the current state, the pricing
// it is derived with and the sink every mutation is persisted to.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/storefront/cart-service/internal/domain"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Storage.Load when nothing is stored under a key.
var ErrNotFound = errors.New("no cart stored for key")

// Storage is a key-value sink for the serialized item list.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

type Store struct {
	key     string
	storage Storage
	pricing domain.Pricing
	log     *zap.Logger

	mu    sync.Mutex
	state domain.State
}

// Load rehydrates the cart stored under key. Missing or malformed data yields
// an empty cart. Storage errors are returned.
func Load(ctx context.Context, key string, storage Storage, pricing domain.Pricing, log *zap.Logger) (*Store, error) {
	s := newStore(key, storage, pricing, log)

	data, err := storage.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	state, err := Rehydrate(data, pricing)
	if err != nil {
		log.Warn("persisted cart is malformed, starting empty", zap.String("session", key), zap.Error(err))
		return s, nil
	}
	s.state = state
	return s, nil
}

func newStore(key string, storage Storage, pricing domain.Pricing, log *zap.Logger) *Store {
	return &Store{
		key:     key,
		storage: storage,
		pricing: pricing,
		log:     log,
		state:   pricing.Derive(nil),
	}
}

func (s *Store) Key() string {
	return s.key
}

func (s *Store) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces action into the next state and persists it. The new state
// becomes current only once the write succeeded; on error the previous state
// is kept and returned.
func (s *Store) Dispatch(ctx context.Context, action domain.Action) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := domain.Reduce(s.state, action, s.pricing)

	data, err := Encode(next.Items)
	if err != nil {
		return s.state, err
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		return s.state, fmt.Errorf("persist cart: %w", err)
	}

	s.state = next
	return next, nil
}

func (s *Store) AddItem(ctx context.Context, p domain.Product) (domain.State, error) {
	return s.Dispatch(ctx, domain.AddItem{Product: p})
}

func (s *Store) RemoveItem(ctx context.Context, productID string) (domain.State, error) {
	return s.Dispatch(ctx, domain.RemoveItem{ProductID: productID})
}

func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) (domain.State, error) {
	return s.Dispatch(ctx, domain.UpdateQuantity{ProductID: productID, Quantity: quantity})
}

func (s *Store) Clear(ctx context.Context) (domain.State, error) {
	return s.Dispatch(ctx, domain.Clear{})
}

// Encode serializes the item list. An empty cart is stored as "[]".
func Encode(items []domain.CartItem) ([]byte, error) {
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal cart items: %w", err)
	}
	return data, nil
}

// Rehydrate replays a persisted item list through the add path so totals are
// re-derived instead of trusted. Lines with a non-positive quantity, a missing
// product id or a negative price are dropped; duplicate lines are merged.
func Rehydrate(data []byte, pricing domain.Pricing) (domain.State, error) {
	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return pricing.Derive(nil), fmt.Errorf("unmarshal cart items: %w", err)
	}

	state := pricing.Derive(nil)
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 || it.UnitPrice.IsNegative() {
			continue
		}
		existing, _ := state.Find(it.ProductID)
		state = domain.Reduce(state, domain.AddItem{Product: domain.Product{
			ID:         it.ProductID,
			Name:       it.Name,
			Price:      it.UnitPrice,
			ImageRef:   it.ImageRef,
			ArtisanRef: it.ArtisanRef,
		}}, pricing)
		state = domain.Reduce(state, domain.UpdateQuantity{
			ProductID: it.ProductID,
			Quantity:  existing.Quantity + it.Quantity,
		}, pricing)
	}
	return state, nil
}
