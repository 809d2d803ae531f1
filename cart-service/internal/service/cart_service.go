package service

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/fjod/storefront/cart-service/internal/cache"
	"github.com/fjod/storefront/cart-service/internal/domain"
	"github.com/fjod/storefront/cart-service/internal/repository"
	"github.com/fjod/storefront/cart-service/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const lockStripes = 64

// CartService gives every session its own Store over a cache-aside storage
// (Redis in front of MongoDB). Mutations of one session are serialized.
type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	pricing domain.Pricing
	log     *zap.Logger
	sfg     singleflight.Group // Prevents cache stampede
	locks   [lockStripes]sync.Mutex
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, pricing domain.Pricing, log *zap.Logger) *CartService {
	return &CartService{
		repo:    repo,
		cache:   cache,
		pricing: pricing,
		log:     log,
	}
}

// Load implements store.Storage for reads: cache first, then MongoDB.
func (s *CartService) Load(ctx context.Context, sessionKey string) ([]byte, error) {
	v, err, _ := s.sfg.Do(sessionKey, func() (interface{}, error) {
		data, err := s.cache.Get(ctx, sessionKey)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("cache get error", zap.String("session", sessionKey), zap.Error(err))
		}

		data, err = s.loadFromRepo(ctx, sessionKey)
		if err != nil {
			return nil, err
		}

		// Fill never overwrites, so a save that lands first wins.
		go func() {
			fillCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errFill := s.cache.Fill(fillCtx, sessionKey, data); errFill != nil {
				s.log.Warn("cache fill error", zap.String("session", sessionKey), zap.Error(errFill))
			}
		}()

		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *CartService) loadFromRepo(ctx context.Context, sessionKey string) ([]byte, error) {
	data, err := s.repo.GetCart(ctx, sessionKey)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil, store.ErrNotFound
	}
	return data, err
}

// Save implements store.Storage: MongoDB first, then the cache is refreshed.
func (s *CartService) Save(ctx context.Context, sessionKey string, data []byte) error {
	if err := s.repo.SaveCart(ctx, sessionKey, data); err != nil {
		return err
	}

	if err := s.cache.Set(ctx, sessionKey, data); err != nil {
		s.log.Warn("cache set error, invalidating", zap.String("session", sessionKey), zap.Error(err))
		s.invalidateCache(sessionKey)
	}
	return nil
}

// GetCart returns the current cart. A storage failure is returned rather than
// shown as an empty cart.
func (s *CartService) GetCart(ctx context.Context, sessionKey string) (domain.State, error) {
	st, err := store.Load(ctx, sessionKey, s, s.pricing, s.log)
	if err != nil {
		return domain.State{}, err
	}
	return st.State(), nil
}

func (s *CartService) AddItem(ctx context.Context, sessionKey string, p domain.Product) (domain.State, error) {
	return s.mutate(ctx, sessionKey, domain.AddItem{Product: p})
}

func (s *CartService) RemoveItem(ctx context.Context, sessionKey, productID string) (domain.State, error) {
	return s.mutate(ctx, sessionKey, domain.RemoveItem{ProductID: productID})
}

func (s *CartService) UpdateQuantity(ctx context.Context, sessionKey, productID string, quantity int) (domain.State, error) {
	return s.mutate(ctx, sessionKey, domain.UpdateQuantity{ProductID: productID, Quantity: quantity})
}

func (s *CartService) ClearCart(ctx context.Context, sessionKey string) (domain.State, error) {
	return s.mutate(ctx, sessionKey, domain.Clear{})
}

// ClearIfMatches empties the cart only if it still holds exactly lines. It
// reports whether the cart was cleared.
func (s *CartService) ClearIfMatches(ctx context.Context, sessionKey string, lines []domain.Line) (bool, error) {
	mu := s.lockFor(sessionKey)
	mu.Lock()
	defer mu.Unlock()

	st, err := store.Load(ctx, sessionKey, writer{s}, s.pricing, s.log)
	if err != nil {
		return false, err
	}
	if st.State().IsEmpty() || !st.State().HoldsExactly(lines) {
		return false, nil
	}
	if _, err := st.Clear(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CartService) mutate(ctx context.Context, sessionKey string, action domain.Action) (domain.State, error) {
	mu := s.lockFor(sessionKey)
	mu.Lock()
	defer mu.Unlock()

	st, err := store.Load(ctx, sessionKey, writer{s}, s.pricing, s.log)
	if err != nil {
		s.log.Error("cart load failed", zap.String("session", sessionKey), zap.Error(err))
		return domain.State{}, err
	}
	next, err := st.Dispatch(ctx, action)
	if err != nil {
		s.log.Error("cart mutation failed", zap.String("session", sessionKey), zap.Error(err))
		return next, err
	}
	return next, nil
}

// writer is the storage seen by mutations. It reads MongoDB directly so a
// mutation never starts from a cached or shared in-flight read.
type writer struct {
	*CartService
}

func (w writer) Load(ctx context.Context, sessionKey string) ([]byte, error) {
	return w.loadFromRepo(ctx, sessionKey)
}

func (s *CartService) lockFor(sessionKey string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionKey))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *CartService) invalidateCache(sessionKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, sessionKey); err != nil {
		s.log.Warn("cache invalidate error", zap.String("session", sessionKey), zap.Error(err))
	}
}
