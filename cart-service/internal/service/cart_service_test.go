package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/storefront/cart-service/internal/cache"
	"github.com/fjod/storefront/cart-service/internal/domain"
	"github.com/fjod/storefront/cart-service/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRepository struct {
	m       sync.Mutex
	carts   map[string][]byte
	getErr  error
	saveErr error
	gets    int
	saves   int
}

func newMockRepository() *mockRepository {
	return &mockRepository{carts: map[string][]byte{}}
}

func (r *mockRepository) GetCart(_ context.Context, key string) ([]byte, error) {
	r.m.Lock()
	defer r.m.Unlock()
	r.gets++
	if r.getErr != nil {
		return nil, r.getErr
	}
	data, ok := r.carts[key]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return data, nil
}

func (r *mockRepository) SaveCart(_ context.Context, key string, items []byte) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.carts[key] = items
	return nil
}

func (r *mockRepository) DeleteCart(_ context.Context, key string) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.carts[key]; !ok {
		return repository.ErrCartNotFound
	}
	delete(r.carts, key)
	return nil
}

func (r *mockRepository) stored(key string) ([]byte, bool) {
	r.m.Lock()
	defer r.m.Unlock()
	d, ok := r.carts[key]
	return d, ok
}

type mockCache struct {
	m       sync.Mutex
	data    map[string][]byte
	getErr  error
	setErr  error
	deletes int
	filled  chan string
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, filled: make(chan string, 16)}
}

func (c *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	d, ok := c.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return d, nil
}

func (c *mockCache) Set(_ context.Context, key string, data []byte) error {
	c.m.Lock()
	defer c.m.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = data
	return nil
}

func (c *mockCache) Fill(_ context.Context, key string, data []byte) error {
	c.m.Lock()
	if _, ok := c.data[key]; !ok {
		c.data[key] = data
	}
	c.m.Unlock()
	c.filled <- key
	return nil
}

func (c *mockCache) Delete(_ context.Context, key string) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.deletes++
	delete(c.data, key)
	return nil
}

func (c *mockCache) cached(key string) ([]byte, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	d, ok := c.data[key]
	return d, ok
}

func newTestService() (*CartService, *mockRepository, *mockCache) {
	repo := newMockRepository()
	c := newMockCache()
	return NewCartService(repo, c, domain.DefaultPricing(), zap.NewNop()), repo, c
}

func rug() domain.Product {
	return domain.Product{ID: "hand-woven-wool-rug-01", Name: "Hand-Woven Wool Rug", Price: decimal.NewFromInt(299)}
}

func coaster() domain.Product {
	return domain.Product{ID: "coaster", Name: "Coaster", Price: decimal.NewFromInt(10)}
}

func mustGetCart(t *testing.T, svc *CartService, key string) domain.State {
	t.Helper()
	st, err := svc.GetCart(context.Background(), key)
	require.NoError(t, err)
	return st
}

func TestGetCart_EmptyWhenNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	st := mustGetCart(t, svc, "sess")

	assert.True(t, st.IsEmpty())
	assert.True(t, st.Total.IsZero())
}

func TestAddItem_PersistsAndRefreshesCache(t *testing.T) {
	svc, repo, c := newTestService()
	ctx := context.Background()

	st, err := svc.AddItem(ctx, "sess", rug())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(299).Equal(st.Total))
	stored, ok := repo.stored("sess")
	require.True(t, ok)
	cached, ok := c.cached("sess")
	require.True(t, ok)
	assert.Equal(t, stored, cached)
}

func TestGetCart_ServedFromCache(t *testing.T) {
	svc, repo, c := newTestService()
	c.data["sess"] = []byte(`[{"productId":"coaster","name":"Coaster","price":"10","quantity":3}]`)

	st := mustGetCart(t, svc, "sess")

	require.Len(t, st.Items, 1)
	assert.True(t, decimal.NewFromInt(40).Equal(st.Total))
	assert.Equal(t, 0, repo.gets)
}

func TestGetCart_CacheMissFallsBackToRepoAndFills(t *testing.T) {
	svc, repo, c := newTestService()
	repo.carts["sess"] = []byte(`[{"productId":"coaster","name":"Coaster","price":"10","quantity":1}]`)

	st := mustGetCart(t, svc, "sess")
	require.Len(t, st.Items, 1)

	select {
	case key := <-c.filled:
		assert.Equal(t, "sess", key)
	case <-time.After(time.Second):
		t.Fatal("cache was not filled")
	}
	_, ok := c.cached("sess")
	assert.True(t, ok)
}

func TestGetCart_CacheErrorStillReadsRepo(t *testing.T) {
	svc, repo, c := newTestService()
	c.getErr = errors.New("redis down")
	repo.carts["sess"] = []byte(`[{"productId":"coaster","name":"Coaster","price":"10","quantity":2}]`)

	st := mustGetCart(t, svc, "sess")

	require.Len(t, st.Items, 1)
	assert.Equal(t, 2, st.Items[0].Quantity)
}

func TestGetCart_RepoErrorIsReturned(t *testing.T) {
	svc, repo, c := newTestService()
	repo.carts["sess"] = []byte(`[{"productId":"coaster","name":"Coaster","price":"10","quantity":2}]`)
	repo.getErr = errors.New("mongo down")

	st, err := svc.GetCart(context.Background(), "sess")

	require.ErrorIs(t, err, repo.getErr)
	assert.True(t, st.IsEmpty())
	_, ok := c.cached("sess")
	assert.False(t, ok)
}

func TestGetCart_MalformedPayloadIsEmptyNotError(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.carts["sess"] = []byte(`{"items":`)

	st, err := svc.GetCart(context.Background(), "sess")

	require.NoError(t, err)
	assert.True(t, st.IsEmpty())
}

func TestAddItem_RepoLoadErrorDoesNotOverwrite(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.carts["sess"] = []byte(`[{"productId":"coaster","name":"Coaster","price":"10","quantity":2}]`)
	repo.getErr = errors.New("mongo down")

	_, err := svc.AddItem(context.Background(), "sess", rug())

	require.Error(t, err)
	assert.Equal(t, 0, repo.saves)
}

func TestAddItem_SaveErrorReturnsError(t *testing.T) {
	svc, repo, c := newTestService()
	repo.saveErr = errors.New("write conflict")

	_, err := svc.AddItem(context.Background(), "sess", rug())

	require.Error(t, err)
	_, ok := c.cached("sess")
	assert.False(t, ok)
}

func TestSave_CacheSetErrorInvalidates(t *testing.T) {
	svc, _, c := newTestService()
	c.setErr = errors.New("redis readonly")

	_, err := svc.AddItem(context.Background(), "sess", rug())

	require.NoError(t, err)
	assert.Equal(t, 1, c.deletes)
}

func TestMutations_IgnoreStaleCache(t *testing.T) {
	svc, repo, c := newTestService()
	ctx := context.Background()
	repo.carts["sess"] = []byte(`[{"productId":"coaster","name":"Coaster","price":"10","quantity":5}]`)
	c.data["sess"] = []byte(`[]`)

	st, err := svc.AddItem(ctx, "sess", coaster())
	require.NoError(t, err)

	require.Len(t, st.Items, 1)
	assert.Equal(t, 6, st.Items[0].Quantity)
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", rug())
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "sess", coaster())
	require.NoError(t, err)

	st, err := svc.UpdateQuantity(ctx, "sess", "coaster", 3)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(329).Equal(st.Total))

	st, err = svc.UpdateQuantity(ctx, "sess", "coaster", 0)
	require.NoError(t, err)
	require.Len(t, st.Items, 1)

	st, err = svc.RemoveItem(ctx, "sess", rug().ID)
	require.NoError(t, err)
	assert.True(t, st.IsEmpty())
}

func TestClearCart(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", rug())
	require.NoError(t, err)

	st, err := svc.ClearCart(ctx, "sess")
	require.NoError(t, err)

	assert.True(t, st.IsEmpty())
	stored, _ := repo.stored("sess")
	assert.JSONEq(t, `[]`, string(stored))
	assert.True(t, mustGetCart(t, svc, "sess").IsEmpty())
}

func TestClearIfMatches(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", rug())
	require.NoError(t, err)

	cleared, err := svc.ClearIfMatches(ctx, "sess", []domain.Line{{ProductID: rug().ID, Quantity: 2}})
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.False(t, mustGetCart(t, svc, "sess").IsEmpty())

	cleared, err = svc.ClearIfMatches(ctx, "sess", []domain.Line{{ProductID: rug().ID, Quantity: 1}})
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.True(t, mustGetCart(t, svc, "sess").IsEmpty())

	cleared, err = svc.ClearIfMatches(ctx, "sess", []domain.Line{{ProductID: rug().ID, Quantity: 1}})
	require.NoError(t, err)
	assert.False(t, cleared)
}

func TestAddItem_ConcurrentSameSession(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, "sess", coaster())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st := mustGetCart(t, svc, "sess")
	require.Len(t, st.Items, 1)
	assert.Equal(t, 20, st.Items[0].Quantity)
}

func TestSessionsAreIndependent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "one", rug())
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "two", coaster())
	require.NoError(t, err)

	assert.Equal(t, rug().ID, mustGetCart(t, svc, "one").Items[0].ProductID)
	assert.Equal(t, "coaster", mustGetCart(t, svc, "two").Items[0].ProductID)
}
