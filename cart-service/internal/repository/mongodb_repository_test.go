package repository

import (
	"context"
	"testing"

	"github.com/fjod/storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
)

func setupTestDB(t *testing.T) (*MongoRepository, func()) {
	ctx := context.Background()

	// Start MongoDB container
	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := Connect(ctx, config.MongoConfig{URI: uri, Database: "testdb"})
	require.NoError(t, err)

	repo := NewMongoRepository(db)
	require.NoError(t, repo.CreateIndexes(ctx))

	cleanup := func() {
		_ = db.Client().Disconnect(ctx)
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func TestGetCart_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	data, err := repo.GetCart(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, data)
}

func TestSaveCart_InsertThenUpdate(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SaveCart(ctx, "sess", []byte(`[{"productId":"a","quantity":1}]`)))
	require.NoError(t, repo.SaveCart(ctx, "sess", []byte(`[{"productId":"a","quantity":2}]`)))

	data, err := repo.GetCart(ctx, "sess")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"productId":"a","quantity":2}]`, string(data))

	count, err := repo.collection.CountDocuments(ctx, bson.M{"session_key": "sess"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSaveCart_KeepsCreatedAt(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SaveCart(ctx, "sess", []byte(`[]`)))
	var first cartDocument
	require.NoError(t, repo.collection.FindOne(ctx, bson.M{"session_key": "sess"}).Decode(&first))

	require.NoError(t, repo.SaveCart(ctx, "sess", []byte(`[{"productId":"a","quantity":1}]`)))
	var second cartDocument
	require.NoError(t, repo.collection.FindOne(ctx, bson.M{"session_key": "sess"}).Decode(&second))

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
}

func TestDeleteCart(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SaveCart(ctx, "sess", []byte(`[]`)))
	require.NoError(t, repo.DeleteCart(ctx, "sess"))

	_, err := repo.GetCart(ctx, "sess")
	assert.ErrorIs(t, err, ErrCartNotFound)

	assert.ErrorIs(t, repo.DeleteCart(ctx, "sess"), ErrCartNotFound)
}

func TestSaveCart_SeparateSessions(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SaveCart(ctx, "one", []byte(`["1"]`)))
	require.NoError(t, repo.SaveCart(ctx, "two", []byte(`["2"]`)))

	one, err := repo.GetCart(ctx, "one")
	require.NoError(t, err)
	two, err := repo.GetCart(ctx, "two")
	require.NoError(t, err)

	assert.Equal(t, `["1"]`, string(one))
	assert.Equal(t, `["2"]`, string(two))
}
