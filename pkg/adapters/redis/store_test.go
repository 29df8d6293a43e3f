package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/canvas/pkg/adapters/redis"
	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient(client)
	ports.RunDraftStoreContract(t, store)
}

func TestRedisStore_RoundTripsTree(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	draft := &domain.Draft{
		HostType: "node",
		HostID:   "1",
		Tree: domain.ComponentTree{
			{UUID: "a", ComponentID: "sdc.canvas.heading", Inputs: map[string]any{"text": "Hi"}},
			{UUID: "b", ComponentID: "sdc.canvas.heading", ParentUUID: "a", Slot: "body", Inputs: map[string]any{}},
		},
		Hash:      "0123456789abcdef",
		UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, draft.Key(), draft))

	loaded, err := store.Load(ctx, "node:1")
	require.NoError(t, err)
	assert.Equal(t, draft.Tree, loaded.Tree)
	assert.Equal(t, draft.Hash, loaded.Hash)
	assert.True(t, draft.UpdatedAt.Equal(loaded.UpdatedAt))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	key := domain.DraftKey("node", "ttl")

	// 1. Save
	err := store.Save(ctx, key, &domain.Draft{HostType: "node", HostID: "ttl"})
	assert.NoError(t, err)

	// 2. Verify List (immediately)
	keys, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, keys, key)

	// 3. Fast Forward time in miniredis (for Key Expiration)
	mr.FastForward(2 * time.Second)

	// 4. Verify Load (should fail)
	_, err = store.Load(ctx, key)
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)

	// 5. Verify List (lazily cleaned up). The index score uses wall clock
	// time, so wait for it to pass.
	time.Sleep(1200 * time.Millisecond)

	keys, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err := store.Save(ctx, "node:9", &domain.Draft{HostType: "node", HostID: "9"})
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:node:9"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, list, "node:9")
}

func TestRedisStore_DefaultPrefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)

	require.NoError(t, store.Save(context.Background(), "node:1", &domain.Draft{}))
	assert.True(t, mr.Exists(redis.DefaultPrefix+"node:1"))
	assert.Same(t, client, store.Client())
}
