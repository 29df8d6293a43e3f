package autosave_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/canvas/internal/testutils"
	"github.com/aretw0/canvas/pkg/adapters/memory"
	"github.com/aretw0/canvas/pkg/autosave"
	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/ports"
	"github.com/aretw0/canvas/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	drafts *memory.DraftStore
	hosts  *memory.HostStore
	mgr    *autosave.Manager
}

func newFixture(t *testing.T, opts ...autosave.Option) fixture {
	t.Helper()
	f := fixture{
		drafts: memory.NewDraftStore(),
		hosts:  memory.NewHostStore(&memory.Entity{Type: "node", ID: "1"}),
	}
	f.mgr = autosave.NewManager(f.drafts, f.hosts, memory.NewDefinitionStore(testutils.Definitions()...), opts...)
	return f
}

func expandedTree() domain.ComponentTree {
	return domain.ComponentTree{{
		UUID:        "h",
		ComponentID: testutils.HeadingID,
		Inputs: map[string]any{
			"text": map[string]any{"sourceType": "static:field_item:string", "value": "Hello", "expression": "value"},
		},
	}}
}

func TestManager_SaveDraftCollapsesAndDeduplicates(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, autosave.WithClock(func() time.Time { return now }))

	draft, changed, err := f.mgr.SaveDraft(ctx, "node", "1", expandedTree())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Hello", draft.Tree[0].Inputs["text"])
	assert.Equal(t, now, draft.UpdatedAt)
	assert.NotEmpty(t, draft.Hash)

	// Same tree in collapsed form hashes the same.
	collapsed := domain.ComponentTree{{UUID: "h", ComponentID: testutils.HeadingID, Inputs: map[string]any{"text": "Hello"}}}
	again, changed, err := f.mgr.SaveDraft(ctx, "node", "1", collapsed)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, draft.Hash, again.Hash)

	collapsed[0].Inputs["text"] = "Changed"
	_, changed, err = f.mgr.SaveDraft(ctx, "node", "1", collapsed)
	require.NoError(t, err)
	assert.True(t, changed)

	keys, err := f.mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"node:1"}, keys)
}

func TestManager_PublishValid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.mgr.SaveDraft(ctx, "node", "1", expandedTree())
	require.NoError(t, err)

	host, err := f.mgr.Publish(ctx, "node", "1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", host.ComponentTree()[0].Inputs["text"])

	stored, err := f.hosts.Load(ctx, "node", "1")
	require.NoError(t, err)
	assert.Len(t, stored.ComponentTree(), 1)

	_, err = f.mgr.Load(ctx, "node", "1")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestManager_PublishInvalidKeepsDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	invalid := domain.ComponentTree{{UUID: "h", ComponentID: testutils.HeadingID, Inputs: map[string]any{}}}
	_, _, err := f.mgr.SaveDraft(ctx, "node", "1", invalid)
	require.NoError(t, err)

	_, err = f.mgr.Publish(ctx, "node", "1")
	var vErr *validation.ViolationListError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Violations, 1)
	assert.Equal(t, "0.inputs.text", vErr.Violations[0].PropertyPath)

	_, err = f.mgr.Load(ctx, "node", "1")
	assert.NoError(t, err)

	stored, err := f.hosts.Load(ctx, "node", "1")
	require.NoError(t, err)
	assert.Empty(t, stored.ComponentTree())
}

func TestManager_PublishErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.mgr.Publish(ctx, "node", "1")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)

	_, _, err = f.mgr.SaveDraft(ctx, "node", "404", expandedTree())
	require.NoError(t, err)
	_, err = f.mgr.Publish(ctx, "node", "404")
	assert.ErrorIs(t, err, domain.ErrHostNotFound)
}

// sharedHosts hands out the same entity on every Load and fails every Save.
type sharedHosts struct {
	entity *memory.Entity
}

func (h *sharedHosts) Load(ctx context.Context, hostType, id string) (ports.HostEntity, error) {
	return h.entity, nil
}

func (h *sharedHosts) Save(ctx context.Context, host ports.HostEntity) error {
	return errors.New("disk full")
}

func TestManager_PublishFailedSaveRestoresHost(t *testing.T) {
	ctx := context.Background()
	published := domain.ComponentTree{{UUID: "old", ComponentID: testutils.SpacerID, Inputs: map[string]any{}}}
	hosts := &sharedHosts{entity: &memory.Entity{Type: "node", ID: "1", Tree: published}}
	mgr := autosave.NewManager(memory.NewDraftStore(), hosts, memory.NewDefinitionStore(testutils.Definitions()...))

	_, _, err := mgr.SaveDraft(ctx, "node", "1", expandedTree())
	require.NoError(t, err)

	_, err = mgr.Publish(ctx, "node", "1")
	require.ErrorContains(t, err, "disk full")
	assert.Equal(t, published, hosts.entity.ComponentTree())

	_, err = mgr.Load(ctx, "node", "1")
	assert.NoError(t, err, "draft must survive a failed publish")
}

func TestManager_Discard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.mgr.SaveDraft(ctx, "node", "1", expandedTree())
	require.NoError(t, err)
	require.NoError(t, f.mgr.Discard(ctx, "node", "1"))

	_, err = f.mgr.Load(ctx, "node", "1")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.DraftStore
	mu     sync.Mutex
	active int
	max    int
}

func (s *SlowStore) Save(ctx context.Context, key string, draft *domain.Draft) error {
	s.mu.Lock()
	s.active++
	if s.active > s.max {
		s.max = s.active
	}
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond) // Simulate IO

	s.mu.Lock()
	s.active--
	s.mu.Unlock()
	return s.DraftStore.Save(ctx, key, draft)
}

func TestManager_SerialisesWritesPerHost(t *testing.T) {
	store := &SlowStore{DraftStore: memory.NewDraftStore()}
	mgr := autosave.NewManager(store, memory.NewHostStore(), memory.NewDefinitionStore(testutils.Definitions()...))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tree := domain.ComponentTree{{UUID: "h", ComponentID: testutils.HeadingID, Inputs: map[string]any{"text": string(rune('a' + i))}}}
			_, _, err := mgr.SaveDraft(ctx, "node", "1", tree)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, store.max, "writes to one host must not overlap")
}

type recordingLocker struct {
	mu    sync.Mutex
	keys  []string
	ttl   time.Duration
	fail  bool
	freed int
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.fail {
		return nil, errors.New("redis down")
	}
	l.mu.Lock()
	l.keys = append(l.keys, key)
	l.ttl = ttl
	l.mu.Unlock()
	return func(context.Context) error {
		l.mu.Lock()
		l.freed++
		l.mu.Unlock()
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	ctx := context.Background()
	locker := &recordingLocker{}
	f := newFixture(t, autosave.WithLocker(locker), autosave.WithLockTTL(time.Second))

	_, _, err := f.mgr.SaveDraft(ctx, "node", "1", expandedTree())
	require.NoError(t, err)
	assert.Equal(t, []string{"node:1"}, locker.keys)
	assert.Equal(t, time.Second, locker.ttl)
	assert.Equal(t, 1, locker.freed)

	locker.fail = true
	_, err = f.mgr.Load(ctx, "node", "1")
	assert.ErrorContains(t, err, "failed to acquire distributed lock")
}
