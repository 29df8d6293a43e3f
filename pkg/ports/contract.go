package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/canvas/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDraftStoreContract runs a suite of tests to verify that a DraftStore
// implementation adheres to the interface contract.
func RunDraftStoreContract(t *testing.T, store DraftStore) {
	ctx := context.Background()
	suffix := time.Now().Format("20060102150405")

	newDraft := func(id string) *domain.Draft {
		return &domain.Draft{
			HostType: "node",
			HostID:   id,
			Tree: domain.ComponentTree{
				{UUID: "a", ComponentID: "sdc.canvas.heading", Inputs: map[string]any{"text": "Hello"}},
			},
			Hash:      "abc",
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		draft := newDraft("contract-" + suffix)

		err := store.Save(ctx, draft.Key(), draft)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, draft.Key())
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, draft.HostID, loaded.HostID)
		assert.Equal(t, draft.Hash, loaded.Hash)
		require.Len(t, loaded.Tree, 1)
		assert.Equal(t, "Hello", loaded.Tree[0].Inputs["text"])
		assert.True(t, draft.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, domain.DraftKey("node", "missing-"+suffix))
		assert.ErrorIs(t, err, domain.ErrDraftNotFound)
	})

	t.Run("Isolation", func(t *testing.T) {
		draft := newDraft("isolated-" + suffix)
		require.NoError(t, store.Save(ctx, draft.Key(), draft))

		draft.Tree[0].Inputs["text"] = "mutated after save"

		loaded, err := store.Load(ctx, draft.Key())
		require.NoError(t, err)
		assert.Equal(t, "Hello", loaded.Tree[0].Inputs["text"])
	})

	t.Run("Delete", func(t *testing.T) {
		draft := newDraft("delete-" + suffix)
		require.NoError(t, store.Save(ctx, draft.Key(), draft))

		require.NoError(t, store.Delete(ctx, draft.Key()), "Delete should not return error")

		_, err := store.Load(ctx, draft.Key())
		assert.ErrorIs(t, err, domain.ErrDraftNotFound, "Load after Delete should return ErrDraftNotFound")
	})

	t.Run("List", func(t *testing.T) {
		d1 := newDraft("list-1-" + suffix)
		d2 := newDraft("list-2-" + suffix)
		require.NoError(t, store.Save(ctx, d1.Key(), d1))
		require.NoError(t, store.Save(ctx, d2.Key(), d2))

		defer func() {
			_ = store.Delete(ctx, d1.Key())
			_ = store.Delete(ctx, d2.Key())
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, d1.Key())
		assert.Contains(t, keys, d2.Key())
	})
}

// RunDefinitionProviderContract verifies a ComponentDefinitionProvider that
// has been seeded with the given definition.
func RunDefinitionProviderContract(t *testing.T, provider ComponentDefinitionProvider, seeded *domain.ComponentDefinition) {
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		def, err := provider.Get(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, def.ID)
		assert.Equal(t, seeded.ActiveVersion, def.ActiveVersion)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := provider.Get(ctx, "sdc.missing.component")
		assert.ErrorIs(t, err, domain.ErrComponentNotFound)
	})

	t.Run("GetVersion", func(t *testing.T) {
		v, err := provider.GetVersion(ctx, seeded.ID, "")
		require.NoError(t, err)
		assert.Equal(t, seeded.ActiveVersion, v.Version)

		_, err = provider.GetVersion(ctx, seeded.ID, "no-such-version")
		assert.ErrorIs(t, err, domain.ErrVersionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := provider.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, seeded.ID)
	})
}
