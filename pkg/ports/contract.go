package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunResultStoreContract runs a suite of tests to verify that a ResultStore
// implementation adheres to the interface contract.
func RunResultStoreContract(t *testing.T, store ResultStore) {
	ctx := context.Background()
	messageID := "contract-" + time.Now().Format("20060102150405.000000000")

	t.Run("Save and Load", func(t *testing.T) {
		result := domain.Result{
			MessageID: messageID,
			Program:   "contract",
			Status:    domain.StatusSuccess,
			Value:     "done",
			Bindings:  map[string]any{"x": "5"},
			Steps:     2,
		}

		require.NoError(t, store.Save(ctx, result), "Save should not return error")

		loaded, err := store.Load(ctx, messageID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, messageID, loaded.MessageID)
		assert.Equal(t, domain.StatusSuccess, loaded.Status)
		assert.Equal(t, "done", loaded.Value)
		assert.Equal(t, "5", loaded.Bindings["x"])
		assert.Equal(t, 2, loaded.Steps)
	})

	t.Run("Failure survives", func(t *testing.T) {
		id := messageID + "-failed"
		result := domain.Result{
			MessageID: id,
			Status:    domain.StatusFailure,
			Failure:   &domain.Failure{Kind: domain.FailureDispatch, NodeID: 3, Message: "boom"},
		}
		require.NoError(t, store.Save(ctx, result))
		defer func() { _ = store.Delete(ctx, id) }()

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, loaded.Failure)
		assert.Equal(t, domain.FailureDispatch, loaded.Failure.Kind)
		assert.Equal(t, domain.NodeID(3), loaded.Failure.NodeID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+messageID)
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.Result{MessageID: messageID, Status: domain.StatusSuccess}))
		require.NoError(t, store.Delete(ctx, messageID), "Delete should not return error")

		_, err := store.Load(ctx, messageID)
		assert.ErrorIs(t, err, domain.ErrResultNotFound, "Load after Delete should return ErrResultNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := messageID + "-1"
		id2 := messageID + "-2"
		require.NoError(t, store.Save(ctx, domain.Result{MessageID: id1}))
		require.NoError(t, store.Save(ctx, domain.Result{MessageID: id2}))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
