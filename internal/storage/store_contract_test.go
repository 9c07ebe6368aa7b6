package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract checks the behaviour every Store implementation shares.
func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "never-set")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeyCart, []byte(`[{"id":1,"cant":2}]`)))
		got, err := s.Get(ctx, KeyCart)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":1,"cant":2}]`, string(got))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeyFilters, []byte(`{"q":"a"}`)))
		require.NoError(t, s.Set(ctx, KeyFilters, []byte(`{"q":"b"}`)))
		got, err := s.Get(ctx, KeyFilters)
		require.NoError(t, err)
		assert.JSONEq(t, `{"q":"b"}`, string(got))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeyCustomer, []byte(`{}`)))
		require.NoError(t, s.Remove(ctx, KeyCustomer))
		_, err := s.Get(ctx, KeyCustomer)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("remove missing key", func(t *testing.T) {
		assert.NoError(t, s.Remove(ctx, "nonexistent"))
	})
}
