// ABOUTME: Tests for the in-memory MockStore
// ABOUTME: Covers failure injection and copy-on-read isolation

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_FailWith(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()
	require.NoError(t, store.SetSlot(ctx, "k", "v"))

	boom := errors.New("quota exceeded")
	store.FailWith(boom)

	_, err := store.GetSlot(ctx, "k")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.SetSlot(ctx, "k", "w"), boom)
	assert.ErrorIs(t, store.DeleteSlot(ctx, "k"), boom)
	assert.ErrorIs(t, store.PutMedia(ctx, &MediaItem{ID: "a"}), boom)
	_, err = store.ListMedia(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.DeleteMedia(ctx, "a"), boom)

	// HasSlot bypasses the injected error
	assert.True(t, store.HasSlot("k"))

	store.FailWith(nil)
	v, err := store.GetSlot(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v, "failed writes must not change state")
}

func TestMockStore_ReturnsCopies(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	item := &MediaItem{ID: "a", Type: MediaTypePhoto, Tags: []string{"one"}, Creator: "Liz"}
	require.NoError(t, store.PutMedia(ctx, item))

	// Mutating the original after Put must not leak into the store
	item.Tags[0] = "mutated"

	items, err := store.ListMedia(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "one", items[0].Tags[0])

	// Mutating a returned copy must not leak either
	items[0].Creator = "Bob"
	again, err := store.ListMedia(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Liz", again[0].Creator)
}
