package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// implementations runs fn against both the SQLite and the mock store.
func implementations(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, setupTestStore(t)) })
	t.Run("mock", func(t *testing.T) { fn(t, NewMockStore()) })
}

func TestStore_Slots(t *testing.T) {
	implementations(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.GetSlot(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.SetSlot(ctx, "currentUser", `{"username":"Liz"}`))
		v, err := s.GetSlot(ctx, "currentUser")
		require.NoError(t, err)
		assert.Equal(t, `{"username":"Liz"}`, v)

		// Overwrite
		require.NoError(t, s.SetSlot(ctx, "currentUser", `{"username":"Bob"}`))
		v, err = s.GetSlot(ctx, "currentUser")
		require.NoError(t, err)
		assert.Equal(t, `{"username":"Bob"}`, v)

		require.NoError(t, s.DeleteSlot(ctx, "currentUser"))
		_, err = s.GetSlot(ctx, "currentUser")
		assert.ErrorIs(t, err, ErrNotFound)

		// Deleting again is a no-op
		assert.NoError(t, s.DeleteSlot(ctx, "currentUser"))
	})
}

func TestStore_MediaUpsert(t *testing.T) {
	implementations(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		ts := time.UnixMilli(1700000000000)

		item := &MediaItem{
			ID:        "photo-1",
			Type:      MediaTypePhoto,
			URL:       "https://example.com/1.jpg",
			Timestamp: ts,
			Tags:      []string{"party", "friends"},
			Creator:   "Liz",
		}
		require.NoError(t, s.PutMedia(ctx, item))

		// Same ID replaces the row
		item.Tags = []string{"updated"}
		item.DominantColor = "#aabbcc"
		require.NoError(t, s.PutMedia(ctx, item))

		items, err := s.ListMedia(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, []string{"updated"}, items[0].Tags)
		assert.Equal(t, "#aabbcc", items[0].DominantColor)
		assert.True(t, items[0].Timestamp.Equal(ts))
	})
}

func TestStore_ListMediaKeyOrder(t *testing.T) {
	implementations(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, s.PutMedia(ctx, &MediaItem{
				ID: id, Type: MediaTypeVideo, URL: "u", Creator: "Liz",
			}))
		}

		items, err := s.ListMedia(ctx)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "a", items[0].ID)
		assert.Equal(t, "b", items[1].ID)
		assert.Equal(t, "c", items[2].ID)
	})
}

func TestStore_ListMediaEmpty(t *testing.T) {
	implementations(t, func(t *testing.T, s Store) {
		items, err := s.ListMedia(context.Background())
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.NotNil(t, items)
	})
}

func TestStore_DeleteMedia(t *testing.T) {
	implementations(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.PutMedia(ctx, &MediaItem{ID: "x", Type: MediaTypePhoto, URL: "u", Creator: "Liz"}))
		require.NoError(t, s.PutMedia(ctx, &MediaItem{ID: "y", Type: MediaTypePhoto, URL: "u", Creator: "Liz"}))

		require.NoError(t, s.DeleteMedia(ctx, "x"))
		assert.ErrorIs(t, s.DeleteMedia(ctx, "x"), ErrNotFound)

		items, err := s.ListMedia(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "y", items[0].ID)
	})
}

func TestMediaItem_JSONLayout(t *testing.T) {
	item := MediaItem{
		ID:        "liz-party-1",
		Type:      MediaTypePhoto,
		URL:       "https://images.example.com/a",
		Timestamp: time.UnixMilli(1700000000123),
		Creator:   "Liz",
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "liz-party-1",
		"type": "photo",
		"url": "https://images.example.com/a",
		"timestamp": 1700000000123,
		"tags": [],
		"creator": "Liz"
	}`, string(data))

	var decoded MediaItem
	require.NoError(t, json.Unmarshal([]byte(`{"id":"v","type":"video","url":"u","timestamp":5,"tags":["a"],"creator":"Liz","mood":"silly","dominantColor":"#000000"}`), &decoded))
	assert.Equal(t, "silly", decoded.Mood)
	assert.Equal(t, "#000000", decoded.DominantColor)
	assert.Equal(t, int64(5), decoded.Timestamp.UnixMilli())
}
