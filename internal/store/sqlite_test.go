// ABOUTME: Tests for SQLite store implementation
// ABOUTME: Covers database creation, schema migrations, and persistence across reopen

package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	// Verify the database file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestNewSQLiteStore_InMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SetSlot(ctx, "k", "v"); err != nil {
		t.Fatalf("SetSlot failed: %v", err)
	}
	got, err := store.GetSlot(ctx, "k")
	if err != nil {
		t.Fatalf("GetSlot failed: %v", err)
	}
	if got != "v" {
		t.Errorf("GetSlot = %q, want %q", got, "v")
	}
}

func TestNewSQLiteStore_UnknownDriver(t *testing.T) {
	_, err := NewSQLiteStoreWithDriver("postgres", filepath.Join(t.TempDir(), "test.db"))
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}

	if err := store.SetSlot(ctx, "parties", `[{"name":"Liz"}]`); err != nil {
		t.Fatalf("SetSlot failed: %v", err)
	}
	item := &MediaItem{
		ID:        "m-1",
		Type:      MediaTypePhoto,
		URL:       "data:image/png;base64,AAAA",
		Timestamp: time.UnixMilli(1700000000000),
		Tags:      []string{"party"},
		Creator:   "Liz",
		Mood:      "happy",
	}
	if err := store.PutMedia(ctx, item); err != nil {
		t.Fatalf("PutMedia failed: %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopening store failed: %v", err)
	}
	defer reopened.Close()

	v, err := reopened.GetSlot(ctx, "parties")
	if err != nil {
		t.Fatalf("GetSlot after reopen failed: %v", err)
	}
	if v != `[{"name":"Liz"}]` {
		t.Errorf("slot value = %q", v)
	}

	items, err := reopened.ListMedia(ctx)
	if err != nil {
		t.Fatalf("ListMedia after reopen failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Mood != "happy" {
		t.Errorf("Mood = %q, want %q", items[0].Mood, "happy")
	}
	if !items[0].Timestamp.Equal(item.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", items[0].Timestamp, item.Timestamp)
	}
}

func TestSQLiteStore_MigratesLegacyMediaTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	// A database created before mood/dominant_color existed
	db, err := sql.Open(DriverSQLite, dbPath)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE media_items (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			url TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			creator TEXT NOT NULL
		);
		INSERT INTO media_items (id, type, url, timestamp, tags, creator)
		VALUES ('old-1', 'photo', 'https://example.com/a.jpg', 1, '["old"]', 'Liz');
	`)
	if err != nil {
		t.Fatalf("creating legacy table failed: %v", err)
	}
	db.Close()

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore on legacy db failed: %v", err)
	}
	defer store.Close()

	items, err := store.ListMedia(context.Background())
	if err != nil {
		t.Fatalf("ListMedia failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "old-1" {
		t.Fatalf("unexpected items after migration: %+v", items)
	}
	if items[0].Mood != "" || items[0].DominantColor != "" {
		t.Errorf("expected empty mood/color for legacy row, got %q/%q", items[0].Mood, items[0].DominantColor)
	}
}

func TestSQLiteStore_RejectsUnknownMediaType(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	err := store.PutMedia(context.Background(), &MediaItem{
		ID:      "bad",
		Type:    "audio",
		URL:     "x",
		Creator: "Liz",
	})
	if err == nil {
		t.Fatal("expected CHECK constraint failure for type 'audio'")
	}
}

// newTestStore creates a new SQLite store in a temp directory
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}

	return store
}
