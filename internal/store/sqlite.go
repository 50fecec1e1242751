// ABOUTME: SQLite implementation of the Store interface
// ABOUTME: Persists key/value slots and the media table with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Registered database/sql driver names.
const (
	DriverSQLite  = "sqlite"  // modernc.org/sqlite, pure Go
	DriverSQLite3 = "sqlite3" // github.com/mattn/go-sqlite3, requires cgo
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path using the
// pure Go driver. The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithDriver(DriverSQLite, path)
}

// NewSQLiteStoreWithDriver is NewSQLiteStore with an explicit driver name.
func NewSQLiteStoreWithDriver(driver, path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if driver != DriverSQLite && driver != DriverSQLite3 {
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to :memory: is a separate database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path, "driver", driver)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS slots (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS media_items (
			id        TEXT PRIMARY KEY,
			type      TEXT NOT NULL,
			url       TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			tags      TEXT NOT NULL DEFAULT '[]',
			creator   TEXT NOT NULL,

			CHECK (type IN ('photo', 'video'))
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// runMigrations applies schema migrations for existing databases.
// These are idempotent - safe to run multiple times.
func (s *SQLiteStore) runMigrations() error {
	// SQLite doesn't support ADD COLUMN IF NOT EXISTS, so we check first
	migrations := []struct {
		check  string
		apply  string
		column string
	}{
		{
			check:  `SELECT 1 FROM pragma_table_info('media_items') WHERE name = 'mood'`,
			apply:  `ALTER TABLE media_items ADD COLUMN mood TEXT`,
			column: "mood",
		},
		{
			check:  `SELECT 1 FROM pragma_table_info('media_items') WHERE name = 'dominant_color'`,
			apply:  `ALTER TABLE media_items ADD COLUMN dominant_color TEXT`,
			column: "dominant_color",
		},
	}

	for _, m := range migrations {
		var exists int
		err := s.db.QueryRow(m.check).Scan(&exists)
		if err == nil {
			continue
		}
		if _, err := s.db.Exec(m.apply); err != nil {
			return fmt.Errorf("adding %s column to media_items: %w", m.column, err)
		}
		s.logger.Info("applied migration", "column", m.column, "table", "media_items")
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// GetSlot returns the value stored under key.
// Returns ErrNotFound if the slot is empty.
func (s *SQLiteStore) GetSlot(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying slot: %w", err)
	}
	return value, nil
}

// SetSlot writes value under key, replacing any previous value.
func (s *SQLiteStore) SetSlot(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO slots (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing slot: %w", err)
	}

	s.logger.Debug("wrote slot", "key", key, "bytes", len(value))
	return nil
}

// DeleteSlot removes key. Removing a missing key is not an error.
func (s *SQLiteStore) DeleteSlot(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting slot: %w", err)
	}
	return nil
}

// PutMedia inserts the item or replaces the stored item with the same ID.
func (s *SQLiteStore) PutMedia(ctx context.Context, item *MediaItem) error {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO media_items (id, type, url, timestamp, tags, creator, mood, dominant_color)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			url = excluded.url,
			timestamp = excluded.timestamp,
			tags = excluded.tags,
			creator = excluded.creator,
			mood = excluded.mood,
			dominant_color = excluded.dominant_color
	`,
		item.ID,
		item.Type,
		item.URL,
		item.Timestamp.UnixMilli(),
		string(tagsJSON),
		item.Creator,
		nullString(item.Mood),
		nullString(item.DominantColor),
	)
	if err != nil {
		return fmt.Errorf("upserting media item: %w", err)
	}

	s.logger.Debug("stored media item", "id", item.ID, "type", item.Type, "creator", item.Creator)
	return nil
}

// nullString returns nil for empty strings, otherwise the string
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ListMedia returns every media item ordered by ID, the table's key order.
func (s *SQLiteStore) ListMedia(ctx context.Context) ([]*MediaItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, url, timestamp, tags, creator, mood, dominant_color
		FROM media_items
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying media items: %w", err)
	}
	defer rows.Close()

	items := []*MediaItem{}
	for rows.Next() {
		var item MediaItem
		var ts int64
		var tagsJSON string
		var mood, dominantColor sql.NullString

		if err := rows.Scan(&item.ID, &item.Type, &item.URL, &ts, &tagsJSON, &item.Creator, &mood, &dominantColor); err != nil {
			return nil, fmt.Errorf("scanning media row: %w", err)
		}

		if err := json.Unmarshal([]byte(tagsJSON), &item.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags for %s: %w", item.ID, err)
		}
		item.Timestamp = time.UnixMilli(ts)
		item.Mood = mood.String
		item.DominantColor = dominantColor.String

		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating media rows: %w", err)
	}

	return items, nil
}

// DeleteMedia removes the media item with the given ID.
// Returns ErrNotFound if no such item exists.
func (s *SQLiteStore) DeleteMedia(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM media_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting media item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted media item", "id", id)
	return nil
}
