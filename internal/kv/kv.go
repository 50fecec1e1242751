// ABOUTME: JSON-valued key/value slots with a self-healing backup for the media key
// ABOUTME: Storage failures are logged and degraded to empty results, never returned

package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/2389/partycollage/internal/store"
)

// MediaKey is the one key whose writes are shadowed into a backup slot.
const MediaKey = "media"

const backupSuffix = "_backup"

// MediaBackupKey is the slot shadowing MediaKey.
const MediaBackupKey = MediaKey + backupSuffix

// Store reads and writes JSON values in a SlotStore.
type Store struct {
	slots  store.SlotStore
	logger *slog.Logger
}

// New wraps slots. A nil logger falls back to slog.Default().
func New(slots store.SlotStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		slots:  slots,
		logger: logger.With("component", "kv"),
	}
}

// Save serializes value and writes it under key. Writes to MediaKey are
// mirrored into MediaBackupKey. Returns false if anything failed.
func (s *Store) Save(ctx context.Context, key string, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("error saving to storage", "key", key, "error", err)
		return false
	}

	if err := s.slots.SetSlot(ctx, key, string(data)); err != nil {
		s.logger.Error("error saving to storage", "key", key, "error", err)
		return false
	}

	if key == MediaKey {
		if err := s.slots.SetSlot(ctx, MediaBackupKey, string(data)); err != nil {
			s.logger.Error("error saving media backup", "error", err)
			return false
		}
	}

	return true
}

// ErrAbsent is returned by Load when nothing is stored under a key.
var ErrAbsent = errors.New("no value stored")

// ErrCorrupt is returned by Load when the stored value is not valid JSON.
var ErrCorrupt = errors.New("stored value is not valid JSON")

// Raw returns the stored JSON under key. A missing MediaKey is restored from
// its backup when one exists. A stored JSON null counts as absent. Failures
// are logged and reported as not found.
func (s *Store) Raw(ctx context.Context, key string) (json.RawMessage, bool) {
	data, err := s.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrAbsent) {
			s.logger.Error("error reading from storage", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

// Load is Raw for callers that must tell an absent value (ErrAbsent) from
// an unreadable one (ErrCorrupt or a storage error).
func (s *Store) Load(ctx context.Context, key string) (json.RawMessage, error) {
	data, err := s.slots.GetSlot(ctx, key)
	if errors.Is(err, store.ErrNotFound) && key == MediaKey {
		return s.restoreMedia(ctx)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAbsent
	}
	if err != nil {
		return nil, err
	}

	if !json.Valid([]byte(data)) {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, key)
	}
	if gjson.Parse(data).Type == gjson.Null {
		return nil, ErrAbsent
	}
	return json.RawMessage(data), nil
}

// restoreMedia copies the backup slot back into the primary media slot.
func (s *Store) restoreMedia(ctx context.Context) (json.RawMessage, error) {
	backup, err := s.slots.GetSlot(ctx, MediaBackupKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("reading media backup: %w", err)
	}
	if !json.Valid([]byte(backup)) {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, MediaBackupKey)
	}

	if err := s.slots.SetSlot(ctx, MediaKey, backup); err != nil {
		// Still serve the backup even if the primary couldn't be repaired
		s.logger.Error("error restoring media from backup", "error", err)
	} else {
		s.logger.Warn("restored media from backup")
	}

	if gjson.Parse(backup).Type == gjson.Null {
		return nil, ErrAbsent
	}
	return json.RawMessage(backup), nil
}

// Get decodes the value under key into dst and reports whether it was found.
func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	raw, ok := s.Raw(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Error("error reading from storage", "key", key, "error", err)
		return false
	}
	return true
}

// Remove deletes key. Every key except MediaKey also loses its backup slot;
// the media backup deliberately outlives the primary.
func (s *Store) Remove(ctx context.Context, key string) bool {
	if err := s.slots.DeleteSlot(ctx, key); err != nil {
		s.logger.Error("error removing from storage", "key", key, "error", err)
		return false
	}
	if key != MediaKey {
		if err := s.slots.DeleteSlot(ctx, key+backupSuffix); err != nil {
			s.logger.Error("error removing from storage", "key", key+backupSuffix, "error", err)
			return false
		}
	}
	return true
}

// list returns the array stored under key, or an empty list if nothing is stored.
func (s *Store) list(ctx context.Context, key string) ([]json.RawMessage, bool) {
	items := []json.RawMessage{}
	raw, ok := s.Raw(ctx, key)
	if !ok {
		return items, true
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Error("error reading list from storage", "key", key, "error", err)
		return nil, false
	}
	return items, true
}

// Append adds item to the end of the list stored under key.
func (s *Store) Append(ctx context.Context, key string, item any) bool {
	items, ok := s.list(ctx, key)
	if !ok {
		return false
	}

	data, err := json.Marshal(item)
	if err != nil {
		s.logger.Error("error appending to storage", "key", key, "error", err)
		return false
	}

	return s.Save(ctx, key, append(items, data))
}

// DeleteItem removes every entry whose "id" field equals id from the list
// under key and returns the list as persisted. Relative order is kept.
func (s *Store) DeleteItem(ctx context.Context, key, id string) ([]json.RawMessage, bool) {
	items, ok := s.list(ctx, key)
	if !ok {
		return nil, false
	}

	kept := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		itemID := gjson.GetBytes(item, "id")
		if itemID.Type == gjson.String && itemID.Str == id {
			continue
		}
		kept = append(kept, item)
	}

	if !s.Save(ctx, key, kept) {
		return nil, false
	}
	return kept, true
}
