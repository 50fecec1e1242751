// ABOUTME: Store interfaces and data types for partycollage persistence
// ABOUTME: Defines MediaItem and the SlotStore/MediaStore interfaces for durable state

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// MediaType constants for media items
const (
	MediaTypePhoto = "photo"
	MediaTypeVideo = "video"
)

// MediaItem is a captured or uploaded photo/video owned by a party.
// URL may be a data URL or an object URL; object URLs do not survive reloads.
type MediaItem struct {
	ID            string
	Type          string // "photo" or "video"
	URL           string
	Timestamp     time.Time
	Tags          []string
	Creator       string // party name, matched case-insensitively
	Mood          string
	DominantColor string
}

// mediaItemJSON is the persisted shape, with millisecond epoch timestamps.
type mediaItemJSON struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	URL           string   `json:"url"`
	Timestamp     int64    `json:"timestamp"`
	Tags          []string `json:"tags"`
	Creator       string   `json:"creator"`
	Mood          string   `json:"mood,omitempty"`
	DominantColor string   `json:"dominantColor,omitempty"`
}

// MarshalJSON encodes the item in the layout used by the media slot.
func (m MediaItem) MarshalJSON() ([]byte, error) {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(mediaItemJSON{
		ID:            m.ID,
		Type:          m.Type,
		URL:           m.URL,
		Timestamp:     m.Timestamp.UnixMilli(),
		Tags:          tags,
		Creator:       m.Creator,
		Mood:          m.Mood,
		DominantColor: m.DominantColor,
	})
}

// UnmarshalJSON decodes the media slot layout.
func (m *MediaItem) UnmarshalJSON(data []byte) error {
	var raw mediaItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = MediaItem{
		ID:            raw.ID,
		Type:          raw.Type,
		URL:           raw.URL,
		Timestamp:     time.UnixMilli(raw.Timestamp),
		Tags:          raw.Tags,
		Creator:       raw.Creator,
		Mood:          raw.Mood,
		DominantColor: raw.DominantColor,
	}
	return nil
}

// IsValidMediaType reports whether t is a known media type.
func IsValidMediaType(t string) bool {
	return t == MediaTypePhoto || t == MediaTypeVideo
}

// SlotStore holds string values under string keys.
// GetSlot returns ErrNotFound for missing keys; DeleteSlot on a missing key is a no-op.
type SlotStore interface {
	GetSlot(ctx context.Context, key string) (string, error)
	SetSlot(ctx context.Context, key, value string) error
	DeleteSlot(ctx context.Context, key string) error
}

// MediaStore is the media table keyed by item ID.
type MediaStore interface {
	// PutMedia inserts or replaces the item with the same ID.
	PutMedia(ctx context.Context, item *MediaItem) error
	// ListMedia returns every item in primary key order.
	ListMedia(ctx context.Context) ([]*MediaItem, error)
	// DeleteMedia removes an item, returning ErrNotFound if it doesn't exist.
	DeleteMedia(ctx context.Context, id string) error
}

// Store is the full persistence surface of one storage origin.
type Store interface {
	SlotStore
	MediaStore

	// Close releases any resources held by the store
	Close() error
}
