// ABOUTME: Gallery service tying the session manager, kv slots, and media table together
// ABOUTME: Adds, lists, and removes media items for display and CLI use

package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/partycollage/internal/kv"
	"github.com/2389/partycollage/internal/session"
	"github.com/2389/partycollage/internal/store"
)

// ErrInvalidMedia is returned when an item cannot be stored.
var ErrInvalidMedia = errors.New("invalid media item")

// Gallery is the media-facing service.
type Gallery struct {
	sessions *session.Manager
	kv       *kv.Store
	media    store.MediaStore
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a gallery over the given manager, slots, and media table.
func New(sessions *session.Manager, slots *kv.Store, media store.MediaStore, logger *slog.Logger) *Gallery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gallery{
		sessions: sessions,
		kv:       slots,
		media:    media,
		logger:   logger.With("component", "gallery"),
		now:      time.Now,
	}
}

// ListOptions selects and orders media for display.
type ListOptions struct {
	SortBy string
	Type   string
	Tags   []string
}

// List returns media filtered and ordered per opts.
func (g *Gallery) List(ctx context.Context, opts ListOptions) ([]*store.MediaItem, error) {
	items, err := g.media.ListMedia(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing media: %w", err)
	}

	items, err = FilterType(items, opts.Type)
	if err != nil {
		return nil, err
	}
	items = FilterTags(items, opts.Tags...)

	if err := SortBy(items, opts.SortBy); err != nil {
		return nil, err
	}
	return items, nil
}

// Add stores item on behalf of the current party. Missing ID and timestamp
// are filled in; the creator is always the current party.
func (g *Gallery) Add(ctx context.Context, item *store.MediaItem) (*store.MediaItem, error) {
	party, err := g.sessions.CurrentParty(ctx)
	if err != nil {
		return nil, err
	}
	if !store.IsValidMediaType(item.Type) {
		return nil, fmt.Errorf("%w: type must be photo or video", ErrInvalidMedia)
	}
	if strings.TrimSpace(item.URL) == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidMedia)
	}

	stored := *item
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = g.now()
	}
	stored.Creator = party.Name
	if stored.DominantColor == "" && strings.HasPrefix(stored.URL, "data:image/") {
		if color, err := ColorFromDataURL(stored.URL); err == nil {
			stored.DominantColor = color
		} else {
			g.logger.Debug("no dominant color", "id", stored.ID, "error", err)
		}
	}

	if err := g.media.PutMedia(ctx, &stored); err != nil {
		return nil, fmt.Errorf("storing media: %w", err)
	}
	g.logger.Info("media added", "id", stored.ID, "type", stored.Type, "creator", stored.Creator)
	return &stored, nil
}

// Remove deletes a single media item by ID.
func (g *Gallery) Remove(ctx context.Context, id string) error {
	if err := g.media.DeleteMedia(ctx, id); err != nil {
		return fmt.Errorf("deleting media %s: %w", id, err)
	}
	g.logger.Info("media removed", "id", id)
	return nil
}
