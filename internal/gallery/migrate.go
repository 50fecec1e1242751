// ABOUTME: One-shot import of the legacy "media" slot into the media table
// ABOUTME: Records completion in the media_migrated slot so reruns are no-ops

package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/2389/partycollage/internal/kv"
	"github.com/2389/partycollage/internal/store"
)

// MigratedKey marks the legacy media slot as imported.
const MigratedKey = "media_migrated"

// MigrateResult reports the outcome of MigrateLegacy.
type MigrateResult struct {
	AlreadyDone bool
	Imported    int
	Skipped     int
}

type migrationMarker struct {
	MigratedAt int64 `json:"migratedAt"`
	Imported   int   `json:"imported"`
	Skipped    int   `json:"skipped"`
}

// MigrateLegacy copies every well-formed item from the legacy media slot
// (restoring it from backup if needed) into the media table. The slot itself
// is left in place. Entries that fail to decode, lack an ID, have an unknown
// type, or repeat an earlier ID are skipped. An unreadable slot is an error
// and leaves the marker unset.
func (g *Gallery) MigrateLegacy(ctx context.Context) (MigrateResult, error) {
	if _, done := g.kv.Raw(ctx, MigratedKey); done {
		return MigrateResult{AlreadyDone: true}, nil
	}

	var res MigrateResult
	var entries []json.RawMessage
	raw, err := g.kv.Load(ctx, kv.MediaKey)
	switch {
	case errors.Is(err, kv.ErrAbsent):
	case err != nil:
		// Leave the marker unset so a repaired slot can still be imported
		return res, fmt.Errorf("reading legacy media slot: %w", err)
	default:
		if err := json.Unmarshal(raw, &entries); err != nil {
			return res, fmt.Errorf("legacy media slot is not a list: %w", err)
		}
	}

	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		var item store.MediaItem
		if err := json.Unmarshal(entry, &item); err != nil {
			g.logger.Warn("skipping undecodable legacy item", "error", err)
			res.Skipped++
			continue
		}
		if strings.TrimSpace(item.ID) == "" || !store.IsValidMediaType(item.Type) {
			g.logger.Warn("skipping invalid legacy item", "id", item.ID, "type", item.Type)
			res.Skipped++
			continue
		}
		if _, dup := seen[item.ID]; dup {
			res.Skipped++
			continue
		}
		seen[item.ID] = struct{}{}

		if err := g.media.PutMedia(ctx, &item); err != nil {
			return res, fmt.Errorf("importing legacy item %s: %w", item.ID, err)
		}
		res.Imported++
	}

	marker := migrationMarker{
		MigratedAt: g.now().UnixMilli(),
		Imported:   res.Imported,
		Skipped:    res.Skipped,
	}
	if !g.kv.Save(ctx, MigratedKey, marker) {
		return res, errors.New("recording migration marker")
	}

	g.logger.Info("legacy media imported", "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}
