// ABOUTME: Demo content for a fresh install: the "Liz" party and five sample items
// ABOUTME: Seeding only runs when no party exists yet

package gallery

import (
	"context"
	"fmt"
	"time"

	"github.com/2389/partycollage/internal/session"
	"github.com/2389/partycollage/internal/store"
)

// Demo party credentials.
const (
	DemoParty    = "Liz"
	DemoPassword = "123"
	demoDays     = 7
)

// DemoContent returns the sample items for the demo party, timestamped
// shortly before now.
func DemoContent(now time.Time) []*store.MediaItem {
	ms := now.UnixMilli()
	item := func(id, typ, url string, ago time.Duration, tags ...string) *store.MediaItem {
		return &store.MediaItem{
			ID:        id,
			Type:      typ,
			URL:       url,
			Timestamp: now.Add(-ago),
			Tags:      tags,
			Creator:   DemoParty,
		}
	}

	return []*store.MediaItem{
		item(fmt.Sprintf("liz-party-%d-1", ms), store.MediaTypePhoto,
			"https://images.unsplash.com/photo-1527529482837-4698179dc6ce",
			100*time.Second, "party", "champagne", "celebration", "friends"),
		item(fmt.Sprintf("liz-party-%d-2", ms), store.MediaTypePhoto,
			"https://images.unsplash.com/photo-1541532713592-79a0317b6b77",
			200*time.Second, "party", "friends", "celebration", "dancing"),
		item(fmt.Sprintf("liz-party-%d-3", ms), store.MediaTypePhoto,
			"https://images.unsplash.com/photo-1504674900247-0877df9cc836",
			300*time.Second, "party", "food", "gourmet", "celebration"),
		item(fmt.Sprintf("liz-party-video-%d-1", ms), store.MediaTypeVideo,
			"https://assets.mixkit.co/videos/preview/mixkit-friends-with-colored-smoke-bombs-4556-large.mp4",
			900*time.Second, "party", "friends", "celebration", "fun"),
		item(fmt.Sprintf("liz-party-video-%d-2", ms), store.MediaTypeVideo,
			"https://assets.mixkit.co/videos/preview/mixkit-group-of-friends-partying-happily-4640-large.mp4",
			1000*time.Second, "party", "dancing", "celebration", "friends"),
	}
}

// SeedResult reports what Seed did.
type SeedResult struct {
	Seeded bool
	Items  int
}

// Seed creates the demo party and its content when no party exists yet.
func (g *Gallery) Seed(ctx context.Context) (SeedResult, error) {
	if len(g.sessions.Parties(ctx)) > 0 {
		g.logger.Debug("parties exist, skipping demo seed")
		return SeedResult{}, nil
	}

	party, err := g.sessions.RegisterParty(ctx, DemoParty, DemoPassword, session.WithExpiresInDays(demoDays))
	if err != nil {
		return SeedResult{}, fmt.Errorf("registering demo party: %w", err)
	}

	res := SeedResult{Seeded: true}
	for _, item := range DemoContent(party.CreatedAt) {
		if err := g.media.PutMedia(ctx, item); err != nil {
			return res, fmt.Errorf("storing demo media %s: %w", item.ID, err)
		}
		res.Items++
	}

	g.logger.Info("seeded demo party", "party", party.Name, "items", res.Items)
	return res, nil
}
