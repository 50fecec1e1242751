// ABOUTME: Display ordering and filtering for media items
// ABOUTME: Newest-first by default, plus type, mood, and colour orderings and tag/type filters

package gallery

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/2389/partycollage/internal/store"
)

// Sort criteria accepted by SortBy.
const (
	SortDate  = "date"
	SortType  = "type"
	SortMood  = "mood"
	SortColor = "color"
)

// Type filters accepted by FilterType.
const (
	FilterAll    = "all"
	FilterPhotos = "photos"
	FilterVideos = "videos"
)

// SortNewestFirst orders items by descending timestamp in place.
func SortNewestFirst(items []*store.MediaItem) {
	slices.SortStableFunc(items, func(a, b *store.MediaItem) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}

// SortBy orders items in place by the named criteria. Mood and colour sort
// ascending with items lacking the attribute last.
func SortBy(items []*store.MediaItem, criteria string) error {
	switch criteria {
	case SortDate, "":
		SortNewestFirst(items)
	case SortType:
		slices.SortStableFunc(items, func(a, b *store.MediaItem) int {
			return cmp.Compare(a.Type, b.Type)
		})
	case SortMood:
		slices.SortStableFunc(items, func(a, b *store.MediaItem) int {
			return compareOptional(a.Mood, b.Mood)
		})
	case SortColor:
		slices.SortStableFunc(items, func(a, b *store.MediaItem) int {
			return compareOptional(strings.ToLower(a.DominantColor), strings.ToLower(b.DominantColor))
		})
	default:
		return fmt.Errorf("unknown sort criteria %q", criteria)
	}
	return nil
}

// compareOptional sorts empty strings after everything else.
func compareOptional(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return cmp.Compare(a, b)
}

// FilterType returns the items matching the type filter.
func FilterType(items []*store.MediaItem, filter string) ([]*store.MediaItem, error) {
	var want string
	switch filter {
	case FilterAll, "":
		return items, nil
	case FilterPhotos:
		want = store.MediaTypePhoto
	case FilterVideos:
		want = store.MediaTypeVideo
	default:
		return nil, fmt.Errorf("unknown type filter %q", filter)
	}

	out := make([]*store.MediaItem, 0, len(items))
	for _, item := range items {
		if item.Type == want {
			out = append(out, item)
		}
	}
	return out, nil
}

// FilterTags returns the items carrying every one of tags. Tags compare
// case-insensitively and a leading '#' is ignored.
func FilterTags(items []*store.MediaItem, tags ...string) []*store.MediaItem {
	if len(tags) == 0 {
		return items
	}

	out := make([]*store.MediaItem, 0, len(items))
	for _, item := range items {
		have := make(map[string]struct{}, len(item.Tags))
		for _, tag := range item.Tags {
			have[normalizeTag(tag)] = struct{}{}
		}
		matched := true
		for _, tag := range tags {
			if _, ok := have[normalizeTag(tag)]; !ok {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, item)
		}
	}
	return out
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}
