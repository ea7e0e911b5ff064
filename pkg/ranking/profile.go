package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/skillfeed/skillfeed/pkg/catalog"
	"github.com/skillfeed/skillfeed/pkg/events"
	"github.com/skillfeed/skillfeed/pkg/lib"
)

const topInterestCount = 3

// Profile is a short-lived interest summary built from a user's most
// recent interaction events. It is constructed per request and discarded
// with the response.
type Profile struct {
	TopCategories []string
	TopKeywords   []string
}

// Empty reports whether the profile carries no personalization signal,
// which selects the cold scoring path.
func (p Profile) Empty() bool {
	return len(p.TopCategories) == 0 && len(p.TopKeywords) == 0
}

// buildProfile derives the interest profile from the user's newest
// events. Anonymous callers short-circuit to an empty profile without
// touching the event log. View/favorite events vote for the category of
// the item they reference; search events vote for their keyword. Events
// whose item cannot be resolved, or with a blank keyword, contribute
// nothing.
func (r *Ranker) buildProfile(ctx context.Context, userID *int64) (Profile, error) {
	if userID == nil {
		return Profile{}, nil
	}

	recent, err := r.events.ListRecentByUser(ctx, *userID, profileEventLimit)
	if err != nil {
		return Profile{}, fmt.Errorf("list recent events: %w", err)
	}
	if len(recent) == 0 {
		return Profile{}, nil
	}

	itemsByID, err := r.resolveEventItems(ctx, recent)
	if err != nil {
		return Profile{}, err
	}

	categoryCounts := make(map[string]int)
	keywordCounts := make(map[string]int)

	for _, ev := range recent {
		switch events.Kind(lib.NormalizeKeyword(string(ev.Kind))) {
		case events.KindView, events.KindFavorite:
			if ev.ItemID == nil {
				continue
			}
			item := itemsByID[*ev.ItemID]
			if item == nil {
				continue
			}
			if category := lib.NormalizeText(item.Category); category != "" {
				categoryCounts[category]++
			}
		case events.KindSearch:
			if ev.Keyword == nil {
				continue
			}
			if keyword := lib.NormalizeKeyword(*ev.Keyword); keyword != "" {
				keywordCounts[keyword]++
			}
		}
	}

	return Profile{
		TopCategories: topKeys(categoryCounts, topInterestCount),
		TopKeywords:   topKeys(keywordCounts, topInterestCount),
	}, nil
}

func (r *Ranker) resolveEventItems(ctx context.Context, recent []*events.Event) (map[int64]*catalog.Item, error) {
	seen := make(map[int64]bool)
	ids := make([]int64, 0, len(recent))
	for _, ev := range recent {
		if ev.ItemID == nil || seen[*ev.ItemID] {
			continue
		}
		seen[*ev.ItemID] = true
		ids = append(ids, *ev.ItemID)
	}
	if len(ids) == 0 {
		return map[int64]*catalog.Item{}, nil
	}

	itemsByID, err := r.items.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve event items: %w", err)
	}
	return itemsByID, nil
}

// topKeys picks the most frequent keys, count descending with ties
// broken by key text ascending.
func topKeys(counts map[string]int, limit int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}
