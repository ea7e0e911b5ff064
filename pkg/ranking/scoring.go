package ranking

import (
	"math"
	"slices"
	"strings"

	"github.com/skillfeed/skillfeed/pkg/catalog"
	"github.com/skillfeed/skillfeed/pkg/lib"
)

// Cold requests lean on popularity since there is no personalization
// signal; warm requests weight topical relevance above popularity.
const (
	coldHotnessWeight   = 0.6
	coldFreshnessWeight = 0.4

	warmCategoryWeight  = 0.5
	warmHotnessWeight   = 0.3
	warmFreshnessWeight = 0.2

	keywordMatchSignal = 0.8
)

// candidateStats holds per-request aggregates precomputed once over the
// full active candidate set.
type candidateStats struct {
	maxViewCount int
	newestEpoch  int64
	oldestEpoch  int64
}

func collectStats(items []*catalog.Item) candidateStats {
	stats := candidateStats{
		newestEpoch: math.MinInt64,
		oldestEpoch: math.MaxInt64,
	}

	for _, item := range items {
		epoch := item.CreatedAt.UnixMilli()
		if epoch > stats.newestEpoch {
			stats.newestEpoch = epoch
		}
		if epoch < stats.oldestEpoch {
			stats.oldestEpoch = epoch
		}
		if vc := safeViewCount(item); vc > stats.maxViewCount {
			stats.maxViewCount = vc
		}
	}

	if stats.newestEpoch == math.MinInt64 {
		stats.newestEpoch = 0
	}
	if stats.oldestEpoch == math.MaxInt64 {
		stats.oldestEpoch = 0
	}

	return stats
}

// scoreCandidates scores every active item. On the warm path candidates
// are first narrowed to category/keyword matches; when that leaves fewer
// than minRecallSize entries, the remaining candidates are scored with
// the same formula and appended so pagination cannot dead-end on a
// narrow profile. The caller imposes the final order.
func scoreCandidates(items []*catalog.Item, profile Profile) []ScoredItem {
	warm := !profile.Empty()
	stats := collectStats(items)

	included := make(map[int64]bool, len(items))
	scored := make([]ScoredItem, 0, len(items))

	for _, item := range items {
		categoryMatch := matchesCategory(profile.TopCategories, item)
		keywordMatch := matchesKeyword(profile.TopKeywords, item)
		if warm && !(categoryMatch || keywordMatch) {
			continue
		}
		scored = append(scored, scoreOne(item, warm, categoryMatch, keywordMatch, stats))
		included[item.ID] = true
	}

	if warm && len(scored) < minRecallSize {
		for _, item := range items {
			if included[item.ID] {
				continue
			}
			categoryMatch := matchesCategory(profile.TopCategories, item)
			keywordMatch := matchesKeyword(profile.TopKeywords, item)
			scored = append(scored, scoreOne(item, true, categoryMatch, keywordMatch, stats))
		}
	}

	return scored
}

func scoreOne(item *catalog.Item, warm, categoryMatch, keywordMatch bool, stats candidateStats) ScoredItem {
	var hotness float64
	if stats.maxViewCount > 0 {
		hotness = float64(safeViewCount(item)) / float64(stats.maxViewCount)
	}

	createdEpoch := item.CreatedAt.UnixMilli()
	freshness := 1.0
	if stats.newestEpoch > stats.oldestEpoch {
		freshness = float64(createdEpoch-stats.oldestEpoch) / float64(stats.newestEpoch-stats.oldestEpoch)
		freshness = clamp01(freshness)
	}

	var score float64
	if !warm {
		score = coldHotnessWeight*hotness + coldFreshnessWeight*freshness
	} else {
		var categorySignal float64
		switch {
		case categoryMatch:
			categorySignal = 1.0
		case keywordMatch:
			categorySignal = keywordMatchSignal
		}
		score = warmCategoryWeight*categorySignal + warmHotnessWeight*hotness + warmFreshnessWeight*freshness
	}

	return ScoredItem{
		Item:         item,
		Score:        score,
		CreatedEpoch: createdEpoch,
	}
}

func matchesCategory(categories []string, item *catalog.Item) bool {
	target := lib.NormalizeText(item.Category)
	if target == "" {
		return false
	}
	return slices.Contains(categories, target)
}

func matchesKeyword(keywords []string, item *catalog.Item) bool {
	if len(keywords) == 0 {
		return false
	}

	title := lib.NormalizeKeyword(item.Title)
	desc := lib.NormalizeKeyword(item.Description)

	for _, raw := range keywords {
		keyword := lib.NormalizeKeyword(raw)
		if keyword == "" {
			continue
		}
		if strings.Contains(title, keyword) || strings.Contains(desc, keyword) {
			return true
		}
	}
	return false
}

func safeViewCount(item *catalog.Item) int {
	if item.ViewCount < 0 {
		return 0
	}
	return item.ViewCount
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
