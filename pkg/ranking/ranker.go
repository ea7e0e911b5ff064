package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/skillfeed/skillfeed/pkg/catalog"
	"github.com/skillfeed/skillfeed/pkg/events"
)

const (
	defaultPageSize   = 20
	maxPageSize       = 50
	minRecallSize     = 20
	profileEventLimit = 50
)

type itemStore interface {
	ListActive(ctx context.Context) ([]*catalog.Item, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*catalog.Item, error)
}

type eventStore interface {
	ListRecentByUser(ctx context.Context, userID int64, limit int) ([]*events.Event, error)
}

// Ranker computes the personalized recommendation feed. Every call reads
// its own snapshot of active items and recent events and computes entirely
// in memory; no state is shared between calls.
type Ranker struct {
	items  itemStore
	events eventStore
	logger *zerolog.Logger
}

func NewRanker(logger *zerolog.Logger, items itemStore, events eventStore) *Ranker {
	return &Ranker{
		items:  items,
		events: events,
		logger: logger,
	}
}

// Request carries the caller-supplied ranking inputs. UserID is nil for
// anonymous callers. Cursor is the opaque continuation token from a
// previous response, or empty to start from the top.
type Request struct {
	UserID   *int64
	Cursor   string
	PageSize int
}

// ScoredItem is one ranked feed entry. Score is always within [0,1].
type ScoredItem struct {
	Item         *catalog.Item
	Score        float64
	CreatedEpoch int64
}

// Response is one page of the ranked feed. NextCursor is empty on the
// last page.
type Response struct {
	Items      []ScoredItem
	NextCursor string
}

// Rank scores every active item against the caller's interest profile
// (or a hot+fresh blend for anonymous/cold callers) and returns the page
// addressed by the request cursor.
func (r *Ranker) Rank(ctx context.Context, req Request) (*Response, error) {
	pageSize := normalizePageSize(req.PageSize)

	var (
		active  []*catalog.Item
		profile Profile
	)

	// The item and event snapshots are independent reads, so take them
	// concurrently. Either failing fails the whole request.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := r.items.ListActive(gctx)
		if err != nil {
			return fmt.Errorf("list active items: %w", err)
		}
		active = res
		return nil
	})
	g.Go(func() error {
		res, err := r.buildProfile(gctx, req.UserID)
		if err != nil {
			return fmt.Errorf("build interest profile: %w", err)
		}
		profile = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load ranking snapshot: %w", err)
	}

	if len(active) == 0 {
		return &Response{Items: []ScoredItem{}}, nil
	}

	if req.UserID != nil {
		r.logger.Info().
			Int64("user_id", *req.UserID).
			Strs("categories", profile.TopCategories).
			Strs("keywords", profile.TopKeywords).
			Msg("Ranking with interest profile")
	} else {
		r.logger.Info().Msg("Guest ranking, falling back to hot+fresh blend")
	}

	scored := scoreCandidates(active, profile)

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.CreatedEpoch != b.CreatedEpoch {
			return a.CreatedEpoch > b.CreatedEpoch
		}
		return a.Item.ID > b.Item.ID
	})

	if key, ok := parseCursor(req.Cursor); ok {
		kept := make([]ScoredItem, 0, len(scored))
		for _, s := range scored {
			if key.isAfter(s) {
				kept = append(kept, s)
			}
		}
		scored = kept
	}

	end := pageSize
	if end > len(scored) {
		end = len(scored)
	}
	page := scored[:end]

	resp := &Response{Items: page}
	if len(scored) > end && end > 0 {
		resp.NextCursor = encodeCursor(page[end-1])
	}

	return resp, nil
}

func normalizePageSize(size int) int {
	if size <= 0 {
		return defaultPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}
