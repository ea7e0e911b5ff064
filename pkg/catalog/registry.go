package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"

	"github.com/skillfeed/skillfeed/pkg/events"
	"github.com/skillfeed/skillfeed/pkg/lib"
)

// ErrNotFound is used both for missing items and for items the caller
// does not own, so ownership cannot be probed.
var ErrNotFound = errors.New("item not found")

const (
	defaultSearchPageSize = 20
	maxSearchPageSize     = 50
	defaultSuggestLimit   = 10
)

type itemStore interface {
	Insert(ctx context.Context, item *Item) (int64, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	ListActive(ctx context.Context) ([]*Item, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]*Item, error)
	SearchActive(ctx context.Context, q StoreQuery) ([]*Item, int, error)
	IncrementViewCount(ctx context.Context, id int64) error
}

type eventRecorder interface {
	RecordAsync(userID int64, kind events.Kind, itemID *int64, keyword string)
}

// StoreQuery is the storage-level filter for paged catalog search.
type StoreQuery struct {
	Keyword  string
	Category string
	Offset   int
	Limit    int
}

// Registry owns catalog item management: CRUD, paged search and the
// interaction side effects (view counting, event recording) those
// operations produce.
type Registry struct {
	store    itemStore
	recorder eventRecorder
	logger   *zerolog.Logger
}

func NewRegistry(logger *zerolog.Logger, store itemStore, recorder eventRecorder) *Registry {
	return &Registry{
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
}

type CreateRequest struct {
	SellerID    int64   `validate:"required"`
	Title       string  `validate:"required,max=100"`
	Description string  `validate:"max=2000"`
	Category    string  `validate:"required,max=50"`
	Price       float64 `validate:"gte=0"`
	ImageURL    string  `validate:"omitempty,url"`
	Address     string  `validate:"max=200"`
	CityName    string  `validate:"max=100"`
}

func (r *Registry) Create(ctx context.Context, req CreateRequest) (*Item, error) {
	if err := lib.ValidateStruct(&req); err != nil {
		return nil, fmt.Errorf("validate item: %w", err)
	}

	now := time.Now()
	item := &Item{
		SellerID:    req.SellerID,
		Title:       lib.NormalizeText(req.Title),
		Description: lib.NormalizeText(req.Description),
		Category:    lib.NormalizeText(req.Category),
		Price:       req.Price,
		Active:      true,
		ImageURL:    req.ImageURL,
		Address:     req.Address,
		CityName:    req.CityName,
		ViewCount:   0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := r.store.Insert(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	item.ID = id

	return item, nil
}

type UpdateRequest struct {
	ID          int64   `validate:"required"`
	SellerID    int64   `validate:"required"`
	Title       string  `validate:"required,max=100"`
	Description string  `validate:"max=2000"`
	Category    string  `validate:"required,max=50"`
	Price       float64 `validate:"gte=0"`
	ImageURL    string  `validate:"omitempty,url"`
	Address     string  `validate:"max=200"`
	CityName    string  `validate:"max=100"`
}

// Update replaces the seller-editable fields of an owned item. When
// nothing changed the stored row is left untouched.
func (r *Registry) Update(ctx context.Context, req UpdateRequest) (*Item, error) {
	if err := lib.ValidateStruct(&req); err != nil {
		return nil, fmt.Errorf("validate item: %w", err)
	}

	item, err := r.ownedItem(ctx, req.ID, req.SellerID)
	if err != nil {
		return nil, err
	}

	title := lib.NormalizeText(req.Title)
	description := lib.NormalizeText(req.Description)
	category := lib.NormalizeText(req.Category)

	unchanged := item.Title == title &&
		item.Description == description &&
		item.Category == category &&
		item.Price == req.Price &&
		item.ImageURL == req.ImageURL &&
		item.Address == req.Address &&
		item.CityName == req.CityName
	if unchanged {
		return item, nil
	}

	item.Title = title
	item.Description = description
	item.Category = category
	item.Price = req.Price
	item.ImageURL = req.ImageURL
	item.Address = req.Address
	item.CityName = req.CityName
	item.UpdatedAt = time.Now()

	if err := r.store.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	return item, nil
}

// SetStatus toggles the active flag of an owned item. Setting the
// current status is a no-op.
func (r *Registry) SetStatus(ctx context.Context, id, sellerID int64, active bool) error {
	item, err := r.ownedItem(ctx, id, sellerID)
	if err != nil {
		return err
	}

	if item.Active == active {
		return nil
	}

	item.Active = active
	item.UpdatedAt = time.Now()

	if err := r.store.Update(ctx, item); err != nil {
		return fmt.Errorf("update item status: %w", err)
	}

	return nil
}

func (r *Registry) Remove(ctx context.Context, id, sellerID int64) error {
	if _, err := r.ownedItem(ctx, id, sellerID); err != nil {
		return err
	}

	if err := r.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	return nil
}

// Get returns one item by ID. The view counter is bumped best-effort,
// and identified viewers leave a view event behind for ranking.
func (r *Registry) Get(ctx context.Context, id int64, viewerID *int64) (*Item, error) {
	item, err := r.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	if err := r.store.IncrementViewCount(ctx, id); err != nil {
		r.logger.Warn().Err(err).Int64("item_id", id).Msg("Failed to bump view count")
	}

	if viewerID != nil {
		r.recorder.RecordAsync(*viewerID, events.KindView, &item.ID, "")
	}

	return item, nil
}

func (r *Registry) ListMine(ctx context.Context, sellerID int64) ([]*Item, error) {
	items, err := r.store.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller items: %w", err)
	}
	return items, nil
}

type SearchRequest struct {
	Keyword  string
	Category string
	Page     int
	PageSize int
	// ViewerID, when set, records the search as an interaction event.
	ViewerID *int64
}

type SearchResult struct {
	Items    []*Item
	Total    int
	Page     int
	PageSize int
}

// Search pages through active items filtered by keyword (title or
// description) and category, newest first.
func (r *Registry) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultSearchPageSize
	}
	if pageSize > maxSearchPageSize {
		pageSize = maxSearchPageSize
	}

	keyword := lib.NormalizeText(req.Keyword)
	category := lib.NormalizeText(req.Category)

	items, total, err := r.store.SearchActive(ctx, StoreQuery{
		Keyword:  keyword,
		Category: category,
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}

	if req.ViewerID != nil && keyword != "" {
		r.recorder.RecordAsync(*req.ViewerID, events.KindSearch, nil, keyword)
	}

	return &SearchResult{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Suggest returns fuzzy-ranked completions for the search box, drawn
// from the categories and titles of active items.
func (r *Registry) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	q := lib.NormalizeKeyword(query)
	if q == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	active, err := r.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active items: %w", err)
	}

	seen := make(map[string]bool)
	candidates := make([]string, 0, len(active)*2)
	for _, item := range active {
		for _, c := range []string{lib.NormalizeText(item.Category), lib.NormalizeText(item.Title)} {
			if c == "" || seen[c] {
				continue
			}
			seen[c] = true
			candidates = append(candidates, c)
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(q, candidates)
	sort.Sort(ranks)

	out := make([]string, 0, limit)
	for _, rank := range ranks {
		if len(out) == limit {
			break
		}
		out = append(out, rank.Target)
	}

	return out, nil
}

func (r *Registry) ownedItem(ctx context.Context, id, sellerID int64) (*Item, error) {
	item, err := r.store.GetByID(ctx, id)
	if err != nil || item.SellerID != sellerID {
		return nil, ErrNotFound
	}
	return item, nil
}
