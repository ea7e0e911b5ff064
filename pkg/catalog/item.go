package catalog

import "time"

// Item is a single listing in the marketplace catalog.
// Only active items are eligible for search and recommendations.
type Item struct {
	ID          int64
	SellerID    int64
	Title       string
	Description string
	Category    string
	Price       float64
	Active      bool
	ImageURL    string
	Address     string
	CityName    string
	// ViewCount is monotonically non-decreasing; it only moves through
	// IncrementViewCount on the store.
	ViewCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}
