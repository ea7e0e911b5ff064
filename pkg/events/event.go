package events

import "time"

// Kind is the interaction event type.
type Kind string

const (
	KindView     Kind = "view"
	KindSearch   Kind = "search"
	KindFavorite Kind = "favorite"
)

// Valid reports whether the kind is one of the recognized event types.
func (k Kind) Valid() bool {
	switch k {
	case KindView, KindSearch, KindFavorite:
		return true
	}
	return false
}

// Event is a single user interaction record.
// ItemID is set for view/favorite events, Keyword for search events.
// Events with a different field shape are tolerated downstream and
// simply contribute no ranking signal.
type Event struct {
	ID        int64
	UserID    int64
	Kind      Kind
	ItemID    *int64
	Keyword   *string
	CreatedAt time.Time
}
