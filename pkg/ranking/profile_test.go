package ranking

import (
	"context"
	"testing"
	"time"

	"github.com/skillfeed/skillfeed/pkg/catalog"
	"github.com/skillfeed/skillfeed/pkg/events"
)

func viewEvent(userID, itemID int64) *events.Event {
	return &events.Event{UserID: userID, Kind: events.KindView, ItemID: ptr(itemID), CreatedAt: time.Now()}
}

func searchEvent(userID int64, keyword string) *events.Event {
	return &events.Event{UserID: userID, Kind: events.KindSearch, Keyword: &keyword, CreatedAt: time.Now()}
}

// TestBuildProfile_AnonymousIsEmpty: nil user short-circuits to an empty
// profile without consulting the event log.
func TestBuildProfile_AnonymousIsEmpty(t *testing.T) {
	r := NewRanker(testLogger(), &fakeItemStore{}, &fakeEventStore{})

	profile, err := r.buildProfile(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !profile.Empty() {
		t.Errorf("expected empty profile, got %+v", profile)
	}
}

// TestBuildProfile_TopThreeWithTieBreak: categories rank by count
// descending, ties broken by text ascending, capped at three.
func TestBuildProfile_TopThreeWithTieBreak(t *testing.T) {
	created := time.Now()
	store := &fakeItemStore{items: []*catalog.Item{
		{ID: 1, Category: "gardening", Active: true, CreatedAt: created},
		{ID: 2, Category: "plumbing", Active: true, CreatedAt: created},
		{ID: 3, Category: "tutoring", Active: true, CreatedAt: created},
		{ID: 4, Category: "cooking", Active: true, CreatedAt: created},
	}}
	eventLog := &fakeEventStore{events: []*events.Event{
		viewEvent(7, 1), viewEvent(7, 1), viewEvent(7, 1),
		// plumbing and tutoring tie at 2; plumbing sorts first alphabetically
		viewEvent(7, 2), viewEvent(7, 2),
		viewEvent(7, 3), viewEvent(7, 3),
		viewEvent(7, 4),
	}}
	r := NewRanker(testLogger(), store, eventLog)

	profile, err := r.buildProfile(context.Background(), ptr(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"gardening", "plumbing", "tutoring"}
	if len(profile.TopCategories) != len(want) {
		t.Fatalf("expected %d categories, got %v", len(want), profile.TopCategories)
	}
	for i, category := range want {
		if profile.TopCategories[i] != category {
			t.Errorf("position %d: expected %q, got %q", i, category, profile.TopCategories[i])
		}
	}
}

// TestBuildProfile_KeywordsNormalized: search keywords are trimmed and
// lower-cased before counting, so case variants merge.
func TestBuildProfile_KeywordsNormalized(t *testing.T) {
	eventLog := &fakeEventStore{events: []*events.Event{
		searchEvent(7, "Gardening"),
		searchEvent(7, "  gardening "),
		searchEvent(7, "GARDENING"),
		searchEvent(7, "plumbing"),
	}}
	r := NewRanker(testLogger(), &fakeItemStore{}, eventLog)

	profile, err := r.buildProfile(context.Background(), ptr(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(profile.TopKeywords) != 2 {
		t.Fatalf("expected 2 keywords, got %v", profile.TopKeywords)
	}
	if profile.TopKeywords[0] != "gardening" || profile.TopKeywords[1] != "plumbing" {
		t.Errorf("expected [gardening plumbing], got %v", profile.TopKeywords)
	}
}

// TestBuildProfile_SkipsMalformedEvents: events with missing references,
// unresolvable items or blank keywords contribute nothing.
func TestBuildProfile_SkipsMalformedEvents(t *testing.T) {
	created := time.Now()
	store := &fakeItemStore{items: []*catalog.Item{
		{ID: 1, Category: "gardening", Active: true, CreatedAt: created},
	}}
	blank := "   "
	eventLog := &fakeEventStore{events: []*events.Event{
		viewEvent(7, 1),
		{UserID: 7, Kind: events.KindView, CreatedAt: created},              // no item reference
		viewEvent(7, 99),                                                    // item no longer exists
		{UserID: 7, Kind: events.KindSearch, CreatedAt: created},            // no keyword
		{UserID: 7, Kind: events.KindSearch, Keyword: &blank, CreatedAt: created},
	}}
	r := NewRanker(testLogger(), store, eventLog)

	profile, err := r.buildProfile(context.Background(), ptr(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(profile.TopCategories) != 1 || profile.TopCategories[0] != "gardening" {
		t.Errorf("expected only [gardening], got %v", profile.TopCategories)
	}
	if len(profile.TopKeywords) != 0 {
		t.Errorf("expected no keywords, got %v", profile.TopKeywords)
	}
}

// TestBuildProfile_UsesRecentEventWindow: the lookup asks the event log
// for at most the fixed number of newest events.
func TestBuildProfile_UsesRecentEventWindow(t *testing.T) {
	eventLog := &fakeEventStore{events: []*events.Event{searchEvent(7, "gardening")}}
	r := NewRanker(testLogger(), &fakeItemStore{}, eventLog)

	if _, err := r.buildProfile(context.Background(), ptr(7)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eventLog.lastLimit != profileEventLimit {
		t.Errorf("expected event window of %d, got %d", profileEventLimit, eventLog.lastLimit)
	}
}

// TestBuildProfile_NoEventsIsCold: an identified user without history
// still gets the cold path.
func TestBuildProfile_NoEventsIsCold(t *testing.T) {
	r := NewRanker(testLogger(), &fakeItemStore{}, &fakeEventStore{})

	profile, err := r.buildProfile(context.Background(), ptr(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !profile.Empty() {
		t.Errorf("expected empty profile, got %+v", profile)
	}
}

// TestTopKeys_OrderAndCap.
func TestTopKeys_OrderAndCap(t *testing.T) {
	counts := map[string]int{"b": 2, "a": 2, "c": 5, "d": 1, "e": 2}

	got := topKeys(counts, 3)
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
