package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/rs/zerolog"

	"github.com/skillfeed/skillfeed/pkg/lib"
)

const (
	recorderConcurrency = 4
	recordTimeout       = 5 * time.Second
)

// ErrInvalidKind is returned when an event kind is not view/search/favorite.
var ErrInvalidKind = errors.New("event kind must be view, search or favorite")

type eventStore interface {
	Insert(ctx context.Context, ev *Event) error
}

// Recorder validates and persists interaction events. Asynchronous writes
// go through a bounded worker pool so request handling never blocks on
// the event log.
type Recorder struct {
	store  eventStore
	pool   pond.Pool
	logger *zerolog.Logger
}

func NewRecorder(logger *zerolog.Logger, store eventStore) *Recorder {
	return &Recorder{
		store:  store,
		pool:   pond.NewPool(recorderConcurrency),
		logger: logger,
	}
}

// Record validates and synchronously persists one event. The keyword is
// trimmed; a blank keyword is stored as absent.
func (r *Recorder) Record(ctx context.Context, userID int64, kind Kind, itemID *int64, keyword string) error {
	normalized := Kind(lib.NormalizeKeyword(string(kind)))
	if !normalized.Valid() {
		return ErrInvalidKind
	}

	var keywordPtr *string
	if trimmed := lib.NormalizeText(keyword); trimmed != "" {
		keywordPtr = &trimmed
	}

	ev := &Event{
		UserID:    userID,
		Kind:      normalized,
		ItemID:    itemID,
		Keyword:   keywordPtr,
		CreatedAt: time.Now(),
	}

	if err := r.store.Insert(ctx, ev); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	return nil
}

// RecordAsync persists the event on the worker pool. Failures are logged
// and dropped; interaction tracking is best-effort.
func (r *Recorder) RecordAsync(userID int64, kind Kind, itemID *int64, keyword string) {
	r.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := r.Record(ctx, userID, kind, itemID, keyword); err != nil {
			r.logger.Warn().
				Err(err).
				Int64("user_id", userID).
				Str("kind", string(kind)).
				Msg("Failed to record interaction event")
		}
	})
}

// Close drains pending event writes.
func (r *Recorder) Close() {
	r.pool.StopAndWait()
}
