package timer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/toondeboer/pokerkit/go/internal/kvstore"
	"github.com/toondeboer/pokerkit/go/internal/models"
)

const (
	keyEndTimestamp    = "timer.endTimestamp"
	keyDurationSeconds = "timer.durationSeconds"
	keyPaused          = "timer.paused"
	keyTimeLeftSeconds = "timer.timeLeftSeconds"
)

var timerKeys = []string{keyEndTimestamp, keyDurationSeconds, keyPaused, keyTimeLeftSeconds}

// Repository persists the timer record through a key-value store.
type Repository struct {
	store kvstore.Store
}

func NewRepository(store kvstore.Store) *Repository {
	return &Repository{
		store: store,
	}
}

// SaveTimerState writes every field in one bulk write.
func (r *Repository) SaveTimerState(ctx context.Context, rec models.TimerRecord) error {
	endTimestamp := ""
	if rec.EndTimestamp != nil {
		endTimestamp = strconv.FormatInt(rec.EndTimestamp.UnixMilli(), 10)
	}

	if err := r.store.MultiSet(ctx, map[string]string{
		keyEndTimestamp:    endTimestamp,
		keyDurationSeconds: strconv.Itoa(rec.DurationSeconds),
		keyPaused:          strconv.FormatBool(rec.Paused),
		keyTimeLeftSeconds: strconv.Itoa(rec.TimeLeftSeconds),
	}); err != nil {
		return fmt.Errorf("failed to save timer state: %w", err)
	}
	return nil
}

// LoadTimerState reads the record in one bulk read.
// Missing or unparsable fields fall back to defaults; on a read error the
// defaults are returned together with the error.
func (r *Repository) LoadTimerState(ctx context.Context) (models.TimerRecord, error) {
	values, err := r.store.MultiGet(ctx, timerKeys)
	if err != nil {
		return models.DefaultTimerRecord(), fmt.Errorf("failed to load timer state: %w", err)
	}

	rec := models.DefaultTimerRecord()
	if raw := values[keyDurationSeconds]; raw != "" {
		if duration, err := strconv.Atoi(raw); err == nil && duration > 0 {
			rec.DurationSeconds = duration
		}
	}
	rec.TimeLeftSeconds = rec.DurationSeconds
	if raw := values[keyTimeLeftSeconds]; raw != "" {
		if timeLeft, err := strconv.Atoi(raw); err == nil {
			rec.TimeLeftSeconds = timeLeft
		}
	}
	if raw := values[keyPaused]; raw != "" {
		rec.Paused = raw == "true"
	}
	if raw := values[keyEndTimestamp]; raw != "" {
		if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
			end := time.UnixMilli(millis)
			rec.EndTimestamp = &end
		}
	}

	return rec.Normalize(), nil
}

// ClearTimerState removes every timer key.
func (r *Repository) ClearTimerState(ctx context.Context) error {
	if err := r.store.MultiRemove(ctx, timerKeys); err != nil {
		return fmt.Errorf("failed to clear timer state: %w", err)
	}
	return nil
}
