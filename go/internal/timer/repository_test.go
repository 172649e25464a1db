package timer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/toondeboer/pokerkit/go/internal/kvstore"
	"github.com/toondeboer/pokerkit/go/internal/models"
)

func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	end := testEpoch.Add(95 * time.Second)

	tests := []struct {
		name string
		rec  models.TimerRecord
	}{
		{name: "default", rec: models.DefaultTimerRecord()},
		{name: "paused mid round", rec: models.TimerRecord{DurationSeconds: 600, Paused: true, TimeLeftSeconds: 450}},
		{name: "paused longer than duration", rec: models.TimerRecord{DurationSeconds: 300, Paused: true, TimeLeftSeconds: 450}},
		{name: "running", rec: models.TimerRecord{DurationSeconds: 120, EndTimestamp: &end, TimeLeftSeconds: 95}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewRepository(kvstore.NewMemoryStore())
			if err := repo.SaveTimerState(ctx, tt.rec); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := repo.LoadTimerState(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if diff := cmp.Diff(tt.rec, got); diff != "" {
				t.Fatalf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepository_EmptyStoreLoadsDefaults(t *testing.T) {
	repo := NewRepository(kvstore.NewMemoryStore())
	got, err := repo.LoadTimerState(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(models.DefaultTimerRecord(), got); diff != "" {
		t.Fatalf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestRepository_ReadFailureReturnsDefaults(t *testing.T) {
	store := kvstore.NewMemoryStore()
	cause := errors.New("storage unavailable")
	store.FailWith(cause)

	got, err := NewRepository(store).LoadTimerState(context.Background())
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if diff := cmp.Diff(models.DefaultTimerRecord(), got); diff != "" {
		t.Fatalf("expected defaults alongside the error (-want +got):\n%s", diff)
	}
}

func TestRepository_RepairsInconsistentRecords(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	if err := store.MultiSet(ctx, map[string]string{
		keyDurationSeconds: "-3",
		keyPaused:          "false",
		keyEndTimestamp:    "not-a-number",
		keyTimeLeftSeconds: "-20",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := NewRepository(store).LoadTimerState(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := models.TimerRecord{DurationSeconds: models.DefaultTimerDurationSeconds, Paused: true, TimeLeftSeconds: 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_Clear(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kvstore.NewMemoryStore())
	if err := repo.SaveTimerState(ctx, models.TimerRecord{DurationSeconds: 42, Paused: true, TimeLeftSeconds: 7}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.ClearTimerState(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err := repo.LoadTimerState(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(models.DefaultTimerRecord(), got); diff != "" {
		t.Fatalf("expected defaults after clear (-want +got):\n%s", diff)
	}
}
