package timer

import (
	"context"
	"errors"
	"time"

	"github.com/toondeboer/pokerkit/go/internal/models"
)

var (
	// ErrInvalidDuration is returned when a round length is not positive.
	ErrInvalidDuration = errors.New("duration must be greater than 0")
	// ErrPersistence wraps storage failures. The transition that produced it is still applied in memory.
	ErrPersistence = errors.New("timer persistence failed")
)

// EventType defines the type of engine event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventTick        EventType = "tick"
	EventExpired     EventType = "expired"
)

// Event represents an engine update for observers.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	At       time.Time
}

// Snapshot is a read-only view of the engine.
type Snapshot struct {
	Status          models.TimerStatus
	DurationSeconds int
	TimeLeftSeconds int
	EndTimestamp    *time.Time
	Paused          bool
}

// Reconciliation reports what Reconcile found in storage.
type Reconciliation struct {
	// Observed is the state recomputed against now, before any expiry collapsed it to reset.
	Observed Snapshot
	Expired  bool
}

// Presence mirrors the engine onto background surfaces.
type Presence interface {
	Sync(ctx context.Context, snap Snapshot, alertOnExpiry bool)
	End(ctx context.Context)
}

// AlertScheduler schedules the best-effort expiry alerts for the running round.
type AlertScheduler interface {
	Schedule(ctx context.Context, in time.Duration)
	Cancel(ctx context.Context)
}

// TimerRepository defines what the engine needs from storage.
type TimerRepository interface {
	SaveTimerState(ctx context.Context, rec models.TimerRecord) error
	LoadTimerState(ctx context.Context) (models.TimerRecord, error)
}

type noopPresence struct{}

func (noopPresence) Sync(context.Context, Snapshot, bool) {}
func (noopPresence) End(context.Context)                  {}

type noopAlerts struct{}

func (noopAlerts) Schedule(context.Context, time.Duration) {}
func (noopAlerts) Cancel(context.Context)                  {}
