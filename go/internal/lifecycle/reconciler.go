package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/toondeboer/pokerkit/go/internal/surface"
	"github.com/toondeboer/pokerkit/go/internal/timer"
)

// AppState is the host's visibility state.
type AppState string

const (
	StateActive     AppState = "active"
	StateInactive   AppState = "inactive"
	StateBackground AppState = "background"
)

func ParseAppState(value string) (AppState, error) {
	switch state := AppState(value); state {
	case StateActive, StateInactive, StateBackground:
		return state, nil
	default:
		return "", fmt.Errorf("unknown app state %q", value)
	}
}

// Engine is what the reconciler needs from the timer engine.
type Engine interface {
	SetForeground(foreground bool)
	Reconcile(ctx context.Context) (timer.Reconciliation, error)
	Sync(ctx context.Context)
}

// BackgroundListener is told when the app leaves the foreground.
type BackgroundListener interface {
	OnBackground(ctx context.Context)
}

// Reconciler resyncs the engine and the background surface whenever the
// app comes back to the foreground.
type Reconciler struct {
	mu        sync.Mutex
	engine    Engine
	surface   surface.Surface
	listeners []BackgroundListener
	state     AppState
}

func New(engine Engine, s surface.Surface, listeners ...BackgroundListener) *Reconciler {
	return &Reconciler{
		engine:    engine,
		surface:   s,
		listeners: listeners,
		state:     StateActive,
	}
}

// Start reconciles once on cold start.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateActive
	return r.foregroundLocked(ctx)
}

// State returns the last observed app state.
func (r *Reconciler) State() AppState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// HandleAppStateChange applies a visibility transition.
func (r *Reconciler) HandleAppStateChange(ctx context.Context, next AppState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.state
	r.state = next
	log.Debug().Str("from", string(prev)).Str("to", string(next)).Msg("app state changed")

	switch {
	case next == StateActive && prev != StateActive:
		return r.foregroundLocked(ctx)
	case next == StateBackground && prev != StateBackground:
		r.engine.SetForeground(false)
		for _, listener := range r.listeners {
			listener.OnBackground(ctx)
		}
		// the surface now carries the alert
		r.engine.Sync(ctx)
		log.Info().Msg("app backgrounded")
	}
	return nil
}

func (r *Reconciler) foregroundLocked(ctx context.Context) error {
	r.engine.SetForeground(true)
	r.surface.SyncActivityState(ctx)

	result, err := r.engine.Reconcile(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reconcile on foreground degraded")
	}
	r.engine.Sync(ctx)

	log.Info().
		Str("status", string(result.Observed.Status)).
		Int("time_left_seconds", result.Observed.TimeLeftSeconds).
		Bool("expired", result.Expired).
		Str("activity_id", r.surface.ActivityID()).
		Msg("app foregrounded - timer reconciled")
	return err
}
