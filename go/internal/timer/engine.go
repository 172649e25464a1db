package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/toondeboer/pokerkit/go/internal/models"
)

// Config contains runtime options for the Engine.
type Config struct {
	TickInterval time.Duration
	// Clock defaults to the real clock. In tests, a clockwork.FakeClock.
	Clock clockwork.Clock
}

// Engine is the blind timer state machine.
//
// Remaining time is always derived from the absolute end instant, never
// accumulated from ticks, so suspension or throttled ticks cannot make the
// displayed time drift. Transitions are serialized: each one is mutated,
// persisted and mirrored before the next intent is accepted.
type Engine struct {
	mu         sync.Mutex
	repo       TimerRepository
	clock      clockwork.Clock
	options    Config
	presence   Presence
	alerts     AlertScheduler
	onComplete CompletionHandler
	instanceID string

	record     models.TimerRecord
	guard      CompletionGuard
	foreground bool
	events     []chan Event

	tickStop chan struct{}
	loopCtx  context.Context
	cancel   context.CancelFunc
	closed   bool
}

// New creates an Engine holding the default record. Call Reconcile to load
// the persisted one.
func New(repo TimerRepository, options Config) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Clock == nil {
		options.Clock = clockwork.NewRealClock()
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	return &Engine{
		repo:       repo,
		clock:      options.Clock,
		options:    options,
		presence:   noopPresence{},
		alerts:     noopAlerts{},
		instanceID: uuid.New().String()[:8],
		record:     models.DefaultTimerRecord(),
		foreground: true,
		loopCtx:    loopCtx,
		cancel:     cancel,
	}
}

// SetPresence injects the background surface projection.
func (e *Engine) SetPresence(presence Presence) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if presence == nil {
		presence = noopPresence{}
	}
	e.presence = presence
}

// SetAlertScheduler injects the notification scheduler.
func (e *Engine) SetAlertScheduler(alerts AlertScheduler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if alerts == nil {
		alerts = noopAlerts{}
	}
	e.alerts = alerts
}

// SetCompletionHandler registers the single completion callback.
func (e *Engine) SetCompletionHandler(handler CompletionHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onComplete = handler
}

// SetForeground records whether the app is visible. While backgrounded the
// surfaces carry the alert responsibility.
func (e *Engine) SetForeground(foreground bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.foreground = foreground
}

// Subscribe registers a new observer channel.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch
	}
	e.events = append(e.events, ch)
	return ch
}

// Snapshot returns the current state with time left recomputed against now.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Configure sets the round length. In the reset state the time left follows
// the new duration; a round in progress keeps its remaining time.
func (e *Engine) Configure(ctx context.Context, durationSeconds int) error {
	if durationSeconds <= 0 {
		return ErrInvalidDuration
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	wasReset := e.record.IsReset()
	e.record.DurationSeconds = durationSeconds
	if wasReset {
		e.record.TimeLeftSeconds = durationSeconds
	}

	err := e.persistLocked(ctx)
	log.Info().
		Str("engine", e.instanceID).
		Int("duration_seconds", durationSeconds).
		Bool("time_left_updated", wasReset).
		Msg("configured round length")

	e.emitLocked(EventStateChange)
	e.presence.Sync(ctx, e.snapshotLocked(), !e.foreground)
	return err
}

// Start begins a countdown from the reset or paused state.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startLocked(ctx)
}

// Resume is Start from the paused state.
func (e *Engine) Resume(ctx context.Context) error {
	return e.Start(ctx)
}

// Pause freezes the countdown. Pausing a timer that already reached zero
// is an expiry and fires completion instead.
func (e *Engine) Pause(ctx context.Context) error {
	e.mu.Lock()
	if !e.record.IsRunning() {
		e.mu.Unlock()
		log.Debug().Str("engine", e.instanceID).Msg("pause ignored - timer not running")
		return nil
	}

	now := e.clock.Now()
	left := secondsLeft(*e.record.EndTimestamp, now)
	if left == 0 {
		completion, err := e.expireLocked(ctx, now, true)
		e.mu.Unlock()
		e.dispatch(ctx, completion)
		return err
	}
	defer e.mu.Unlock()

	e.stopTickingLocked()
	e.record.Paused = true
	e.record.EndTimestamp = nil
	e.record.TimeLeftSeconds = left

	err := e.persistLocked(ctx)
	e.alerts.Cancel(ctx)
	log.Info().Str("engine", e.instanceID).Int("time_left_seconds", left).Msg("timer paused")

	e.emitLocked(EventStateChange)
	e.presence.Sync(ctx, e.snapshotLocked(), !e.foreground)
	return err
}

// Toggle pauses a running timer and starts any other.
func (e *Engine) Toggle(ctx context.Context) error {
	e.mu.Lock()
	running := e.record.IsRunning()
	e.mu.Unlock()

	if running {
		return e.Pause(ctx)
	}
	return e.Start(ctx)
}

// Reset returns the timer to a full, paused round and ends the surfaces.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopTickingLocked()
	e.record = models.TimerRecord{
		DurationSeconds: e.record.DurationSeconds,
		Paused:          true,
		TimeLeftSeconds: e.record.DurationSeconds,
	}
	e.guard.Clear()

	err := e.persistLocked(ctx)
	e.alerts.Cancel(ctx)
	log.Info().Str("engine", e.instanceID).Int("duration_seconds", e.record.DurationSeconds).Msg("timer reset")

	e.emitLocked(EventStateChange)
	e.presence.End(ctx)
	return err
}

// Reconcile reloads the persisted record and recomputes it against now.
// A running record whose end instant has passed is treated exactly like an
// expiry observed by a tick.
func (e *Engine) Reconcile(ctx context.Context) (Reconciliation, error) {
	e.mu.Lock()

	rec, loadErr := e.repo.LoadTimerState(ctx)
	if loadErr != nil {
		log.Error().Err(loadErr).Str("engine", e.instanceID).Msg("failed to load timer state - keeping in-memory state")
		rec = e.record
	}
	rec = rec.Normalize()

	now := e.clock.Now()
	e.record = rec
	if !rec.IsRunning() {
		e.stopTickingLocked()
		result := Reconciliation{Observed: e.snapshotLocked()}
		e.emitLocked(EventStateChange)
		e.mu.Unlock()
		return result, wrapLoadErr(loadErr)
	}

	left := secondsLeft(*rec.EndTimestamp, now)
	e.record.TimeLeftSeconds = left
	result := Reconciliation{Observed: e.snapshotLocked()}

	if left > 0 {
		e.startTickingLocked()
		e.alerts.Schedule(ctx, time.Duration(left)*time.Second)
		log.Info().
			Str("engine", e.instanceID).
			Int("time_left_seconds", left).
			Msg("reconciled running timer")
		e.emitLocked(EventStateChange)
		e.mu.Unlock()
		return result, wrapLoadErr(loadErr)
	}

	result.Expired = true
	completion, err := e.expireLocked(ctx, now, true)
	e.mu.Unlock()

	e.dispatch(ctx, completion)
	if err == nil {
		err = wrapLoadErr(loadErr)
	}
	return result, err
}

// Sync pushes the current state to the presence surface.
func (e *Engine) Sync(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.presence.Sync(ctx, e.snapshotLocked(), !e.foreground)
}

// Close stops the ticking loop and closes observers.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.stopTickingLocked()
	e.cancel()
	events := e.events
	e.events = nil
	e.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (e *Engine) startLocked(ctx context.Context) error {
	if e.record.IsRunning() {
		log.Debug().Str("engine", e.instanceID).Msg("start ignored - timer already running")
		return nil
	}
	if e.closed {
		log.Warn().Str("engine", e.instanceID).Msg("start ignored - engine closed")
		return nil
	}
	if e.record.TimeLeftSeconds <= 0 {
		e.record.TimeLeftSeconds = e.record.DurationSeconds
	}

	now := e.clock.Now()
	end := now.Add(time.Duration(e.record.TimeLeftSeconds) * time.Second).Truncate(time.Millisecond)
	e.record.EndTimestamp = &end
	e.record.Paused = false
	e.guard.Clear()

	err := e.persistLocked(ctx)
	e.startTickingLocked()
	e.alerts.Schedule(ctx, end.Sub(now))
	log.Info().
		Str("engine", e.instanceID).
		Time("end", end).
		Int("time_left_seconds", e.record.TimeLeftSeconds).
		Msg("timer started")

	e.emitLocked(EventStateChange)
	e.presence.Sync(ctx, e.snapshotLocked(), !e.foreground)
	return err
}

// expireLocked collapses the current run to the reset state. It returns the
// completion to dispatch once the lock is released, or nil when the guard
// already fired for this run.
func (e *Engine) expireLocked(ctx context.Context, now time.Time, lazy bool) (*Completion, error) {
	first := e.guard.TryFire()

	e.stopTickingLocked()
	e.record = models.TimerRecord{
		DurationSeconds: e.record.DurationSeconds,
		Paused:          true,
		TimeLeftSeconds: e.record.DurationSeconds,
	}
	err := e.persistLocked(ctx)

	if e.foreground {
		// the app raises the alarm itself
		e.alerts.Cancel(ctx)
	}

	log.Info().
		Str("engine", e.instanceID).
		Bool("lazy", lazy).
		Bool("foreground", e.foreground).
		Bool("dispatch", first).
		Msg("timer expired")

	e.emitLocked(EventExpired)
	e.presence.Sync(ctx, e.snapshotLocked(), !e.foreground)

	if !first {
		return nil, err
	}
	return &Completion{At: now, Lazy: lazy, Foreground: e.foreground}, err
}

func (e *Engine) dispatch(ctx context.Context, completion *Completion) {
	if completion == nil {
		return
	}
	e.mu.Lock()
	handler := e.onComplete
	e.mu.Unlock()

	if handler != nil {
		handler(ctx, *completion)
	}
}

// tick recomputes the running countdown against now.
func (e *Engine) tick(ctx context.Context) {
	e.mu.Lock()
	completion := e.tickLocked(ctx)
	e.mu.Unlock()
	e.dispatch(ctx, completion)
}

func (e *Engine) tickLocked(ctx context.Context) *Completion {
	if !e.record.IsRunning() {
		return nil
	}

	now := e.clock.Now()
	left := secondsLeft(*e.record.EndTimestamp, now)
	e.record.TimeLeftSeconds = left
	if left > 0 {
		if err := e.persistLocked(ctx); err != nil {
			log.Debug().Err(err).Str("engine", e.instanceID).Msg("tick persisted in memory only")
		}
		e.emitLocked(EventTick)
		return nil
	}

	completion, _ := e.expireLocked(ctx, now, false)
	return completion
}

func (e *Engine) startTickingLocked() {
	e.stopTickingLocked()
	stop := make(chan struct{})
	e.tickStop = stop
	ticker := e.clock.NewTicker(e.options.TickInterval)
	go e.run(ticker, stop)
}

func (e *Engine) stopTickingLocked() {
	if e.tickStop != nil {
		close(e.tickStop)
		e.tickStop = nil
	}
}

func (e *Engine) run(ticker clockwork.Ticker, stop chan struct{}) {
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-e.loopCtx.Done():
			return
		case <-ticker.Chan():
			e.mu.Lock()
			if e.tickStop != stop {
				e.mu.Unlock()
				return
			}
			completion := e.tickLocked(e.loopCtx)
			e.mu.Unlock()
			e.dispatch(e.loopCtx, completion)
		}
	}
}

func (e *Engine) persistLocked(ctx context.Context) error {
	if err := e.repo.SaveTimerState(ctx, e.record.Clone()); err != nil {
		log.Error().Err(err).Str("engine", e.instanceID).Msg("failed to persist timer state - continuing in memory")
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (e *Engine) snapshotLocked() Snapshot {
	rec := e.record.Clone()
	if rec.IsRunning() {
		rec.TimeLeftSeconds = secondsLeft(*rec.EndTimestamp, e.clock.Now())
	}
	return Snapshot{
		Status:          rec.Status(),
		DurationSeconds: rec.DurationSeconds,
		TimeLeftSeconds: rec.TimeLeftSeconds,
		EndTimestamp:    rec.EndTimestamp,
		Paused:          rec.Paused,
	}
}

func (e *Engine) emitLocked(eventType EventType) {
	snap := e.snapshotLocked()
	if eventType == EventExpired {
		snap.Status = models.TimerStatusExpired
	}
	event := Event{Type: eventType, Snapshot: snap, At: e.clock.Now()}
	for _, ch := range e.events {
		select {
		case ch <- event:
		default:
		}
	}
}

// secondsLeft rounds up so a reported zero always means the end instant passed.
func secondsLeft(end, now time.Time) int {
	remaining := end.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

func wrapLoadErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
