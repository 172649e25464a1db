package tournament

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/toondeboer/pokerkit/go/internal/blinds"
	"github.com/toondeboer/pokerkit/go/internal/kvstore"
	"github.com/toondeboer/pokerkit/go/internal/models"
	"github.com/toondeboer/pokerkit/go/internal/notify"
	"github.com/toondeboer/pokerkit/go/internal/surface"
	"github.com/toondeboer/pokerkit/go/internal/timer"
)

type stack struct {
	engine     *timer.Engine
	clock      *clockwork.FakeClock
	host       *surface.SimulatedHost
	surface    surface.Surface
	notifier   *notify.LocalNotifier
	structure  *blinds.Structure
	controller *Controller
	alarm      *LogAlarm
}

func newStack(t *testing.T, options Options) *stack {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC))
	store := kvstore.NewMemoryStore()

	structure := blinds.NewStructure(store)
	host := surface.NewSimulatedHost()
	surf := surface.Select(surface.Platform{OS: surface.OSIOS, Version: "17.2"}, host)
	notifier := notify.NewLocalNotifier(clock, nil)
	t.Cleanup(notifier.Close)

	engine := timer.New(timer.NewRepository(store), timer.Config{TickInterval: time.Hour, Clock: clock})
	t.Cleanup(engine.Close)
	engine.SetPresence(NewPresence(surf, structure, "Friday Night"))
	engine.SetAlertScheduler(NewAlerts(notify.NewScheduler(notifier, notify.Config{}), structure))

	alarm := &LogAlarm{}
	controller := NewController(engine, structure, alarm, options)
	engine.SetCompletionHandler(controller.HandleCompletion)

	return &stack{
		engine:     engine,
		clock:      clock,
		host:       host,
		surface:    surf,
		notifier:   notifier,
		structure:  structure,
		controller: controller,
		alarm:      alarm,
	}
}

func TestPresence_StartProjectsRunningState(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, Options{})

	if err := s.engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	id := s.surface.ActivityID()
	data, ok := s.host.Data(id)
	if !ok {
		t.Fatalf("expected a live activity")
	}
	end := s.clock.Now().Add(600 * time.Second)
	want := surface.ActivityData{
		TournamentName:    "Friday Night",
		CurrentBlindLevel: 1,
		Current:           models.BlindLevel{Small: 5, Big: 10},
		Next:              models.BlindLevel{Small: 10, Big: 20},
		EndTime:           &end,
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("activity data mismatch (-want +got):\n%s", diff)
	}
	if s.notifier.Pending() != 1 {
		t.Fatalf("expected one pending alert, got %d", s.notifier.Pending())
	}
}

func TestPresence_PauseShowsTimeLeftAndCancelsAlerts(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, Options{})

	if err := s.engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.clock.Advance(100 * time.Second)
	if err := s.engine.Pause(ctx); err != nil {
		t.Fatalf("pause: %v", err)
	}

	data, _ := s.host.Data(s.surface.ActivityID())
	if !data.Paused || data.EndTime != nil || data.TimeLeftSeconds != 500 {
		t.Fatalf("expected paused projection with 500 seconds, got %+v", data)
	}
	if s.notifier.Pending() != 0 {
		t.Fatalf("expected alerts cancelled on pause")
	}
}

func TestPresence_BackgroundExpiryAdvancesBlindsOnSurface(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, Options{Policy: PolicyManual})

	if err := s.engine.Configure(ctx, 60); err != nil {
		t.Fatalf("configure: %v", err)
	}
	s.engine.SetForeground(false)
	if err := s.engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.clock.Advance(61 * time.Second)

	result, err := s.engine.Reconcile(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !result.Expired {
		t.Fatalf("expected expiry")
	}

	if s.structure.Index() != 1 {
		t.Fatalf("expected blinds advanced, got index %d", s.structure.Index())
	}
	if s.alarm.Playing() {
		t.Fatalf("expected no alarm in the background")
	}
	data, _ := s.host.Data(s.surface.ActivityID())
	if data.CurrentBlindLevel != 2 || data.Current != (models.BlindLevel{Small: 10, Big: 20}) {
		t.Fatalf("expected surface to show the new level, got %+v", data)
	}
	if !data.Paused || data.TimeLeftSeconds != 60 {
		t.Fatalf("expected a fresh paused round on the surface, got %+v", data)
	}
}

func TestPresence_ResetEndsSurface(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, Options{})

	if err := s.engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.controller.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if s.surface.ActivityID() != "" || len(s.host.Live()) != 0 {
		t.Fatalf("expected surface ended, live=%v", s.host.Live())
	}
}

func TestAlerts_LastLevelRepeatsCurrentBlinds(t *testing.T) {
	ctx := context.Background()
	structure := blinds.NewStructure(kvstore.NewMemoryStore())
	if err := structure.SetLevels(ctx, []models.BlindLevel{{Small: 50, Big: 100}}); err != nil {
		t.Fatalf("set levels: %v", err)
	}

	alerts := NewAlerts(nil, structure)
	if got := alerts.upcoming(); got != (models.BlindLevel{Small: 50, Big: 100}) {
		t.Fatalf("expected current level on the last round, got %+v", got)
	}
}
