package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/toondeboer/pokerkit/go/internal/blinds"
	"github.com/toondeboer/pokerkit/go/internal/config"
	"github.com/toondeboer/pokerkit/go/internal/kvstore"
	"github.com/toondeboer/pokerkit/go/internal/lifecycle"
	"github.com/toondeboer/pokerkit/go/internal/models"
	"github.com/toondeboer/pokerkit/go/internal/notify"
	"github.com/toondeboer/pokerkit/go/internal/surface"
	"github.com/toondeboer/pokerkit/go/internal/timer"
	"github.com/toondeboer/pokerkit/go/internal/tournament"
)

type Services struct {
	Store      kvstore.Store
	Engine     *timer.Engine
	Blinds     *blinds.Structure
	Host       *surface.SimulatedHost
	Surface    surface.Surface
	Notifier   *notify.LocalNotifier
	Controller *tournament.Controller
	Lifecycle  *lifecycle.Reconciler
	Alarm      *tournament.LogAlarm
}

func setupServices(ctx context.Context, cfg config.Config, store kvstore.Store, clock clockwork.Clock) (*Services, error) {
	// Wire up dependency injection chain
	// Store → Repository/Structure → Engine → Presence/Alerts → Controller → Lifecycle

	// Blinds
	structure := blinds.NewStructure(store)
	if err := structure.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("using default blind structure")
	}
	levels, err := cfg.BlindLevels()
	if err != nil {
		return nil, fmt.Errorf("failed to load blind structure: %w", err)
	}
	if levels != nil && !slices.Equal(levels, structure.Levels()) {
		if err := structure.SetLevels(ctx, levels); err != nil {
			log.Warn().Err(err).Msg("blind structure from file kept in memory only")
		}
	}

	// Background surface
	platform := cfg.Platform()
	var hostOpts []surface.SimulatedHostOption
	if platform.OS == surface.OSAndroid {
		hostOpts = append(hostOpts, surface.WithFixedID(surface.ForegroundServiceID))
	}
	host := surface.NewSimulatedHost(hostOpts...)
	surf := surface.Select(platform, host)

	// Notifications
	notifier := notify.NewLocalNotifier(clock, notify.SinkFunc(func(_ context.Context, id string, alert notify.Alert) {
		log.Warn().
			Str("alert_id", id).
			Int("repeat", alert.Repeat).
			Str("title", alert.Title).
			Msg(alert.Body)
	}))
	scheduler := notify.NewScheduler(notifier, cfg.Notify())

	// Timer
	repo := timer.NewRepository(store)
	engine := timer.New(repo, timer.Config{TickInterval: cfg.TickInterval, Clock: clock})
	engine.SetPresence(tournament.NewPresence(surf, structure, cfg.TournamentName))
	engine.SetAlertScheduler(tournament.NewAlerts(scheduler, structure))

	// Tournament
	alarm := &tournament.LogAlarm{}
	controller := tournament.NewController(engine, structure, alarm, cfg.Tournament())
	engine.SetCompletionHandler(controller.HandleCompletion)

	return &Services{
		Store:      store,
		Engine:     engine,
		Blinds:     structure,
		Host:       host,
		Surface:    surf,
		Notifier:   notifier,
		Controller: controller,
		Lifecycle:  lifecycle.New(engine, surf, controller),
		Alarm:      alarm,
	}, nil
}

// start reconciles the stored timer and applies the configured round length
// to a timer that was never configured.
func (s *Services) start(ctx context.Context, cfg config.Config) error {
	if err := s.Lifecycle.Start(ctx); err != nil {
		log.Warn().Err(err).Msg("starting from default timer state")
	}

	snap := s.Engine.Snapshot()
	if snap.Status == models.TimerStatusReset &&
		snap.DurationSeconds == models.DefaultTimerDurationSeconds &&
		cfg.DefaultDurationSeconds != snap.DurationSeconds {
		return s.Engine.Configure(ctx, cfg.DefaultDurationSeconds)
	}
	return nil
}

func (s *Services) Close() {
	s.Engine.Close()
	s.Notifier.Close()
	if err := s.Store.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close state store")
	}
}
