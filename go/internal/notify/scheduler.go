package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/toondeboer/pokerkit/go/internal/models"
)

// Config controls the repeated alerts that approximate a continuous alarm
// on hosts that cannot run in the background.
type Config struct {
	Burst         bool
	BurstInterval time.Duration
	// BurstMax caps how long after expiry repeats keep firing.
	BurstMax time.Duration
}

// Scheduler owns the alerts of the current round. Every Schedule first
// clears the previous batch so repeated pause/resume cycles never stack up.
type Scheduler struct {
	mu       sync.Mutex
	notifier Notifier
	config   Config
	ids      []string
}

func NewScheduler(notifier Notifier, config Config) *Scheduler {
	if config.Burst && config.BurstInterval <= 0 {
		config.Burst = false
	}
	return &Scheduler{
		notifier: notifier,
		config:   config,
	}
}

// Schedule replaces any pending alerts with a primary alert at delay and,
// when enabled, a capped burst of repeats after it.
func (s *Scheduler) Schedule(ctx context.Context, delay time.Duration, next models.BlindLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := []error{s.cancelLocked(ctx)}
	if delay < 0 {
		delay = 0
	}

	offsets := []time.Duration{0}
	if s.config.Burst {
		for offset := s.config.BurstInterval; offset <= s.config.BurstMax; offset += s.config.BurstInterval {
			offsets = append(offsets, offset)
		}
	}

	for repeat, offset := range offsets {
		id, err := s.notifier.ScheduleAlert(ctx, delay+offset, NewBlindsAlert(next, repeat))
		if err != nil {
			log.Warn().Err(err).Int("repeat", repeat).Msg("failed to schedule alert")
			errs = append(errs, fmt.Errorf("failed to schedule alert %d: %w", repeat, err))
			continue
		}
		s.ids = append(s.ids, id)
	}

	log.Debug().
		Dur("delay", delay).
		Int("alerts", len(s.ids)).
		Int("next_small", next.Small).
		Int("next_big", next.Big).
		Msg("scheduled expiry alerts")
	return errors.Join(errs...)
}

// Cancel clears every pending and delivered alert of the round.
func (s *Scheduler) Cancel(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(ctx)
}

// Pending returns the ids scheduled by the last Schedule call.
func (s *Scheduler) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

func (s *Scheduler) cancelLocked(ctx context.Context) error {
	var errs []error
	for _, id := range s.ids {
		if err := s.notifier.CancelAlert(ctx, id); err != nil {
			log.Debug().Err(err).Str("alert_id", id).Msg("failed to cancel alert")
			errs = append(errs, fmt.Errorf("failed to cancel alert %s: %w", id, err))
		}
	}
	s.ids = nil

	if err := s.notifier.CancelAllAlerts(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to clear alerts")
		errs = append(errs, fmt.Errorf("failed to clear alerts: %w", err))
	}
	return errors.Join(errs...)
}
